package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a single for-sale listing.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string          `json:"title" gorm:"size:200;not null"`
	Description string          `json:"description" gorm:"size:2000;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(18,2);not null"`
	ImagePath   string          `json:"image_path,omitempty" gorm:"size:255"`

	// UploadDate is set server-side at creation and never changed on edit.
	UploadDate time.Time `json:"upload_date" gorm:"not null;index"`

	// Foreign keys. UserID is assigned from the authenticated caller at
	// creation, exactly once; it is never taken from client input.
	UserID     uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	CategoryID uuid.UUID `json:"category_id" gorm:"type:char(36);not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User     User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
