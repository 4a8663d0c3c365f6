package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"secondhand/internal/model"
)

// setupCategoryTestRepository creates a category repository over a mock database.
func setupCategoryTestRepository(t *testing.T) (CategoryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB.Close()
	}

	return NewCategoryRepository(gormDB), mock, cleanup
}

func TestCategoryRepository_Update_RowGone(t *testing.T) {
	repo, mock, cleanup := setupCategoryTestRepository(t)
	defer cleanup()

	category := &model.Category{ID: uuid.New(), Name: "Books"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories` WHERE id = \\?").
		WithArgs(category.ID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	err := repo.Update(context.Background(), category)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
