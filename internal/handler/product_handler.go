package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"secondhand/internal/errors"
	"secondhand/internal/repository"
	"secondhand/internal/service"
)

// defaultLatestLimit is how many listings the landing page shows.
const defaultLatestLimit = 12

// maxImageReadBytes bounds how much of an upload is read into memory; one
// byte over the service limit is enough for the size check to reject it.
const maxImageReadBytes = 5<<20 + 1

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List godoc
// @Summary List products with optional filters
// @Tags products
// @Produce json
// @Param search query string false "Substring of title or description"
// @Param category_id query string false "Category ID"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Success 200 {array} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	filter := repository.ProductFilter{Search: c.QueryParam("search")}

	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid category ID",
				Code:  "INVALID_UUID",
			})
		}
		filter.CategoryID = &categoryID
	}
	if raw := c.QueryParam("min_price"); raw != "" {
		minPrice, err := decimal.NewFromString(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid minimum price",
				Code:  "INVALID_PRICE",
			})
		}
		filter.MinPrice = &minPrice
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid maximum price",
				Code:  "INVALID_PRICE",
			})
		}
		filter.MaxPrice = &maxPrice
	}

	products, err := h.productService.List(c.Request().Context(), filter)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, products)
}

// Latest godoc
// @Summary Latest listings for the landing page
// @Tags products
// @Produce json
// @Param limit query int false "Maximum number of listings" default(12)
// @Success 200 {array} model.Product
// @Failure 500 {object} errors.ErrorResponse
// @Router /products/latest [get]
func (h *ProductHandler) Latest(c echo.Context) error {
	limit := defaultLatestLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	products, err := h.productService.Latest(c.Request().Context(), limit)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, products)
}

// Get godoc
// @Summary Get a product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid product ID",
			Code:  "INVALID_UUID",
		})
	}

	product, err := h.productService.Get(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, product)
}

// MyProducts godoc
// @Summary List the caller's own listings
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Product
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products/mine [get]
func (h *ProductHandler) MyProducts(c echo.Context) error {
	caller, err := CallerPrincipal(c)
	if err != nil {
		return err
	}

	products, err := h.productService.ListByOwner(c.Request().Context(), caller.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, products)
}

// Create godoc
// @Summary Create a listing
// @Tags products
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param price formData number true "Price"
// @Param category_id formData string true "Category ID"
// @Param image formData file false "Image (jpg, jpeg, png, gif; max 5MB)"
// @Success 201 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	caller, err := CallerPrincipal(c)
	if err != nil {
		return err
	}

	input, httpErr := productInputFromForm(c)
	if httpErr != nil {
		return httpErr
	}
	image, httpErr := imageFromForm(c)
	if httpErr != nil {
		return httpErr
	}

	product, err := h.productService.Create(c.Request().Context(), caller, input, image)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, product)
}

// Update godoc
// @Summary Update a listing
// @Tags products
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param price formData number true "Price"
// @Param category_id formData string true "Category ID"
// @Param image formData file false "Replacement image (jpg, jpeg, png, gif; max 5MB)"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	caller, err := CallerPrincipal(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid product ID",
			Code:  "INVALID_UUID",
		})
	}

	input, httpErr := productInputFromForm(c)
	if httpErr != nil {
		return httpErr
	}
	image, httpErr := imageFromForm(c)
	if httpErr != nil {
		return httpErr
	}

	product, err := h.productService.Update(c.Request().Context(), caller, id, input, image)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, product)
}

// Delete godoc
// @Summary Delete a listing
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	caller, err := CallerPrincipal(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid product ID",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.productService.Delete(c.Request().Context(), caller, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "product deleted"})
}

// productInputFromForm parses the listing fields from a multipart form. Any
// client-supplied owner field is ignored by construction: ProductInput has no
// owner.
func productInputFromForm(c echo.Context) (service.ProductInput, *echo.HTTPError) {
	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil {
		return service.ProductInput{}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid price",
			Code:  "INVALID_PRICE",
		})
	}

	input := service.ProductInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Price:       price,
	}

	if raw := c.FormValue("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return service.ProductInput{}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid category ID",
				Code:  "INVALID_UUID",
			})
		}
		input.CategoryID = categoryID
	}

	return input, nil
}

// imageFromForm reads the optional image file from the form. Absence of the
// file is not an error.
func imageFromForm(c echo.Context) (*service.ImageUpload, *echo.HTTPError) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No file part (or no multipart body at all) means no image change.
		return nil, nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable image upload",
			Code:  "INVALID_IMAGE",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageReadBytes))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable image upload",
			Code:  "INVALID_IMAGE",
		})
	}

	return &service.ImageUpload{Filename: fileHeader.Filename, Data: data}, nil
}
