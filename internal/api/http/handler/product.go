package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/api/http/middleware"
	"github.com/ndanilenko/marketplace-server/internal/logger"
	"github.com/ndanilenko/marketplace-server/internal/model"
	"github.com/ndanilenko/marketplace-server/internal/service"
)

// maxImageSize caps uploaded product images at 5MB.
const maxImageSize = 5 << 20

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ProductService is the listing surface the product handler depends on.
type ProductService interface {
	Create(ctx context.Context, params model.CreateProductParams) (model.Product, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID, caller model.Caller) (model.Product, error)
	Update(ctx context.Context, params model.UpdateProductParams) (model.Product, error)
	Delete(ctx context.Context, id, callerID uuid.UUID) error
	Image(ctx context.Context, ref string) (io.ReadCloser, error)
}

// ModerationService is the moderation surface the product handler
// depends on.
type ModerationService interface {
	ListPending(ctx context.Context) ([]model.Product, error)
	Approve(ctx context.Context, productID, moderatorID uuid.UUID) (model.Product, error)
	Reject(ctx context.Context, productID, moderatorID uuid.UUID, reason string) (model.Product, error)
}

// Product handles listing CRUD and moderation endpoints.
type Product struct {
	products   ProductService
	moderation ModerationService
	storage    model.Storage
	logger     *logger.Logger
}

// NewProduct creates a new Product handler.
func NewProduct(products ProductService, moderation ModerationService, storage model.Storage, logger *logger.Logger) *Product {
	return &Product{products: products, moderation: moderation, storage: storage, logger: logger}
}

// Create handles POST /api/products (multipart with one image field).
func (h *Product) Create(c echo.Context) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return apperr.NewErrUnauthenticated("not authenticated")
	}

	params, fields := h.bindListingForm(c)
	params.OwnerID = caller.ID

	imageRef, err := h.uploadImage(c)
	if err != nil {
		return err
	}
	params.Image = imageRef

	if len(fields) > 0 {
		return apperr.NewErrValidation(fields)
	}

	product, err := h.products.Create(c.Request().Context(), params)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusCreated, product)
}

// List handles GET /api/products and GET /api/products/user: the
// caller's own listings.
func (h *Product) List(c echo.Context) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return apperr.NewErrUnauthenticated("not authenticated")
	}

	products, err := h.products.ListByOwner(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, products)
}

// Get handles GET /api/products/:id.
func (h *Product) Get(c echo.Context) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return apperr.NewErrUnauthenticated("not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.products.Get(c.Request().Context(), id, caller)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, product)
}

// Update handles PUT /api/products/:id (owner only, optional new image).
func (h *Product) Update(c echo.Context) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return apperr.NewErrUnauthenticated("not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	params, fields := h.bindListingForm(c)

	imageRef, err := h.uploadImage(c)
	if err != nil {
		return err
	}

	if len(fields) > 0 {
		return apperr.NewErrValidation(fields)
	}

	product, err := h.products.Update(c.Request().Context(), model.UpdateProductParams{
		ID:          id,
		CallerID:    caller.ID,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Category:    params.Category,
		Condition:   params.Condition,
		Stock:       params.Stock,
		Image:       imageRef,
	})
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, product)
}

// Delete handles DELETE /api/products/:id (owner only).
func (h *Product) Delete(c echo.Context) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return apperr.NewErrUnauthenticated("not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.products.Delete(c.Request().Context(), id, caller.ID); err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "Product deleted successfully")
}

// ListPending handles GET /api/products/pending (moderators only).
func (h *Product) ListPending(c echo.Context) error {
	products, err := h.moderation.ListPending(c.Request().Context())
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, products)
}

// Approve handles PUT /api/products/:id/approve (moderators only).
func (h *Product) Approve(c echo.Context) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return apperr.NewErrUnauthenticated("not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.moderation.Approve(c.Request().Context(), id, caller.ID)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, product)
}

type rejectRequest struct {
	Reason string `json:"reason" form:"reason"`
}

// Reject handles PUT /api/products/:id/reject (moderators only).
func (h *Product) Reject(c echo.Context) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return apperr.NewErrUnauthenticated("not authenticated")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewErrValidation(map[string]string{"body": "invalid request body"})
	}

	product, err := h.moderation.Reject(c.Request().Context(), id, caller.ID, req.Reason)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, product)
}

// Image handles GET /uploads/products/:key, streaming the stored image.
func (h *Product) Image(c echo.Context) error {
	key := c.Param("key")

	rc, err := h.products.Image(c.Request().Context(), service.ImagePathPrefix+key)
	if err != nil {
		return err
	}
	defer rc.Close()

	contentType := allowedImageTypes[strings.ToLower(filepath.Ext(key))]
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	return c.Stream(http.StatusOK, contentType, rc)
}

// bindListingForm reads the multipart form fields shared by create and
// update, collecting parse failures instead of failing fast.
func (h *Product) bindListingForm(c echo.Context) (model.CreateProductParams, map[string]string) {
	fields := make(map[string]string)
	params := model.CreateProductParams{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Category:    model.Category(c.FormValue("category")),
		Condition:   model.Condition(c.FormValue("condition")),
	}

	if raw := c.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields["price"] = "price must be a number"
		} else {
			params.Price = price
		}
	}

	if raw := c.FormValue("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			fields["stock"] = "stock must be a whole number"
		} else {
			params.Stock = stock
		}
	}

	return params, fields
}

// uploadImage stores the "image" multipart field, if present, and
// returns its reference path. Size and type limits are enforced before
// any bytes reach storage.
func (h *Product) uploadImage(c echo.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		// No image field on this request.
		return "", nil
	}

	if file.Size > maxImageSize {
		return "", apperr.NewErrValidation(map[string]string{
			"image": "image must not exceed 5MB",
		})
	}

	contentType, err := imageContentType(file)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer src.Close()

	key := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	if err := h.storage.Upload(c.Request().Context(), key, src, file.Size, contentType); err != nil {
		return "", fmt.Errorf("failed to store uploaded image: %w", err)
	}

	return service.ImagePathPrefix + key, nil
}

func imageContentType(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		return "", apperr.NewErrValidation(map[string]string{
			"image": "only image files are allowed",
		})
	}

	if declared := file.Header.Get(echo.HeaderContentType); declared != "" &&
		!strings.HasPrefix(declared, "image/") {
		return "", apperr.NewErrValidation(map[string]string{
			"image": "only image files are allowed",
		})
	}

	return contentType, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.NewErrInvalidID(raw)
	}
	return id, nil
}
