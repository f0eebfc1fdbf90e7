package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/logger"
	"github.com/ndanilenko/marketplace-server/internal/model"
)

// ImagePathPrefix prefixes image object keys in product references so
// callers get a servable path instead of a raw storage key.
const ImagePathPrefix = "/uploads/products/"

// Schema selects which listing fields are mandatory. Historical
// deployments differ on condition and image.
type Schema struct {
	RequireImage     bool
	RequireCondition bool
}

// Product implements listing CRUD with ownership enforcement.
type Product struct {
	productStore model.ProductStore
	storage      model.Storage
	schema       Schema
	logger       *logger.Logger
}

func NewProduct(
	productStore model.ProductStore,
	storage model.Storage,
	schema Schema,
	logger *logger.Logger,
) *Product {
	return &Product{
		productStore: productStore,
		storage:      storage,
		schema:       schema,
		logger:       logger,
	}
}

// Create validates the listing and stores it with status pending.
func (s *Product) Create(ctx context.Context, params model.CreateProductParams) (model.Product, error) {
	if fields := s.validate(params.Name, params.Description, params.Price, params.Category,
		params.Condition, params.Stock, params.Image); len(fields) > 0 {
		return model.Product{}, apperr.NewErrValidation(fields)
	}

	now := time.Now()
	product := model.Product{
		ID:          uuid.New(),
		OwnerID:     params.OwnerID,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Category:    params.Category,
		Condition:   params.Condition,
		Stock:       params.Stock,
		Image:       params.Image,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	saved, err := s.productStore.Create(ctx, product)
	if err != nil {
		s.logger.Error("Product service: failed to create product",
			"owner_id", params.OwnerID,
			"error", err.Error())
		return model.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product service: product created",
		"product_id", saved.ID,
		"owner_id", saved.OwnerID)

	return saved, nil
}

// ListByOwner returns the caller's own listings.
func (s *Product) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error) {
	products, err := s.productStore.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by owner: %w", err)
	}

	return products, nil
}

// Get loads a listing readable by the caller: the owner, or any
// moderator reviewing it.
func (s *Product) Get(ctx context.Context, id uuid.UUID, caller model.Caller) (model.Product, error) {
	product, err := s.getByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if product.OwnerID != caller.ID && !caller.Role.CanModerate() {
		return model.Product{}, apperr.NewErrForbidden("not authorized to view this product")
	}

	return product, nil
}

// Update applies a validated patch to a listing owned by the caller.
// OwnerID is never patched.
func (s *Product) Update(ctx context.Context, params model.UpdateProductParams) (model.Product, error) {
	product, err := s.getByID(ctx, params.ID)
	if err != nil {
		return model.Product{}, err
	}

	if product.OwnerID != params.CallerID {
		return model.Product{}, apperr.NewErrForbidden("not authorized to update this product")
	}

	newImage := params.Image
	if newImage == "" {
		newImage = product.Image
	}

	if fields := s.validate(params.Name, params.Description, params.Price, params.Category,
		params.Condition, params.Stock, newImage); len(fields) > 0 {
		return model.Product{}, apperr.NewErrValidation(fields)
	}

	replacedImage := ""
	if params.Image != "" && params.Image != product.Image {
		replacedImage = product.Image
	}

	product.Name = params.Name
	product.Description = params.Description
	product.Price = params.Price
	product.Category = params.Category
	product.Condition = params.Condition
	product.Stock = params.Stock
	product.Image = newImage
	product.UpdatedAt = time.Now()

	updated, err := s.productStore.Update(ctx, product)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Product{}, apperr.NewErrNotFound("product")
		}
		return model.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	s.removeImage(ctx, replacedImage)

	return updated, nil
}

// Delete hard-deletes a listing owned by the caller, along with its
// stored image.
func (s *Product) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	product, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}

	if product.OwnerID != callerID {
		return apperr.NewErrForbidden("not authorized to delete this product")
	}

	if err := s.productStore.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apperr.NewErrNotFound("product")
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.removeImage(ctx, product.Image)

	s.logger.Info("Product service: product deleted",
		"product_id", id,
		"owner_id", callerID)

	return nil
}

// Image fetches the stored image referenced by a product path.
func (s *Product) Image(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !strings.HasPrefix(ref, ImagePathPrefix) {
		return nil, apperr.NewErrNotFound("image")
	}
	key := strings.TrimPrefix(ref, ImagePathPrefix)

	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	return rc, nil
}

func (s *Product) getByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Product{}, apperr.NewErrNotFound("product")
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to get product by id: %w", err)
	}

	return product, nil
}

// removeImage deletes a replaced or orphaned image object. Failures are
// logged and swallowed: the listing write already succeeded.
func (s *Product) removeImage(ctx context.Context, ref string) {
	if ref == "" || !strings.HasPrefix(ref, ImagePathPrefix) {
		return
	}
	key := strings.TrimPrefix(ref, ImagePathPrefix)
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Error("Product service: failed to delete image object",
			"key", key,
			"error", err.Error())
	}
}

// validate collects every violated field instead of failing on the
// first one.
func (s *Product) validate(name, description string, price float64, category model.Category,
	condition model.Condition, stock int, image string) map[string]string {
	fields := make(map[string]string)

	if strings.TrimSpace(name) == "" {
		fields["name"] = "please add a product name"
	}
	if strings.TrimSpace(description) == "" {
		fields["description"] = "please add a description"
	}
	if price < 0 {
		fields["price"] = "price must not be negative"
	}
	if category == "" {
		fields["category"] = "please add a category"
	} else if !category.Valid() {
		fields["category"] = fmt.Sprintf("unknown category %q", string(category))
	}
	if stock < 0 {
		fields["stock"] = "stock cannot be negative"
	}
	if s.schema.RequireCondition {
		if condition == "" {
			fields["condition"] = "please specify product condition"
		} else if !condition.Valid() {
			fields["condition"] = fmt.Sprintf("unknown condition %q", string(condition))
		}
	} else if condition != "" && !condition.Valid() {
		fields["condition"] = fmt.Sprintf("unknown condition %q", string(condition))
	}
	if s.schema.RequireImage && image == "" {
		fields["image"] = "please add an image"
	}

	return fields
}
