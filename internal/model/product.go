package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProductStore defines persistence operations for products.
type ProductStore interface {
	Create(ctx context.Context, product Product) (Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]Product, error)
	GetByStatus(ctx context.Context, status ProductStatus) ([]Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	// UpdateStatus transitions a product out of fromStatus in a single
	// conditional write. Returns ErrNotModified when the product exists
	// but is no longer in fromStatus.
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus ProductStatus, change StatusChange) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductStatus enumerates moderation states.
type ProductStatus string

const (
	// StatusPending is the initial state of every new listing.
	StatusPending ProductStatus = "pending"
	// StatusApproved is a terminal state set by a moderator.
	StatusApproved ProductStatus = "approved"
	// StatusRejected is a terminal state set by a moderator.
	StatusRejected ProductStatus = "rejected"
)

// Category enumerates product categories.
type Category string

const (
	CategoryElectronics  Category = "Electronics"
	CategoryClothing     Category = "Clothing"
	CategoryBooks        Category = "Books"
	CategoryHomeGarden   Category = "Home & Garden"
	CategoryHealthBeauty Category = "Health & Beauty"
	CategoryOther        Category = "Other"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryBooks,
		CategoryHomeGarden, CategoryHealthBeauty, CategoryOther:
		return true
	}
	return false
}

// Condition enumerates product conditions.
type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
	ConditionPoor    Condition = "Poor"
)

// Valid reports whether the condition is one of the known values.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Product represents a marketplace listing. OwnerID is set at creation
// and never changes afterwards.
type Product struct {
	ID              uuid.UUID     `json:"id"`
	OwnerID         uuid.UUID     `json:"ownerId"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Price           float64       `json:"price"`
	Category        Category      `json:"category"`
	Condition       Condition     `json:"condition,omitempty"`
	Stock           int           `json:"stock"`
	Image           string        `json:"image,omitempty"`
	Status          ProductStatus `json:"status"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	ModeratedBy     *uuid.UUID    `json:"moderatedBy,omitempty"`
	ModeratedAt     *time.Time    `json:"moderatedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// StatusChange carries the fields written by a moderation transition.
type StatusChange struct {
	Status          ProductStatus
	RejectionReason string
	ModeratedBy     uuid.UUID
	ModeratedAt     time.Time
}

// CreateProductParams contains caller-supplied fields for a new listing.
type CreateProductParams struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	Price       float64
	Category    Category
	Condition   Condition
	Stock       int
	Image       string
}

// UpdateProductParams contains caller-supplied fields for an update.
// Image is optional; an empty value keeps the stored reference.
type UpdateProductParams struct {
	ID          uuid.UUID
	CallerID    uuid.UUID
	Name        string
	Description string
	Price       float64
	Category    Category
	Condition   Condition
	Stock       int
	Image       string
}
