package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/logger"
	"github.com/ndanilenko/marketplace-server/internal/model"
)

// Moderation governs product status transitions. A listing starts
// pending and a moderator moves it to approved or rejected, both
// terminal. Moderators act on other users' listings, so no ownership
// check applies here.
type Moderation struct {
	productStore model.ProductStore
	logger       *logger.Logger
}

func NewModeration(productStore model.ProductStore, logger *logger.Logger) *Moderation {
	return &Moderation{
		productStore: productStore,
		logger:       logger,
	}
}

// ListPending returns the moderator review queue, newest first.
func (s *Moderation) ListPending(ctx context.Context) ([]model.Product, error) {
	products, err := s.productStore.GetByStatus(ctx, model.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending products: %w", err)
	}

	return products, nil
}

// Approve transitions a pending product to approved.
func (s *Moderation) Approve(ctx context.Context, productID, moderatorID uuid.UUID) (model.Product, error) {
	return s.transition(ctx, productID, model.StatusChange{
		Status:      model.StatusApproved,
		ModeratedBy: moderatorID,
		ModeratedAt: time.Now(),
	})
}

// Reject transitions a pending product to rejected with a mandatory
// reason.
func (s *Moderation) Reject(ctx context.Context, productID, moderatorID uuid.UUID, reason string) (model.Product, error) {
	if strings.TrimSpace(reason) == "" {
		return model.Product{}, apperr.NewErrValidation(map[string]string{
			"reason": "please provide a rejection reason",
		})
	}

	return s.transition(ctx, productID, model.StatusChange{
		Status:          model.StatusRejected,
		RejectionReason: reason,
		ModeratedBy:     moderatorID,
		ModeratedAt:     time.Now(),
	})
}

// transition writes the status change conditionally on the product
// still being pending; losing the race to another moderator surfaces
// as an invalid transition.
func (s *Moderation) transition(ctx context.Context, productID uuid.UUID, change model.StatusChange) (model.Product, error) {
	updated, err := s.productStore.UpdateStatus(ctx, productID, model.StatusPending, change)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Product{}, apperr.NewErrNotFound("product")
		}
		if errors.Is(err, model.ErrNotModified) {
			current, getErr := s.productStore.GetByID(ctx, productID)
			if getErr != nil {
				return model.Product{}, fmt.Errorf("failed to get product after lost transition: %w", getErr)
			}
			return model.Product{}, apperr.NewErrInvalidTransition(string(current.Status))
		}
		return model.Product{}, fmt.Errorf("failed to transition product status: %w", err)
	}

	s.logger.Info("Moderation service: product status changed",
		"product_id", productID,
		"status", change.Status,
		"moderator_id", change.ModeratedBy)

	return updated, nil
}
