package handler

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/model"
	"github.com/ndanilenko/marketplace-server/internal/service"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, params service.RegisterParams) (service.Session, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockAuthService) RegisterAdmin(ctx context.Context, params service.RegisterParams, code string) (service.Session, error) {
	args := m.Called(ctx, params, code)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (service.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockAuthService) LoginAdmin(ctx context.Context, email, password string) (service.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, userID uuid.UUID) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) Create(ctx context.Context, params model.CreateProductParams) (model.Product, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductService) Get(ctx context.Context, id uuid.UUID, caller model.Caller) (model.Product, error) {
	args := m.Called(ctx, id, caller)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductService) Update(ctx context.Context, params model.UpdateProductParams) (model.Product, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	args := m.Called(ctx, id, callerID)
	return args.Error(0)
}

func (m *mockProductService) Image(ctx context.Context, ref string) (io.ReadCloser, error) {
	args := m.Called(ctx, ref)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockModerationService struct {
	mock.Mock
}

func (m *mockModerationService) ListPending(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockModerationService) Approve(ctx context.Context, productID, moderatorID uuid.UUID) (model.Product, error) {
	args := m.Called(ctx, productID, moderatorID)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockModerationService) Reject(ctx context.Context, productID, moderatorID uuid.UUID, reason string) (model.Product, error) {
	args := m.Called(ctx, productID, moderatorID, reason)
	return args.Get(0).(model.Product), args.Error(1)
}

var (
	_ AuthService       = (*mockAuthService)(nil)
	_ ProductService    = (*mockProductService)(nil)
	_ ModerationService = (*mockModerationService)(nil)
)

func requireAPIError(t *testing.T, err error) *apperr.APIError {
	t.Helper()

	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr
}

func setCaller(c echo.Context, caller model.Caller) {
	c.Set("caller", caller)
}
