package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ndanilenko/marketplace-server/internal/mocks"
	"github.com/ndanilenko/marketplace-server/internal/model"
	"github.com/ndanilenko/marketplace-server/internal/password"
	"github.com/ndanilenko/marketplace-server/internal/service"
	"github.com/ndanilenko/marketplace-server/internal/testutil"
	"github.com/ndanilenko/marketplace-server/internal/token"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type routerFixture struct {
	userStore    *mocks.UserStore
	productStore *mocks.ProductStore
	tokenManager model.TokenManager
	server       http.Handler
}

func newRouterFixture(t *testing.T, db Pinger) *routerFixture {
	t.Helper()

	logger := testutil.MakeNoopLogger()
	userStore := &mocks.UserStore{}
	productStore := &mocks.ProductStore{}
	storage := &mocks.Storage{}
	tokenManager := token.NewJWT("test-secret")
	hasher := password.NewBcrypt()

	authService := service.NewAuth(userStore, hasher, tokenManager, "letmein", logger)
	productService := service.NewProduct(productStore, storage, service.Schema{
		RequireImage:     true,
		RequireCondition: true,
	}, logger)
	moderationService := service.NewModeration(productStore, logger)

	r := New(authService, productService, moderationService, userStore, tokenManager, storage, db, logger)

	return &routerFixture{
		userStore:    userStore,
		productStore: productStore,
		tokenManager: tokenManager,
		server:       r.Register(),
	}
}

func (f *routerFixture) request(method, target, token string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

// tokenFor issues a real token and arranges for the middleware to
// resolve the user.
func (f *routerFixture) tokenFor(t *testing.T, user model.User) string {
	t.Helper()

	tok, err := f.tokenManager.Generate(user.ID, user.Role)
	require.NoError(t, err)
	f.userStore.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	return tok
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t, stubPinger{})

	rec := f.request(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Health_DatabaseDown(t *testing.T) {
	f := newRouterFixture(t, stubPinger{err: errors.New("dial tcp: connection refused")})

	rec := f.request(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(t, stubPinger{})

	for _, target := range []string{"/api/products", "/api/auth/me", "/api/products/pending"} {
		rec := f.request(http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)

		var resp struct {
			Success bool `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
	}
}

func TestRouter_ListOwnProducts(t *testing.T) {
	f := newRouterFixture(t, stubPinger{})

	user := model.User{ID: uuid.New(), Email: "jane@example.com", Role: model.RoleUser}
	tok := f.tokenFor(t, user)

	f.productStore.On("GetByOwner", mock.Anything, user.ID).Return([]model.Product{}, nil)

	rec := f.request(http.MethodGet, "/api/products", tok, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	f.productStore.AssertExpectations(t)
}

func TestRouter_ModerationRequiresModeratorRole(t *testing.T) {
	f := newRouterFixture(t, stubPinger{})

	user := model.User{ID: uuid.New(), Email: "jane@example.com", Role: model.RoleUser}
	tok := f.tokenFor(t, user)

	rec := f.request(http.MethodGet, "/api/products/pending", tok, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_SubadminCanListPending(t *testing.T) {
	f := newRouterFixture(t, stubPinger{})

	moderator := model.User{ID: uuid.New(), Email: "mod@example.com", Role: model.RoleSubadmin}
	tok := f.tokenFor(t, moderator)

	f.productStore.On("GetByStatus", mock.Anything, model.StatusPending).Return([]model.Product{}, nil)

	rec := f.request(http.MethodGet, "/api/products/pending", tok, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	f.productStore.AssertExpectations(t)
}

func TestRouter_UnknownRouteEnvelope(t *testing.T) {
	f := newRouterFixture(t, stubPinger{})

	rec := f.request(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusText(http.StatusNotFound), resp.Message)
}
