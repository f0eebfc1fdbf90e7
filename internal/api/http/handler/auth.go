package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/api/http/middleware"
	"github.com/ndanilenko/marketplace-server/internal/logger"
	"github.com/ndanilenko/marketplace-server/internal/model"
	"github.com/ndanilenko/marketplace-server/internal/service"
)

// AuthService is the service surface the auth handler depends on.
type AuthService interface {
	Register(ctx context.Context, params service.RegisterParams) (service.Session, error)
	RegisterAdmin(ctx context.Context, params service.RegisterParams, code string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	LoginAdmin(ctx context.Context, email, password string) (service.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (model.User, error)
}

// Auth handles the authentication endpoints.
type Auth struct {
	service AuthService
	logger  *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(service AuthService, logger *logger.Logger) *Auth {
	return &Auth{service: service, logger: logger}
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminRegisterRequest struct {
	registerRequest
	AdminCode string `json:"adminCode"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the user summary plus token returned from auth
// endpoints. The password hash never appears here.
type sessionResponse struct {
	ID       uuid.UUID  `json:"id"`
	FullName string     `json:"fullName"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	Token    string     `json:"token"`
}

func newSessionResponse(s service.Session) sessionResponse {
	return sessionResponse{
		ID:       s.User.ID,
		FullName: s.User.FullName,
		Email:    s.User.Email,
		Role:     s.User.Role,
		Token:    s.Token,
	}
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewErrValidation(map[string]string{"body": "invalid request body"})
	}

	session, err := h.service.Register(c.Request().Context(), service.RegisterParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respondData(c, http.StatusCreated, newSessionResponse(session))
}

// Login handles POST /api/auth/login.
func (h *Auth) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewErrValidation(map[string]string{"body": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return apperr.NewErrValidation(map[string]string{"body": "please provide email and password"})
	}

	session, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, newSessionResponse(session))
}

// Me handles GET /api/auth/me.
func (h *Auth) Me(c echo.Context) error {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		return apperr.NewErrUnauthenticated("not authenticated")
	}

	user, err := h.service.Me(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, user)
}

// RegisterAdmin handles POST /api/auth/admin/register.
func (h *Auth) RegisterAdmin(c echo.Context) error {
	var req adminRegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewErrValidation(map[string]string{"body": "invalid request body"})
	}

	session, err := h.service.RegisterAdmin(c.Request().Context(), service.RegisterParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	}, req.AdminCode)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusCreated, newSessionResponse(session))
}

// LoginAdmin handles POST /api/auth/admin/login.
func (h *Auth) LoginAdmin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewErrValidation(map[string]string{"body": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return apperr.NewErrValidation(map[string]string{"body": "please provide email and password"})
	}

	session, err := h.service.LoginAdmin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, newSessionResponse(session))
}
