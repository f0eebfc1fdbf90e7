package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/logger"
	"github.com/ndanilenko/marketplace-server/internal/model"
)

// Auth implements account registration, credential verification and
// session issuance.
type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenManager model.TokenManager
	adminCode    string
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenManager model.TokenManager,
	adminCode string,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenManager: tokenManager,
		adminCode:    adminCode,
		logger:       logger,
	}
}

// RegisterParams contains caller-supplied registration fields.
type RegisterParams struct {
	FullName string
	Email    string
	Password string
}

// Session pairs an issued token with the account it belongs to.
type Session struct {
	Token string
	User  model.User
}

// Register creates a regular account and issues a session token.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (Session, error) {
	return a.register(ctx, params, model.RoleUser)
}

// RegisterAdmin creates an admin account gated by the out-of-band
// registration code. The code gates becoming an admin, not acting as
// one, so no prior authentication is required.
func (a *Auth) RegisterAdmin(ctx context.Context, params RegisterParams, code string) (Session, error) {
	if subtle.ConstantTimeCompare([]byte(code), []byte(a.adminCode)) != 1 {
		a.logger.Info("Auth service: admin registration rejected, wrong code",
			"email", params.Email)
		return Session{}, apperr.NewErrInvalidAdminCode()
	}

	return a.register(ctx, params, model.RoleAdmin)
}

func (a *Auth) register(ctx context.Context, params RegisterParams, role model.Role) (Session, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email, "role", role)

	if fields := validateRegistration(params); len(fields) > 0 {
		return Session{}, apperr.NewErrValidation(fields)
	}

	existingUser, err := a.userStore.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if existingUser.ID != uuid.Nil {
		a.logger.Info("Auth service: user already exists",
			"email", params.Email)
		return Session{}, apperr.NewErrEmailIsTaken(params.Email)
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		FullName:     params.FullName,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := a.userStore.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return Session{}, apperr.NewErrEmailIsTaken(params.Email)
		}
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := a.tokenManager.Generate(saved.ID, saved.Role)
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"email", params.Email, "role", role)

	return Session{Token: token, User: saved}, nil
}

// Login verifies credentials for any account and issues a session token.
func (a *Auth) Login(ctx context.Context, email, password string) (Session, error) {
	a.logger.Debug("Auth service: starting login", "email", email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, apperr.NewErrInvalidCredentials()
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return a.issueSession(user, password)
}

// LoginAdmin verifies credentials scoped to role=admin. A regular
// account cannot authenticate through this path even with a correct
// password.
func (a *Auth) LoginAdmin(ctx context.Context, email, password string) (Session, error) {
	a.logger.Debug("Auth service: starting admin login", "email", email)

	user, err := a.userStore.GetByEmailAndRole(ctx, email, model.RoleAdmin)
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, apperr.NewErrInvalidCredentials()
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get admin by email: %w", err)
	}

	return a.issueSession(user, password)
}

// Me returns the live account for the given id.
func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apperr.NewErrNotFound("user")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (a *Auth) issueSession(user model.User, password string) (Session, error) {
	if !a.hasher.Compare(user.PasswordHash, password) {
		a.logger.Info("Auth service: password mismatch", "email", user.Email)
		return Session{}, apperr.NewErrInvalidCredentials()
	}

	token, err := a.tokenManager.Generate(user.ID, user.Role)
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	return Session{Token: token, User: user}, nil
}

func validateRegistration(params RegisterParams) map[string]string {
	fields := make(map[string]string)
	if params.FullName == "" {
		fields["fullName"] = "full name is required"
	}
	if params.Email == "" {
		fields["email"] = "email is required"
	}
	if params.Password == "" {
		fields["password"] = "password is required"
	}
	return fields
}
