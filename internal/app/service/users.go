package service

import (
	"context"
	"errors"

	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/system/normalize"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Authenticate.
type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// dummyHash keeps the unknown-email path doing the same bcrypt work as a
// wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("projectflow-dummy-password"), bcrypt.DefaultCost)

// Register creates a member account and signs a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)
	if err := checkStruct(in); err != nil {
		return AuthResult{}, observe("register", err)
	}

	if _, err := s.store.Users.GetByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, observe("register", &AuthError{Msg: MsgUserExists})
	} else if !errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, observe("register", storeErr("register: lookup email", "user", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, observe("register", &StoreError{Op: "register: hash password", Err: err})
	}

	now := s.now()
	u, err := s.store.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return AuthResult{}, observe("register", &AuthError{Msg: MsgUserExists})
	}
	if err != nil {
		return AuthResult{}, observe("register", storeErr("register: create user", "user", err))
	}

	return s.issue(u, "register")
}

// Authenticate checks credentials and signs a token. Every failure is the
// same "invalid credentials" AuthError.
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = normalize.Email(in.Email)
	if in.Email == "" || in.Password == "" {
		return AuthResult{}, observe("login", &AuthError{Msg: MsgInvalidCredentials})
	}

	u, err := s.store.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		return AuthResult{}, observe("login", &AuthError{Msg: MsgInvalidCredentials})
	}
	if err != nil {
		return AuthResult{}, observe("login", storeErr("login: lookup email", "user", err))
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return AuthResult{}, observe("login", &AuthError{Msg: MsgInvalidCredentials})
	}

	return s.issue(u, "login")
}

func (s *Service) issue(u models.User, op string) (AuthResult, error) {
	if s.tokens == nil {
		return AuthResult{}, observe(op, &StoreError{Op: op + ": sign token", Err: errors.New("token manager not configured")})
	}
	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		s.log.Error("token signing failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		return AuthResult{}, observe(op, &StoreError{Op: op + ": sign token", Err: err})
	}
	return AuthResult{User: u, Token: tok}, observe(op, nil)
}

// ListUsers returns every user. PasswordHash never leaves the process
// because models.User does not serialize it.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, observe("list_users", storeErr("list users", "user", err))
	}
	return users, observe("list_users", nil)
}
