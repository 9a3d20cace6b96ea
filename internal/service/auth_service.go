package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/repository"
	"github.com/oweru/content-api/internal/transfer"
)

type AuthService interface {
	Register(ctx context.Context, req *transfer.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *transfer.LoginRequest) (*models.User, error)
}

type authService struct {
	u repository.UserRepository
}

func NewAuthService(u repository.UserRepository) AuthService {
	return &authService{u: u}
}

func (s *authService) Register(ctx context.Context, req *transfer.RegisterRequest) (*models.User, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(req.Name) == "" {
		verr.Add("name", "name is required")
	}
	if !strings.Contains(req.Email, "@") {
		verr.Add("email", "a valid email is required")
	}
	if len(req.Password) < 8 {
		verr.Add("password", "password must be at least 8 characters")
	}
	if !verr.Empty() {
		return nil, verr
	}

	_, exists, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewValidationError("email", "email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	id, err := s.u.Create(ctx, nil, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	return user, nil
}

func (s *authService) Login(ctx context.Context, req *transfer.LoginRequest) (*models.User, error) {
	user, exists, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewValidationError("email", "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewValidationError("email", "invalid credentials")
	}

	return user, nil
}
