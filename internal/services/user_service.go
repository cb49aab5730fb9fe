package services

import (
	"context"
	"errors"
	"strings"

	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type UserService struct {
	repo       *repositories.UserRepository
	jwtManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{repo: repo, jwtManager: jwtManager}
}

// Signup creates an account and returns a signed token for it.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationErrorf("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, validationErrorf("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, validationErrorf("an account with email %s already exists", email)
		}
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, validationErrorf("invalid email or password")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, validationErrorf("account is disabled")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, validationErrorf("invalid email or password")
	}

	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Me returns the authenticated user's profile.
func (s *UserService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
