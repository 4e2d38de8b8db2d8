package services

import (
	"context"
	"errors"

	"apexsports_backend/internal/auth"
	"apexsports_backend/internal/logger"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/repositories"
	"apexsports_backend/internal/services/dto"
	"apexsports_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
	SetRole(ctx context.Context, db *gorm.DB, userID string, req *dto.SetRoleRequest) (*dto.AuthResponse, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrAlreadyExists("user", "An account with this email already exists")
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID)

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", 401)
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", 401)
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)

	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func (s *authService) Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return toUserResponse(user), nil
}

// SetRole назначает роль один раз и перевыпускает токен, роль зашита в
// claims. Повторная смена запрещена, от роли зависят права на брони.
func (s *authService) SetRole(ctx context.Context, db *gorm.DB, userID string, req *dto.SetRoleRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if user.Role != "" {
		return nil, apperrors.ErrInvalidOperation("user", "Role is already set")
	}

	role := models.UserRole(req.Role)
	if err := s.userRepo.UpdateRole(db, userID, role); err != nil {
		return nil, apperrors.InternalError(err)
	}

	user.Role = role

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func toUserResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}
}
