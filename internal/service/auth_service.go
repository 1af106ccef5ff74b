package service

import (
	"errors"

	"coursehub_backend/internal/config"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Config   *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{UserRepo: userRepo, Config: cfg}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Portfolio string `json:"portfolio"`
}

// Register creates a new account. Emails are unique; registering as admin
// through the public endpoint is not allowed.
func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	role := model.Student
	switch req.Role {
	case "", string(model.Student):
	case string(model.Teacher):
		role = model.Teacher
	default:
		return nil, util.Validationf("invalid role %q", req.Role)
	}

	if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint("userId", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Login verifies the credentials and issues a signed token.
func (s *AuthService) Login(req LoginRequest) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the non-empty fields of the request.
func (s *AuthService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.Bio = req.Bio
	user.Portfolio = req.Portfolio

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
