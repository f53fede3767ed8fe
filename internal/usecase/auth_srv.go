package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cinetix/internal/data/entity"
	"cinetix/internal/data/repository"
	"cinetix/internal/dto/request"
	"cinetix/internal/dto/response"
	"cinetix/pkg/utils"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*response.UserResponse, error)
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check existing email", zap.Error(err))
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Base:         entity.NewBase(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to look up user", zap.Error(err))
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

func (s *authService) Profile(ctx context.Context, userID string) (*response.UserResponse, error) {
	id, err := utils.ParseUUID(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) issueToken(user *entity.User) (*response.AuthResponse, error) {
	token, expiresAt, err := utils.GenerateAccessToken(s.config.JWT, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &response.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      response.UserToResponse(user),
	}, nil
}
