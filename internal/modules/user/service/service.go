package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/modules/user/dto"
	"anoa.com/educonnect/internal/modules/user/repository"
	"anoa.com/educonnect/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidCredentials = apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID string) (*entity.User, error)
}

// LoginLimiter counts failed logins per identifier.
type LoginLimiter interface {
	Check(ctx context.Context, action, subject string, max int64) error
	Hit(ctx context.Context, action, subject string, window time.Duration) error
	Clear(ctx context.Context, action, subject string) error
}

type Options struct {
	Secret           string
	TokenTTL         time.Duration
	LoginMaxAttempts int64
	LoginLockout     time.Duration
}

type authService struct {
	repo    repository.UserRepository
	limiter LoginLimiter
	opts    Options
}

func NewAuthService(repo repository.UserRepository, limiter LoginLimiter, opts Options) AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	return &authService{
		repo:    repo,
		limiter: limiter,
		opts:    opts,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if err := s.limiter.Check(ctx, "login", identifier, s.opts.LoginMaxAttempts); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(ctx, identifier)
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordFailure(ctx, identifier)
		return nil, errInvalidCredentials
	}

	if err := s.limiter.Clear(ctx, "login", identifier); err != nil {
		log.Printf("⚠️ Failed to clear login attempts for %s: %v", identifier, err)
	}
	return s.buildAuthResponse(user)
}

func (s *authService) recordFailure(ctx context.Context, identifier string) {
	if err := s.limiter.Hit(ctx, "login", identifier, s.opts.LoginLockout); err != nil {
		log.Printf("⚠️ Failed to record login attempt for %s: %v", identifier, err)
	}
}

// Register creates a student account; staff accounts are created by an admin.
func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	studentNumber := strings.TrimSpace(input.StudentNumber)
	if studentNumber == "" {
		return nil, fmt.Errorf("student number is required: %w", apperror.ErrInvalidInput)
	}
	taken, err := s.repo.IdentifierTaken(ctx, studentNumber, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("student number already registered: %w", apperror.ErrConflict)
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("student role not found: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		StudentNumber: &studentNumber,
		Name:          strings.TrimSpace(input.Name),
		PasswordHash:  string(hashed),
		RoleID:        &role.ID,
		Role:          *role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Me(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Role:        user.Role.Name,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.opts.TokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.opts.Secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
