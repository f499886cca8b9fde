package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/config"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users and issues access tokens.
type AuthService struct {
	userRepo   *repository.UserRepository
	vendorRepo *repository.VendorRepository
	cfg        config.JWTConfig
	now        func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, vendorRepo *repository.VendorRepository, cfg config.JWTConfig, now func() time.Time) *AuthService {
	return &AuthService{userRepo: userRepo, vendorRepo: vendorRepo, cfg: cfg, now: now}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=Admin Supervisor Vendor"`
	Phone    string `json:"phone"`
	VendorID string `json:"vendor_id" binding:"required_if=Role Vendor"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Session is returned by register and login.
type Session struct {
	User      *entity.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
}

// Register creates an account. Admin accounts can only be self-registered
// while no user exists yet; afterwards administrators are promoted by an
// existing admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = entity.RoleSupervisor
	}

	if in.Role == entity.RoleAdmin {
		n, err := s.userRepo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, newError(ErrForbidden, "Admin accounts must be created by an administrator")
		}
	}

	if _, err := s.userRepo.FindByEmail(ctx, in.Email); err == nil {
		return nil, newError(ErrConflict, "User with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var vendorID *string
	if in.Role == entity.RoleVendor {
		if _, err := s.vendorRepo.FindByID(ctx, in.VendorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("Vendor not found")
			}
			return nil, err
		}
		vendorID = &in.VendorID
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &entity.User{
		ID:           generateID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        strings.TrimSpace(in.Phone),
		VendorID:     vendorID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "Invalid email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, newError(ErrUnauthorized, "Invalid email or password")
	}
	if !user.IsActive {
		return nil, newError(ErrUnauthorized, "Account is inactive. Please contact administrator.")
	}
	if user.Role == entity.RoleVendor && (user.VendorID == nil || *user.VendorID == "") {
		return nil, newError(ErrForbidden, "Vendor account is not properly linked. Please contact administrator.")
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	return s.session(user)
}

// Me returns the caller's account with its vendor.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) session(user *entity.User) (*Session, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresIn: int64(s.cfg.AccessTokenExpire.Seconds())}, nil
}

// GenerateToken signs an HS256 access token for the user.
func (s *AuthService) GenerateToken(user *entity.User) (string, error) {
	now := s.now()
	vendorID := ""
	if user.VendorID != nil {
		vendorID = *user.VendorID
	}
	claims := jwt.MapClaims{
		"sub":       user.ID,
		"uid":       user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"vendor_id": vendorID,
		"iss":       s.cfg.Issuer,
		"iat":       now.Unix(),
		"exp":       now.Add(s.cfg.AccessTokenExpire).Unix(),
		"jti":       uuid.New().String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
