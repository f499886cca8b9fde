package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
)

// UserService is the admin view of accounts.
type UserService struct {
	repo       *repository.UserRepository
	vendorRepo *repository.VendorRepository
}

func NewUserService(repo *repository.UserRepository, vendorRepo *repository.VendorRepository) *UserService {
	return &UserService{repo: repo, vendorRepo: vendorRepo}
}

type UserFilter struct {
	Role     string `form:"role"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

func (s *UserService) List(ctx context.Context, f UserFilter) ([]entity.User, int64, error) {
	return s.repo.List(ctx, repository.UserListParams{
		Role:   f.Role,
		Active: f.IsActive,
		Search: f.Search,
		Page:   f.Page,
		Size:   f.PageSize,
	})
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return u, nil
}

// UpdateUserInput changes profile, role and status. Passwords are not
// changed through this path.
type UpdateUserInput struct {
	Name     *string `json:"name" binding:"omitnil,min=2"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role" binding:"omitnil,oneof=Admin Supervisor Vendor"`
	VendorID *string `json:"vendor_id"`
	IsActive *bool   `json:"is_active"`
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*entity.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.VendorID != nil {
		if *in.VendorID == "" {
			u.VendorID = nil
		} else {
			if _, err := s.vendorRepo.FindByID(ctx, *in.VendorID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, notFound("Vendor not found")
				}
				return nil, err
			}
			vid := *in.VendorID
			u.VendorID = &vid
		}
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	if u.Role == entity.RoleVendor && u.VendorID == nil {
		return nil, invalid("Vendor ID is required for vendor users")
	}
	if u.Role != entity.RoleVendor {
		u.VendorID = nil
	}

	u.Vendor = nil
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, caller Caller, id string) error {
	if caller.UserID == id {
		return violation("You cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("User not found")
		}
		return err
	}
	return nil
}
