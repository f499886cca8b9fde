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

// VendorService manages job-work vendors.
type VendorService struct {
	repo      *repository.VendorRepository
	orderRepo *repository.JobOrderRepository
	seed      *SeedService
}

func NewVendorService(repo *repository.VendorRepository, orderRepo *repository.JobOrderRepository, seed *SeedService) *VendorService {
	return &VendorService{repo: repo, orderRepo: orderRepo, seed: seed}
}

// VendorInput is the full vendor payload. IsActive defaults to true on create.
type VendorInput struct {
	Name           string             `json:"name" binding:"required,min=2,max=100"`
	ContactPerson  string             `json:"contact_person" binding:"required,min=2,max=100"`
	Email          string             `json:"email" binding:"omitempty,email"`
	Phone          string             `json:"phone" binding:"required,phone"`
	WhatsAppNumber string             `json:"whatsapp_number" binding:"omitempty,phone"`
	TelegramChatID int64              `json:"telegram_chat_id"`
	Address        entity.Address     `json:"address"`
	JobWorkTypes   []string           `json:"job_work_types" binding:"required,min=1,dive,oneof=Knitting Dyeing Printing Stitching Finishing"`
	GSTIN          string             `json:"gstin" binding:"omitempty,gstin"`
	PAN            string             `json:"pan" binding:"omitempty,pan"`
	BankDetails    entity.BankDetails `json:"bank_details"`
	IsActive       *bool              `json:"is_active"`
	Rating         float64            `json:"rating" binding:"gte=0,lte=5"`
}

func (in *VendorInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.WhatsAppNumber = strings.TrimSpace(in.WhatsAppNumber)
	in.GSTIN = strings.ToUpper(strings.TrimSpace(in.GSTIN))
	in.PAN = strings.ToUpper(strings.TrimSpace(in.PAN))
	if in.Address.Country == "" {
		in.Address.Country = "India"
	}
}

func (in *VendorInput) apply(v *entity.Vendor) {
	v.Name = in.Name
	v.ContactPerson = in.ContactPerson
	v.Email = in.Email
	v.Phone = in.Phone
	v.WhatsAppNumber = in.WhatsAppNumber
	v.TelegramChatID = in.TelegramChatID
	v.Address = in.Address
	v.JobWorkTypes = entity.StringList(in.JobWorkTypes)
	v.GSTIN = in.GSTIN
	v.PAN = in.PAN
	v.BankDetails = in.BankDetails
	v.Rating = in.Rating
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
}

func (s *VendorService) checkDuplicate(ctx context.Context, in *VendorInput, excludeID string) error {
	_, err := s.repo.FindDuplicate(ctx, in.Name, in.Phone, excludeID)
	switch {
	case err == nil:
		return newError(ErrConflict, "Vendor with this name or phone number already exists")
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *VendorService) Create(ctx context.Context, caller Caller, in VendorInput) (*entity.Vendor, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, &in, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	v := &entity.Vendor{
		ID:        generateID(),
		IsActive:  true,
		CreatedBy: caller.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(v)
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create vendor: %w", err)
	}
	return v, nil
}

type VendorFilter struct {
	JobWorkType string `form:"job_work_type"`
	IsActive    *bool  `form:"is_active"`
	Search      string `form:"search"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

func (s *VendorService) List(ctx context.Context, f VendorFilter) ([]entity.Vendor, int64, error) {
	return s.repo.List(ctx, repository.VendorListParams{
		JobWorkType: f.JobWorkType,
		Active:      f.IsActive,
		Search:      f.Search,
		Page:        f.Page,
		Size:        f.PageSize,
	})
}

func (s *VendorService) Get(ctx context.Context, id string) (*entity.Vendor, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Vendor not found")
		}
		return nil, err
	}
	return v, nil
}

// Update replaces the vendor's editable fields. IsActive is kept when omitted.
func (s *VendorService) Update(ctx context.Context, id string, in VendorInput) (*entity.Vendor, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, &in, id); err != nil {
		return nil, err
	}
	in.apply(v)
	v.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("update vendor: %w", err)
	}
	return v, nil
}

// Delete removes a vendor that has never been issued a job order.
func (s *VendorService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.orderRepo.CountByVendor(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return violation("Vendor has %d job orders and cannot be deleted; deactivate it instead", n)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Vendor not found")
		}
		return err
	}
	return nil
}

// SeedDemo loads the demo vendors when none exist yet.
func (s *VendorService) SeedDemo(ctx context.Context) ([]entity.Vendor, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, violation("Vendors already exist (%d). Delete them first to load demo vendors.", n)
	}
	return s.seed.Vendors(ctx)
}
