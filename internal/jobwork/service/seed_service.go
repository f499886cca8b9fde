package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed seed/demo.yaml
var demoData []byte

// SeedData is the demo dataset format.
type SeedData struct {
	Vendors []struct {
		Name           string          `yaml:"name"`
		ContactPerson  string          `yaml:"contact_person"`
		Email          string          `yaml:"email"`
		Phone          string          `yaml:"phone"`
		WhatsAppNumber string          `yaml:"whatsapp_number"`
		Address        seedAddress     `yaml:"address"`
		JobWorkTypes   []string        `yaml:"job_work_types"`
		GSTIN          string          `yaml:"gstin"`
		PAN            string          `yaml:"pan"`
		BankDetails    seedBankDetails `yaml:"bank_details"`
		Rating         float64         `yaml:"rating"`
	} `yaml:"vendors"`
	Materials []struct {
		Name         string  `yaml:"name"`
		MaterialType string  `yaml:"material_type"`
		Description  string  `yaml:"description"`
		Quantity     float64 `yaml:"quantity"`
		Unit         string  `yaml:"unit"`
		BatchNumber  string  `yaml:"batch_number"`
		Color        string  `yaml:"color"`
		GSM          float64 `yaml:"gsm"`
		Quality      string  `yaml:"quality"`
	} `yaml:"materials"`
	Users []struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
		Phone    string `yaml:"phone"`
		Vendor   string `yaml:"vendor"`
	} `yaml:"users"`
}

type seedAddress struct {
	Street  string `yaml:"street"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	Pincode string `yaml:"pincode"`
	Country string `yaml:"country"`
}

type seedBankDetails struct {
	AccountNumber string `yaml:"account_number"`
	IFSCCode      string `yaml:"ifsc_code"`
	BankName      string `yaml:"bank_name"`
	Branch        string `yaml:"branch"`
}

// SeedService loads demo vendors, materials and users.
type SeedService struct {
	repos  *repository.Repositories
	logger *zap.Logger
	data   SeedData
	err    error
}

func NewSeedService(repos *repository.Repositories, logger *zap.Logger) *SeedService {
	s := &SeedService{repos: repos, logger: logger}
	s.err = yaml.Unmarshal(demoData, &s.data)
	return s
}

// Data returns the parsed demo dataset.
func (s *SeedService) Data() (SeedData, error) {
	if s.err != nil {
		return SeedData{}, fmt.Errorf("parse demo data: %w", s.err)
	}
	return s.data, nil
}

// Vendors inserts every demo vendor.
func (s *SeedService) Vendors(ctx context.Context) ([]entity.Vendor, error) {
	data, err := s.Data()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	vendors := make([]entity.Vendor, 0, len(data.Vendors))
	for _, d := range data.Vendors {
		vendors = append(vendors, entity.Vendor{
			ID:             generateID(),
			Name:           d.Name,
			ContactPerson:  d.ContactPerson,
			Email:          d.Email,
			Phone:          d.Phone,
			WhatsAppNumber: d.WhatsAppNumber,
			Address:        entity.Address(d.Address),
			JobWorkTypes:   entity.StringList(d.JobWorkTypes),
			GSTIN:          d.GSTIN,
			PAN:            d.PAN,
			BankDetails:    entity.BankDetails(d.BankDetails),
			IsActive:       true,
			Rating:         d.Rating,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := s.repos.Vendor.CreateBatch(ctx, vendors); err != nil {
		return nil, fmt.Errorf("seed vendors: %w", err)
	}
	s.logger.Info("Seeded demo vendors", zap.Int("count", len(vendors)))
	return vendors, nil
}

// Materials inserts every demo material into the internal warehouse.
func (s *SeedService) Materials(ctx context.Context) ([]entity.Material, error) {
	data, err := s.Data()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	materials := make([]entity.Material, 0, len(data.Materials))
	for _, d := range data.Materials {
		materials = append(materials, entity.Material{
			ID:              generateID(),
			MaterialType:    d.MaterialType,
			Name:            d.Name,
			Description:     d.Description,
			Unit:            d.Unit,
			CurrentLocation: entity.LocationWarehouse,
			Quantity:        d.Quantity,
			BatchNumber:     d.BatchNumber,
			Color:           d.Color,
			GSM:             d.GSM,
			Quality:         d.Quality,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	if err := s.repos.Material.CreateBatch(ctx, materials); err != nil {
		return nil, fmt.Errorf("seed materials: %w", err)
	}
	s.logger.Info("Seeded demo materials", zap.Int("count", len(materials)))
	return materials, nil
}

// Users creates the demo accounts that do not exist yet. Vendor users are
// linked by vendor name.
func (s *SeedService) Users(ctx context.Context) ([]entity.User, error) {
	data, err := s.Data()
	if err != nil {
		return nil, err
	}
	var created []entity.User
	for _, d := range data.Users {
		email := strings.ToLower(d.Email)
		if _, err := s.repos.User.FindByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		var vendorID *string
		if d.Vendor != "" {
			v, err := s.repos.Vendor.FindByName(ctx, d.Vendor)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					s.logger.Warn("Demo user vendor missing, skipping", zap.String("email", email), zap.String("vendor", d.Vendor))
					continue
				}
				return nil, err
			}
			vendorID = &v.ID
		}

		hash, err := HashPassword(d.Password)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		u := entity.User{
			ID:           generateID(),
			Name:         d.Name,
			Email:        email,
			PasswordHash: hash,
			Role:         d.Role,
			Phone:        d.Phone,
			VendorID:     vendorID,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repos.User.Create(ctx, &u); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", email, err)
		}
		created = append(created, u)
	}
	s.logger.Info("Seeded demo users", zap.Int("count", len(created)))
	return created, nil
}

// SeedReport counts what All inserted.
type SeedReport struct {
	Vendors   int
	Materials int
	Users     int
}

// All seeds vendors and materials when their tables are empty, then any
// missing demo users.
func (s *SeedService) All(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	n, err := s.repos.Vendor.Count(ctx)
	if err != nil {
		return report, err
	}
	if n == 0 {
		vendors, err := s.Vendors(ctx)
		if err != nil {
			return report, err
		}
		report.Vendors = len(vendors)
	} else {
		s.logger.Info("Vendors exist, skipping demo vendors", zap.Int64("existing", n))
	}

	n, err = s.repos.Material.Count(ctx)
	if err != nil {
		return report, err
	}
	if n == 0 {
		materials, err := s.Materials(ctx)
		if err != nil {
			return report, err
		}
		report.Materials = len(materials)
	} else {
		s.logger.Info("Materials exist, skipping demo materials", zap.Int64("existing", n))
	}

	users, err := s.Users(ctx)
	if err != nil {
		return report, err
	}
	report.Users = len(users)
	return report, nil
}
