package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// MaterialService manages warehouse stock.
type MaterialService struct {
	repo *repository.MaterialRepository
	seed *SeedService
}

func NewMaterialService(repo *repository.MaterialRepository, seed *SeedService) *MaterialService {
	return &MaterialService{repo: repo, seed: seed}
}

// MaterialInput holds the editable material fields. Location and vendor
// links are owned by job orders.
type MaterialInput struct {
	MaterialType string  `json:"material_type" binding:"required,oneof=Yarn 'Grey Fabric' 'Finished Fabric'"`
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Unit         string  `json:"unit" binding:"required,oneof=kg meters pieces"`
	Quantity     float64 `json:"quantity" binding:"gte=0"`
	BatchNumber  string  `json:"batch_number"`
	Color        string  `json:"color"`
	GSM          float64 `json:"gsm" binding:"gte=0"`
	Quality      string  `json:"quality"`
}

func (in *MaterialInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return validateInput(in)
}

func (in *MaterialInput) apply(m *entity.Material) {
	m.MaterialType = in.MaterialType
	m.Name = in.Name
	m.Description = in.Description
	m.Unit = in.Unit
	m.Quantity = in.Quantity
	m.BatchNumber = in.BatchNumber
	m.Color = in.Color
	m.GSM = in.GSM
	m.Quality = in.Quality
}

// Create adds a material to the internal warehouse.
func (s *MaterialService) Create(ctx context.Context, in MaterialInput) (*entity.Material, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	m := &entity.Material{
		ID:              generateID(),
		CurrentLocation: entity.LocationWarehouse,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	in.apply(m)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}
	return m, nil
}

type MaterialFilter struct {
	MaterialType    string `form:"material_type"`
	CurrentLocation string `form:"current_location"`
	VendorID        string `form:"vendor_id"`
	Search          string `form:"search"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
}

func (s *MaterialService) List(ctx context.Context, f MaterialFilter) ([]entity.Material, int64, error) {
	return s.repo.List(ctx, repository.MaterialListParams{
		MaterialType: f.MaterialType,
		Location:     f.CurrentLocation,
		VendorID:     f.VendorID,
		Search:       f.Search,
		Page:         f.Page,
		Size:         f.PageSize,
	})
}

func (s *MaterialService) Get(ctx context.Context, id string) (*entity.Material, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Material not found")
		}
		return nil, err
	}
	return m, nil
}

func (s *MaterialService) Update(ctx context.Context, id string, in MaterialInput) (*entity.Material, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.apply(m)
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update material: %w", err)
	}
	return m, nil
}

// Delete removes a material that is not out with a vendor.
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !m.InWarehouse() {
		return violation("Material %s is at a vendor and cannot be deleted", m.Name)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Material not found")
		}
		return err
	}
	return nil
}

type LocationSummary struct {
	Location string  `json:"location"`
	Quantity float64 `json:"quantity"`
	Count    int64   `json:"count"`
}

type TypeSummary struct {
	MaterialType  string            `json:"material_type"`
	Locations     []LocationSummary `json:"locations"`
	TotalQuantity float64           `json:"total_quantity"`
}

// Summary groups stock by material type, then by location.
func (s *MaterialService) Summary(ctx context.Context) ([]TypeSummary, error) {
	rows, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	out := []TypeSummary{}
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.MaterialType]
		if !ok {
			i = len(out)
			index[r.MaterialType] = i
			out = append(out, TypeSummary{MaterialType: r.MaterialType, Locations: []LocationSummary{}})
		}
		out[i].Locations = append(out[i].Locations, LocationSummary{
			Location: r.CurrentLocation,
			Quantity: r.TotalQuantity,
			Count:    r.Count,
		})
		out[i].TotalQuantity += r.TotalQuantity
	}
	return out, nil
}

// SeedDemo loads the demo materials when the warehouse is empty.
func (s *MaterialService) SeedDemo(ctx context.Context) ([]entity.Material, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, violation("Materials already exist (%d). Delete existing materials first or use seed script.", n)
	}
	return s.seed.Materials(ctx)
}

// ImportResult reports a CSV import. Rows are numbered from 1 including the header.
type ImportResult struct {
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

var importColumns = []string{"name", "material_type", "description", "quantity", "unit", "batch_number", "color", "gsm", "quality"}

// ImportCSV creates warehouse materials from a CSV file with a header row.
// charset names the file encoding (e.g. "windows-1252"); empty means UTF-8.
// Invalid rows are skipped and reported.
func (s *MaterialService) ImportCSV(ctx context.Context, r io.Reader, charset string) (*ImportResult, error) {
	if charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "utf8") {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, invalid("Unsupported charset %q", charset)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, invalid("CSV header is missing")
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	for _, required := range []string{"name", "material_type", "quantity", "unit"} {
		if _, ok := cols[required]; !ok {
			return nil, invalid("CSV column %q is required (columns: %s)", required, strings.Join(importColumns, ", "))
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	result := &ImportResult{}
	var batch []entity.Material
	now := time.Now()
	row := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			continue
		}

		in := MaterialInput{
			Name:         field(rec, "name"),
			MaterialType: field(rec, "material_type"),
			Description:  field(rec, "description"),
			Unit:         field(rec, "unit"),
			BatchNumber:  field(rec, "batch_number"),
			Color:        field(rec, "color"),
			Quality:      field(rec, "quality"),
		}
		if in.Quantity, err = parseNumber(field(rec, "quantity")); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid quantity", row))
			continue
		}
		if in.GSM, err = parseNumber(field(rec, "gsm")); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid gsm", row))
			continue
		}
		if err := in.validate(); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			continue
		}

		m := entity.Material{
			ID:              generateID(),
			CurrentLocation: entity.LocationWarehouse,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		in.apply(&m)
		batch = append(batch, m)
	}

	if len(batch) > 0 {
		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("import materials: %w", err)
		}
	}
	result.Created = len(batch)
	return result, nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
