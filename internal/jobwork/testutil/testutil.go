package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/config"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "nool-erp-test-secret"

// CompanyState is the home state used for GST in tests.
const CompanyState = "Tamil Nadu"

var dbSeq atomic.Int64

// TestEnv holds test environment resources
type TestEnv struct {
	DB       *gorm.DB
	Repos    *repository.Repositories
	Services *service.Services
	Router   *gin.Engine
	T        *testing.T
}

// SetupTestDB opens a private in-memory SQLite database with the job-work schema.
// A single connection keeps every query on the same in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:nooltest%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// TestDeps returns service dependencies with a fixed company and JWT config.
func TestDeps() service.Deps {
	return service.Deps{
		Company: config.CompanyConfig{
			Name:    "Nool Textiles",
			State:   CompanyState,
			GSTIN:   "33AABCN1234F1Z5",
			TaxRate: 5,
		},
		JWT: config.JWTConfig{
			Secret:            JWTSecret,
			AccessTokenExpire: 24 * time.Hour,
			Issuer:            "nool-erp",
		},
	}
}

// SetupServices builds the repository and service sets over a fresh database.
func SetupServices(t *testing.T, deps service.Deps) *TestEnv {
	t.Helper()
	db := SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return &TestEnv{
		DB:       db,
		Repos:    repos,
		Services: service.NewServices(db, repos, deps),
		T:        t,
	}
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, role, vendorID string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       userID,
		"uid":       userID,
		"name":      "Test " + role,
		"email":     userID + "@test.com",
		"role":      role,
		"vendor_id": vendorID,
		"iss":       "nool-erp",
		"iat":       now.Unix(),
		"exp":       now.Add(24 * time.Hour).Unix(),
		"jti":       fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// AdminToken returns a token for a default admin test user
func AdminToken() string {
	return GenerateTestToken("test-admin-001", entity.RoleAdmin, "")
}

// SupervisorToken returns a token for a default supervisor test user
func SupervisorToken() string {
	return GenerateTestToken("test-supervisor-001", entity.RoleSupervisor, "")
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response envelope into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedVendor creates an active vendor performing the given job work types.
// state sets the vendor's address state; empty means the company state.
func SeedVendor(t *testing.T, db *gorm.DB, name, state string, jobWorkTypes ...string) *entity.Vendor {
	t.Helper()
	if state == "" {
		state = CompanyState
	}
	if len(jobWorkTypes) == 0 {
		jobWorkTypes = []string{entity.JobWorkDyeing}
	}
	now := time.Now()
	v := &entity.Vendor{
		ID:             uuid.New().String(),
		Name:           name,
		ContactPerson:  "Contact " + name,
		Phone:          fmt.Sprintf("98%08d", dbSeq.Add(1)%100000000),
		WhatsAppNumber: "",
		Address:        entity.Address{City: "Tiruppur", State: state, Country: "India"},
		JobWorkTypes:   entity.StringList(jobWorkTypes),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("Failed to seed test vendor: %v", err)
	}
	return v
}

// SeedMaterial creates a warehouse material.
func SeedMaterial(t *testing.T, db *gorm.DB, name, materialType string, qty float64, unit string) *entity.Material {
	t.Helper()
	now := time.Now()
	m := &entity.Material{
		ID:              uuid.New().String(),
		MaterialType:    materialType,
		Name:            name,
		Unit:            unit,
		CurrentLocation: entity.LocationWarehouse,
		Quantity:        qty,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to seed test material: %v", err)
	}
	return m
}

// SeedUser creates an active user with the given password.
func SeedUser(t *testing.T, db *gorm.DB, email, password, role string, vendorID *string) *entity.User {
	t.Helper()
	hash, err := service.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	now := time.Now()
	u := &entity.User{
		ID:           uuid.New().String(),
		Name:         "User " + role,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		VendorID:     vendorID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Omit("Vendor").Create(u).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return u
}
