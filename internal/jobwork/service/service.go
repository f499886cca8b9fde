package service

import (
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/config"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"github.com/Sudarsan9786/nool-erp/internal/shared/notify"
	"github.com/Sudarsan9786/nool-erp/internal/shared/sse"
	"github.com/Sudarsan9786/nool-erp/internal/shared/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dispatcher queues vendor notifications without blocking the caller.
type Dispatcher interface {
	Dispatch(msg notify.Message)
}

// Deps are the collaborators shared by the job-work services.
type Deps struct {
	Sequencer  repository.Sequencer
	Dispatcher Dispatcher
	Hub        *sse.Hub
	Store      storage.ObjectStore // optional challan archive
	Company    config.CompanyConfig
	JWT        config.JWTConfig
	Logger     *zap.Logger
	Now        func() time.Time
}

// Services job-work service set
type Services struct {
	Auth     *AuthService
	User     *UserService
	Vendor   *VendorService
	Material *MaterialService
	JobOrder *JobOrderService
	Seed     *SeedService
}

func NewServices(db *gorm.DB, repos *repository.Repositories, deps Deps) *Services {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sequencer == nil {
		deps.Sequencer = repository.DBSequencer{}
	}
	if deps.Hub == nil {
		deps.Hub = sse.NewHub(deps.Logger)
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = discard{}
	}

	seed := NewSeedService(repos, deps.Logger)
	return &Services{
		Auth:     NewAuthService(repos.User, repos.Vendor, deps.JWT, deps.Now),
		User:     NewUserService(repos.User, repos.Vendor),
		Vendor:   NewVendorService(repos.Vendor, repos.JobOrder, seed),
		Material: NewMaterialService(repos.Material, seed),
		JobOrder: NewJobOrderService(db, repos, deps),
		Seed:     seed,
	}
}

// Caller is the authenticated user a request runs as.
type Caller struct {
	UserID   string
	Role     string
	VendorID string
}

// IsVendor reports whether results must be limited to the caller's vendor.
func (c Caller) IsVendor() bool {
	return c.Role == entity.RoleVendor
}

type discard struct{}

func (discard) Dispatch(notify.Message) {}

func generateID() string {
	return uuid.New().String()
}
