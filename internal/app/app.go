package app

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"permit-tracker-go/internal/config"
	"permit-tracker-go/internal/db"
	checklistdomain "permit-tracker-go/internal/domain/checklist"
	countydomain "permit-tracker-go/internal/domain/county"
	documentdomain "permit-tracker-go/internal/domain/document"
	permitdomain "permit-tracker-go/internal/domain/permit"
	userdomain "permit-tracker-go/internal/domain/user"
	"permit-tracker-go/internal/objectstore"
	"permit-tracker-go/internal/repository/inmemory"
	checklistrepo "permit-tracker-go/internal/repository/postgres/checklist"
	countyrepo "permit-tracker-go/internal/repository/postgres/county"
	documentrepo "permit-tracker-go/internal/repository/postgres/document"
	permitrepo "permit-tracker-go/internal/repository/postgres/permit"
	userrepo "permit-tracker-go/internal/repository/postgres/user"
	"permit-tracker-go/internal/seed"
	"permit-tracker-go/internal/transport/httpserver"
	"permit-tracker-go/internal/transport/httpserver/handler"
	"permit-tracker-go/internal/transport/httpserver/handler/common"
	"permit-tracker-go/internal/transport/httpserver/handler/counties"
	"permit-tracker-go/internal/transport/httpserver/handler/objects"
	"permit-tracker-go/internal/transport/httpserver/handler/packages"
	"permit-tracker-go/internal/transport/httpserver/middleware"
	"permit-tracker-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	db         *gorm.DB
	services   *Services
	httpServer *http.Server
}

type Services struct {
	Users      *userdomain.Service
	Counties   *countydomain.Service
	Packages   *permitdomain.Service
	Checklists *checklistdomain.Service
	Documents  *documentdomain.Service
	Objects    objectstore.Store
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, cfg, log)
}

func NewWithConfig(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: initializing database")
	dbConn, err := OpenDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing object store", "backend", cfg.Storage.Backend)
	store, err := NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}

	services := NewServices(cfg, dbConn, store)

	if cfg.SeedOnStart {
		if _, err := RunSeed(ctx, services, log); err != nil {
			_ = db.Close(dbConn)
			return nil, err
		}
	}

	log.Info("app: initializing router")
	auth, err := middleware.NewAuth(ctx, cfg.Auth, services.Users, log)
	if err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}
	router := httpserver.NewRouter(cfg, NewHandlers(services, log), auth)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg.HTTP, router)

	return &App{
		cfg:        cfg,
		log:        log,
		db:         dbConn,
		services:   services,
		httpServer: srv,
	}, nil
}

// OpenDatabase connects and, unless DB_AUTO_MIGRATE is off, brings the
// schema up to date.
func OpenDatabase(cfg config.Config, log logger.Logger) (*gorm.DB, error) {
	dbConn, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := db.Prepare(dbConn, cfg.DB.Driver); err != nil {
			_ = db.Close(dbConn)
			return nil, err
		}
		log.Info("db: schema up to date")
	}
	return dbConn, nil
}

func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (objectstore.Store, error) {
	switch cfg.Backend {
	case config.StorageS3:
		return objectstore.NewS3(ctx, objectstore.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			UploadTTL:       cfg.UploadURLTTL,
			MaxBytes:        cfg.MaxUploadBytes,
		})
	case config.StorageLocal, "":
		return objectstore.NewLocal(cfg.LocalDir, cfg.UploadURLTTL, cfg.MaxUploadBytes)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

func NewServices(cfg config.Config, dbConn *gorm.DB, store objectstore.Store) *Services {
	countiesCache := inmemory.NewInMemoryCountiesCache(cfg.Checklist.CacheTTL)
	checklistCache := inmemory.NewInMemoryChecklistCache(cfg.Checklist.CacheSize, cfg.Checklist.CacheTTL)

	users := userdomain.NewService(userrepo.NewPostgres(dbConn))
	countyService := countydomain.NewService(countyrepo.NewPostgres(dbConn), countiesCache)
	packageService := permitdomain.NewService(permitrepo.NewPostgres(dbConn), countyService, store, cfg.Packages.StrictStatus)

	return &Services{
		Users:      users,
		Counties:   countyService,
		Packages:   packageService,
		Checklists: checklistdomain.NewService(checklistrepo.NewPostgres(dbConn), packageService, checklistCache),
		Documents:  documentdomain.NewService(documentrepo.NewPostgres(dbConn), packageService, store),
		Objects:    store,
	}
}

func NewHandlers(services *Services, log logger.Logger) *handler.Handlers {
	return handler.New(
		common.New(services.Users, log),
		counties.New(services.Counties, services.Checklists, log),
		packages.New(services.Packages, services.Checklists, services.Documents, log),
		objects.New(services.Objects, services.Documents, log),
	)
}

// RunSeed loads the embedded reference data. It is safe to run repeatedly.
func RunSeed(ctx context.Context, services *Services, log logger.Logger) (seed.Result, error) {
	data, err := seed.Default()
	if err != nil {
		return seed.Result{}, err
	}
	return seed.NewSeeder(services.Counties, services.Checklists, log).Run(ctx, data)
}

func (a *App) Config() config.Config {
	return a.cfg
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	return db.Close(a.db)
}

func (a *App) Services() *Services {
	return a.services
}
