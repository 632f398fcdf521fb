package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sahilchouksey/campus-records/api"
	"github.com/sahilchouksey/campus-records/config"
	"github.com/sahilchouksey/campus-records/database"
	"github.com/sahilchouksey/campus-records/router"
	"github.com/sahilchouksey/campus-records/services"
	"github.com/sahilchouksey/campus-records/services/blob"
	"github.com/sahilchouksey/campus-records/services/cron"
	"github.com/sahilchouksey/campus-records/utils/cache"
	"github.com/sahilchouksey/campus-records/utils/metrics"
	"github.com/sahilchouksey/campus-records/utils/middleware"
	"golang.org/x/sync/errgroup"
)

// Application holds everything the server owns and must release on exit
type Application struct {
	Server *api.APIServer
	Store  *database.GORMStore
	Cron   *cron.CronManager
	Redis  *cache.RedisCache
	config *config.EnvironmentVariable
}

// Build connects the backing services and wires the routes
func Build(getEnv *config.EnvironmentVariable) (*Application, error) {
	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv)
	if err != nil {
		log.Error("Check whether the database is running and DB_* is set correctly")
		return nil, err
	}

	if err := store.Init(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}

	application := &Application{Store: store, config: getEnv}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	storeOpts := []services.EntityStoreOption{services.WithMetrics(appMetrics)}

	// Search cache is optional; without Redis every search hits the database
	if getEnv.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(getEnv.RedisURL)
		if err != nil {
			log.Warnf("Failed to connect to Redis: %v. Search caching will be disabled.", err)
		} else {
			application.Redis = redisCache
			storeOpts = append(storeOpts, services.WithSearchCache(cache.NewSearchCache(redisCache, getEnv.SearchCacheTTL)))
		}
	}

	entityStore := services.NewEntityStore(store.GetDB(), storeOpts...)

	blobs, err := newBlobStore(getEnv)
	if err != nil {
		application.Close()
		return nil, err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	if getEnv.CronEnabled {
		application.Cron = cron.NewCronManager(store.GetDB(), cron.Config{
			IDCardDir:       getEnv.IDCardDir,
			IDCardRetention: getEnv.IDCardRetention,
		})
		if err := application.Cron.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warnf("Failed to start cron jobs: %v", err)
			application.Cron = nil
		}
	}

	// Init API
	application.Server = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.Port))
	router.SetupRoutes(application.Server.GetEngine(), store, router.Dependencies{
		Store:    entityStore,
		Photos:   services.NewPhotoService(entityStore, blobs),
		IDCards:  services.NewIDCardService(entityStore, services.FPDFRenderer{}, getEnv.IDCardDir),
		Metrics:  appMetrics,
		Gatherer: registry,
		Security: middleware.SecurityConfig{AllowedOrigins: getEnv.AllowedOrigins},
	})

	return application, nil
}

func newBlobStore(getEnv *config.EnvironmentVariable) (blob.Store, error) {
	switch getEnv.BlobBackend {
	case "spaces":
		return blob.NewSpacesStore(blob.SpacesConfig{
			AccessKey: getEnv.SpacesAccessKey,
			SecretKey: getEnv.SpacesSecretKey,
			Bucket:    getEnv.SpacesBucket,
			Region:    getEnv.SpacesRegion,
			Endpoint:  getEnv.SpacesEndpoint,
			CDNURL:    getEnv.SpacesCDNURL,
		})
	case "local", "":
		return blob.NewLocalStore(getEnv.PhotoDir)
	default:
		return nil, fmt.Errorf("unsupported BLOB_BACKEND %q", getEnv.BlobBackend)
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
func (a *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Server.Run()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops background jobs and releases connections
func (a *Application) Close() {
	if a.Cron != nil {
		a.Cron.Stop()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warnf("Failed to close Redis: %v", err)
		}
	}
	if err := a.Store.Close(); err != nil {
		log.Warnf("Failed to close database: %v", err)
	}
}

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	application, err := Build(getEnv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
