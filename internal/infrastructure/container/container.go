// Package container wires every dependency via Uber FX: config, logger,
// storage adapters, application services, the HTTP server, and the
// startup/shutdown lifecycle.
package container

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	appinventory "github.com/dinnerarbiter/core/internal/application/inventory"
	"github.com/dinnerarbiter/core/internal/application/arbiter"
	appreceipt "github.com/dinnerarbiter/core/internal/application/receipt"
	apptaste "github.com/dinnerarbiter/core/internal/application/taste"
	"github.com/dinnerarbiter/core/internal/infrastructure/config"
	"github.com/dinnerarbiter/core/internal/infrastructure/http/apiserver"
	"github.com/dinnerarbiter/core/internal/infrastructure/http/handlers"
	"github.com/dinnerarbiter/core/internal/infrastructure/ocr"
	"github.com/dinnerarbiter/core/internal/infrastructure/persistence/memory"
	"github.com/dinnerarbiter/core/internal/infrastructure/persistence/postgres"
	"github.com/dinnerarbiter/core/internal/infrastructure/persistence/redis"
	"github.com/dinnerarbiter/core/internal/infrastructure/security"
	"github.com/dinnerarbiter/core/internal/infrastructure/seed"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
	"github.com/dinnerarbiter/core/pkg/healthcheck"
	"github.com/dinnerarbiter/core/pkg/logger"
)

// Module is the full dependency graph for cmd/api.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	StorageModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides the process-wide Config.
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides the root zap logger.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: !cfg.IsProduction(),
		})
	},
)

// StorageModule provides the database/cache connection managers. Each
// is constructed only when config selects the real backend; when the
// in-memory adapters are selected its provider returns nil and /healthz
// does not ping it.
var StorageModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*postgres.ConnectionManager, error) {
		if cfg.Database.UseMemoryAdapter {
			return nil, nil
		}
		cm, err := postgres.NewConnectionManager(context.Background(), cfg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error { return cm.Migrate(ctx) },
			OnStop:  func(ctx context.Context) error { cm.Close(); return nil },
		})
		return cm, nil
	},
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *redis.CacheRepository {
		if cfg.Redis.UseInMemory {
			return nil
		}
		client := redis.NewCacheRepository(cfg, log)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error { return client.Close() },
		})
		return client
	},
)

// RepositoryModule selects the memory or postgres/redis adapter for
// every outbound interface based on config, so application services
// never know which backs them.
var RepositoryModule = fx.Provide(
	func(cfg *config.Config, cm *postgres.ConnectionManager) outbound.HouseholdRepository {
		if cfg.Database.UseMemoryAdapter {
			return memory.NewHouseholdRepository()
		}
		return postgres.NewHouseholdRepository(cm.Pool())
	},
	func(cfg *config.Config, cm *postgres.ConnectionManager) outbound.MealRepository {
		if cfg.Database.UseMemoryAdapter {
			return memory.NewMealRepository()
		}
		return postgres.NewMealRepository(cm.Pool())
	},
	func(cfg *config.Config, cm *postgres.ConnectionManager) outbound.InventoryRepository {
		if cfg.Database.UseMemoryAdapter {
			return memory.NewInventoryRepository()
		}
		return postgres.NewInventoryRepository(cm.Pool())
	},
	func(cfg *config.Config, cm *postgres.ConnectionManager) outbound.EventRepository {
		if cfg.Database.UseMemoryAdapter {
			return memory.NewEventRepository()
		}
		return postgres.NewEventRepository(cm.Pool())
	},
	func(cfg *config.Config, cm *postgres.ConnectionManager) outbound.TasteRepository {
		if cfg.Database.UseMemoryAdapter {
			return memory.NewTasteRepository()
		}
		return postgres.NewTasteRepository(cm.Pool())
	},
	func(cfg *config.Config, cm *postgres.ConnectionManager) outbound.ReceiptRepository {
		if cfg.Database.UseMemoryAdapter {
			return memory.NewReceiptRepository()
		}
		return postgres.NewReceiptRepository(cm.Pool())
	},
	func(cfg *config.Config, redisRepo *redis.CacheRepository) outbound.CacheRepository {
		if cfg.Redis.UseInMemory {
			return memory.NewCacheRepository()
		}
		return redisRepo
	},
	func(cfg *config.Config) outbound.OCRProvider {
		return ocr.NewMockProvider(cfg.OCR.APIKey)
	},
)

// ServiceModule wires the application-layer orchestration services and
// the best-effort hooks they fire into.
var ServiceModule = fx.Provide(
	appinventory.NewHook,
	apptaste.NewUpdater,
	arbiter.NewDecisionService,
	arbiter.NewFeedbackService,
	arbiter.NewDRMService,
	appreceipt.NewService,
	func(cfg *config.Config, log *zap.Logger) *security.AuthService {
		return security.NewAuthService(cfg, log)
	},
	func(meals outbound.MealRepository, households outbound.HouseholdRepository, log *zap.Logger) *seed.Seeder {
		return seed.NewSeeder(meals, households, log)
	},
	func(cfg *config.Config) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Name)
	},
)

// HTTPModule provides the handlers and the chi-routed server.
var HTTPModule = fx.Provide(
	handlers.New,
	handlers.NewHealthHandler,
	apiserver.New,
)

// LifecycleModule registers startup seeding and the HTTP server's
// start/stop hooks.
var LifecycleModule = fx.Invoke(registerLifecycle)

func registerLifecycle(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	seeder *seed.Seeder,
	health *healthcheck.HealthCheck,
	cm *postgres.ConnectionManager,
	redisRepo *redis.CacheRepository,
	server *apiserver.Server,
) {
	if cm != nil {
		health.Register("database", cm)
	}
	if redisRepo != nil {
		health.Register("cache", redisRepo)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting dinner arbiter",
				zap.String("environment", cfg.App.Environment),
			)
			if err := seeder.SeedStarterLibrary(ctx); err != nil {
				log.Warn("failed to seed starter meal library", zap.Error(err))
			}
			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down dinner arbiter")
			if err := server.Shutdown(ctx); err != nil {
				log.Error("failed to shut down HTTP server", zap.Error(err))
			}
			_ = log.Sync()
			return nil
		},
	})
}
