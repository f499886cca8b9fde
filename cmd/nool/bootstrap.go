package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/config"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"github.com/Sudarsan9786/nool-erp/internal/shared/notify"
	"github.com/Sudarsan9786/nool-erp/internal/shared/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// initSequencer returns the Redis counter when enabled and reachable, else the
// database counter table.
func initSequencer(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (repository.Sequencer, func()) {
	if !cfg.Enabled {
		return repository.DBSequencer{}, func() {}
	}
	client := initRedis(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, using database order sequence", zap.Error(err))
		client.Close()
		return repository.DBSequencer{}, func() {}
	}
	log.Info("Using Redis order sequence", zap.String("addr", client.Options().Addr))
	return repository.NewRedisSequencer(client), func() { client.Close() }
}

// initStore returns nil when no MinIO endpoint is configured.
func initStore(ctx context.Context, cfg config.MinIOConfig, log *zap.Logger) storage.ObjectStore {
	if cfg.Endpoint == "" {
		return nil
	}
	store, err := storage.NewMinIOStore(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.UseSSL)
	if err != nil {
		log.Warn("MinIO disabled", zap.Error(err))
		return nil
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Warn("MinIO bucket unavailable, challan archive disabled", zap.Error(err))
		return nil
	}
	log.Info("Archiving challans to MinIO", zap.String("bucket", cfg.Bucket))
	return store
}

func newNotifier(cfg config.NotifyConfig, log *zap.Logger) (notify.Notifier, error) {
	switch cfg.Channel {
	case "whatsapp":
		t := cfg.Twilio
		return notify.NewTwilioClient(t.AccountSID, t.AuthToken, t.PhoneNumber, t.BaseURL), nil
	case "telegram":
		return notify.NewTelegramNotifier(cfg.Telegram.BotToken)
	case "log", "":
		return notify.NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notify channel %q", cfg.Channel)
	}
}
