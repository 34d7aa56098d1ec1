package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/config"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured relational store without touching the global.
func Open(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Warn
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      level,
			Colorful:      true,
		},
	)

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	return db, nil
}

// InitDB opens the store and assigns it to DB.
func InitDB(cfg config.DatabaseConfig, debug bool) {
	db, err := Open(cfg, debug)
	if err != nil {
		logging.Log.WithError(err).Fatal("database connection failed")
	}
	DB = db
	logging.Log.Infof("connected to %s database", cfg.Driver)
}

// Close releases the underlying connection pool.
func Close() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logging.Log.WithError(err).Warn("closing database")
	}
}
