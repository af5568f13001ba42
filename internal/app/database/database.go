package database

import (
	"fmt"
	"strings"
	"time"

	"group-mail/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Driver string

const (
	DriverSqlite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type Config struct {
	Driver           Driver
	ConnectionString string
	MaxOpenConns     int
	Migrate          bool
}

// Connect opens the configured database and, when asked, migrates models.
func Connect(cfg Config, l *logger.Logger, models ...any) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch Driver(strings.ToLower(string(cfg.Driver))) {
	case DriverPostgres:
		dialector = postgres.Open(cfg.ConnectionString)
	case DriverSqlite, "":
		dialector = sqlite.Open(cfg.ConnectionString)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	l.Infof("Establishing connection to %s database", dialector.Name())
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if cfg.Migrate {
		if err := RunMigrations(db, l, models...); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func RunMigrations(db *gorm.DB, l *logger.Logger, models ...any) error {
	l.Info("Running migrations for tables... ")
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migrating database failed: %w", err)
	}
	l.Info("All tables created (or already exist).")
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
