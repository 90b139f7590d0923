package db

import (
	"fmt"                       // Error wrapping
	"moneybase/internal/config" // Database settings
	"strings"                   // DSN parameters

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // PostgreSQL driver for GORM (pgx)
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM SQL logger
)

// DSN builds the data source name for the configured driver
func DSN(cfg config.Database) (string, error) {
	switch cfg.Driver {
	case "mysql", "":
		return cfg.User + ":" + cfg.Password + "@tcp(" + cfg.Host + ":" + cfg.Port + ")/" + cfg.Name + "?parseTime=true", nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name), nil
	case "sqlite":
		return sqliteDSN(cfg.Path), nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// sqliteDSN turns on foreign keys for every pooled connection, not just the
// first one. Cascades rely on them and SQLite keeps them off by default.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") || strings.Contains(path, "_fk=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=1"
}

// Open connects to the ledger store using the configured dialect
func Open(cfg config.Database) (*gorm.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	var dialector gorm.Dialector // Dialect picked from config
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		dialector = mysql.Open(dsn)
	}
	gormLogger := logger.Default.LogMode(logger.Silent) // Quiet unless DB_LOG is set
	if cfg.LogSQL {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	sqlDB, err := db.DB() // Underlying pool
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns) // SQLite tests pin this to 1
	}
	logrus.WithFields(logrus.Fields{
		"driver": cfg.Driver, // Selected dialect
		"host":   cfg.Host,   // Host (empty for sqlite)
		"name":   cfg.Name,   // Database name
	}).Debug("Database opened")
	return db, nil
}
