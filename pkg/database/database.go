package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Config describes how to reach the store. URL wins over the discrete fields
// when it is set.
type Config struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	LogLevel string
}

// DSN builds the driver specific connection string.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case DriverSQLite:
		if c.Name == "" {
			return "inventory.db"
		}
		return c.Name
	default:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, sslMode)
	}
}

func dialector(c Config) (gorm.Dialector, error) {
	switch c.Driver {
	case "", DriverPostgres:
		return postgres.New(postgres.Config{
			DSN:                  c.DSN(),
			PreferSimpleProtocol: true, // pgbouncer / transaction-mode poolers
		}), nil
	case DriverMySQL:
		return mysql.Open(c.DSN()), nil
	case DriverSQLite:
		return sqlite.Open(c.DSN()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
}

// gormWriter forwards GORM's printf style output into zerolog.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.Info().Str("component", "gorm").Msgf(format, args...)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug", "trace":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// Open connects to the configured store and applies the pool settings.
func Open(c Config) (*gorm.DB, error) {
	d, err := dialector(c)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormLogLevel(c.LogLevel),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    false,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if c.Driver == DriverSQLite {
		// one writer at a time, otherwise SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// ConnectDB is Open for entry points that cannot continue without a store.
func ConnectDB(c Config) *gorm.DB {
	db, err := Open(c)
	if err != nil {
		log.Fatal().Err(err).Str("driver", c.Driver).Msg("Failed to connect to database")
	}
	log.Info().Str("driver", c.Driver).Msg("Database connection established")
	return db
}
