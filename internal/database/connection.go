package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/schemaflow/internal/config"
	"github.com/example/schemaflow/internal/utils"
)

// Database manages the database connection and operations
type Database struct {
	db  *gorm.DB
	cfg *config.Config
	mu  sync.RWMutex
}

// New creates a new Database instance for the configured driver
func New(cfg *config.Config) *Database {
	return &Database{
		cfg: cfg,
	}
}

// EnsureExists creates the target database when it does not already exist.
// For SQLite that means the parent directory (opening the file creates it);
// for PostgreSQL a maintenance connection issues CREATE DATABASE.
func (d *Database) EnsureExists() error {
	switch d.cfg.Database.Driver {
	case config.DriverSQLite:
		dir := filepath.Dir(d.cfg.Database.Path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return utils.WrapConnectionError(d.cfg.Database.Path, err)
			}
		}
		return nil
	case config.DriverPostgres:
		return d.ensurePostgresDatabase()
	default:
		return utils.WrapConnectionError("", fmt.Errorf("unsupported driver: %s", d.cfg.Database.Driver))
	}
}

// Connect establishes a connection to the configured database.
// There is no retry: a connection failure is fatal to the run.
func (d *Database) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(d.gormLogLevel()),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var err error
	switch d.cfg.Database.Driver {
	case config.DriverSQLite:
		d.db, err = gorm.Open(sqlite.Open(d.cfg.Database.Path), gormConfig)
	case config.DriverPostgres:
		d.db, err = gorm.Open(postgres.Open(d.buildPostgresDSN(d.cfg.Database.DBName)), gormConfig)
	default:
		err = fmt.Errorf("unsupported driver: %s", d.cfg.Database.Driver)
	}
	if err != nil {
		return utils.WrapConnectionError(d.target(), err)
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return utils.WrapConnectionError(d.target(), err)
	}

	sqlDB.SetMaxOpenConns(d.cfg.Database.MaxConnections)
	sqlDB.SetMaxIdleConns(d.cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(d.cfg.Database.ConnMaxLifetime)

	return nil
}

// Health checks the database connection health
func (d *Database) Health(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return utils.WrapConnectionError(d.target(), fmt.Errorf("database not connected"))
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return utils.WrapConnectionError(d.target(), err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return utils.WrapConnectionError(d.target(), err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	d.db = nil
	return nil
}

// DB returns the underlying gorm.DB instance
func (d *Database) DB() *gorm.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// SetDB sets the underlying gorm.DB instance (for testing)
func (d *Database) SetDB(db *gorm.DB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.db = db
}

// Driver reports the configured driver name
func (d *Database) Driver() string {
	return d.cfg.Database.Driver
}

// ensurePostgresDatabase connects to the maintenance database and creates
// the target database when missing
func (d *Database) ensurePostgresDatabase() error {
	maint, err := gorm.Open(postgres.Open(d.buildPostgresDSN("postgres")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return utils.WrapConnectionError(d.target(), err)
	}
	defer func() {
		if sqlDB, err := maint.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	var count int64
	if err := maint.Raw(
		"SELECT count(*) FROM pg_database WHERE datname = ?", d.cfg.Database.DBName,
	).Scan(&count).Error; err != nil {
		return utils.WrapConnectionError(d.target(), err)
	}

	if count == 0 {
		stmt := fmt.Sprintf("CREATE DATABASE %q", d.cfg.Database.DBName)
		if err := maint.Exec(stmt).Error; err != nil {
			return utils.WrapConnectionError(d.target(), err)
		}
	}

	return nil
}

// buildPostgresDSN constructs the PostgreSQL DSN for the given database name
func (d *Database) buildPostgresDSN(dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.cfg.Database.Host, d.cfg.Database.Port, d.cfg.Database.User,
		d.cfg.Database.Password, dbname, d.cfg.Database.SSLMode)
}

// target identifies the database in error messages
func (d *Database) target() string {
	if d.cfg.Database.Driver == config.DriverSQLite {
		return d.cfg.Database.Path
	}
	return fmt.Sprintf("%s:%d/%s", d.cfg.Database.Host, d.cfg.Database.Port, d.cfg.Database.DBName)
}

// gormLogLevel maps the configured log level onto GORM's logger levels
func (d *Database) gormLogLevel() logger.LogLevel {
	switch d.cfg.Log.Level {
	case "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	default:
		return logger.Error
	}
}
