package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	config "github.com/mwantia/pastebox/internal/config/server"
	"github.com/mwantia/pastebox/pkg/db/migrations"
	"github.com/mwantia/pastebox/pkg/log"
)

// SQLiteStore implements PasteStore using SQLite
type SQLiteStore struct {
	db    *gorm.DB
	cfg   SQLiteConfig
	log   log.LoggerService
	ready atomic.Bool

	migrator *migrations.Migrator
}

var _ PasteStore = (*SQLiteStore)(nil)

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path             string
	BusyTimeout      time.Duration
	BusyRetries      int
	RetryBackoff     time.Duration
	OperationTimeout time.Duration
	PageSize         int
	LogLevel         logger.LogLevel
	SlowThreshold    time.Duration

	Logger log.LoggerService
	Clock  func() time.Time
}

// ConfigFromServer maps the store section of the server configuration.
func ConfigFromServer(cfg config.StoreServerConfig, l log.LoggerService) SQLiteConfig {
	return SQLiteConfig{
		Path:             cfg.Path,
		BusyTimeout:      config.ParseDuration(cfg.BusyTimeout, 5*time.Second),
		BusyRetries:      cfg.BusyRetries,
		RetryBackoff:     config.ParseDuration(cfg.RetryBackoff, 25*time.Millisecond),
		OperationTimeout: config.ParseDuration(cfg.OperationTimeout, 0),
		PageSize:         cfg.PageSize,
		LogLevel:         ParseGormLogLevel(cfg.LogLevel),
		SlowThreshold:    config.ParseDuration(cfg.SlowThreshold, 200*time.Millisecond),
		Logger:           l,
	}
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.cfg.Path
}

// Migrator returns the schema migrator bound to this store
func (s *SQLiteStore) Migrator() *migrations.Migrator {
	return s.migrator
}

// NewSQLiteStore creates a new SQLite-backed paste store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = log.NewLoggerServiceWithWriter("store", config.LogServerConfig{Level: "ERROR"}, io.Discard)
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.BusyRetries < 0 {
		cfg.BusyRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 25 * time.Millisecond
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time {
			return time.Now().UTC()
		}
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn(cfg)), &gorm.Config{
		Logger:         NewGormLogger(cfg.Logger.Named("sql"), cfg.LogLevel, cfg.SlowThreshold),
		NowFunc:        cfg.Clock,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:       db,
		cfg:      cfg,
		log:      cfg.Logger,
		migrator: migrations.NewMigrator(db),
	}, nil
}

// Open creates, connects and migrates a store. Any returned store is ready.
func Open(ctx context.Context, cfg SQLiteConfig) (*SQLiteStore, error) {
	s, err := NewSQLiteStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := s.Connect(ctx); err != nil {
		s.Close()
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// dsn enables foreign keys and the busy timeout on every pooled connection.
func dsn(cfg SQLiteConfig) string {
	return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var enabled int
	if err := s.db.WithContext(ctx).Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		return fmt.Errorf("failed to query foreign key enforcement: %w", err)
	}
	if enabled != 1 {
		return errors.New("foreign key enforcement is not active")
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.ready.Store(false)

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs database migrations and marks the store ready for use
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := s.migrator.Migrate(ctx); err != nil {
		s.ready.Store(false)
		return err
	}

	s.ready.Store(true)
	s.log.Debug("Schema at version %d", s.migrator.Latest())
	return nil
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) now() time.Time {
	return s.cfg.Clock()
}

// run executes fn against the store, retrying while SQLite reports the
// database as busy or locked.
func (s *SQLiteStore) run(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	if !s.ready.Load() {
		return fmt.Errorf("%w: %s", ErrNotReady, op)
	}

	if s.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.OperationTimeout)
		defer cancel()
	}

	backoff := s.cfg.RetryBackoff
	for attempt := 0; ; attempt++ {
		err := fn(s.db.WithContext(ctx))
		if err == nil || !isBusy(err) {
			return err
		}

		if attempt >= s.cfg.BusyRetries {
			return fmt.Errorf("%w: %s after %d attempts: %v", ErrStoreBusy, op, attempt+1, err)
		}

		s.log.Debug("Store busy during '%s', retrying in %s", op, backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %s: %v", ErrStoreBusy, op, ctx.Err())
		case <-timer.C:
		}
		backoff *= 2
	}
}

// transaction runs fn inside a single transaction. fn must only use tx.
func (s *SQLiteStore) transaction(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return s.run(ctx, op, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

func exists(tx *gorm.DB, model any, id int64) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
