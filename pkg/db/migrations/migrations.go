package migrations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// migrationHistory tracks applied migrations
type migrationHistory struct {
	ID          uint   `gorm:"primaryKey"`
	Version     int    `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

func (migrationHistory) TableName() string {
	return "schema_migrations"
}

const historyTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	id INTEGER PRIMARY KEY,
	version INTEGER NOT NULL UNIQUE,
	description TEXT,
	applied_at INTEGER
)`

// MigrationStatus represents the status of a migration
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

// Migrator applies versioned schema changes. Calls are serialized.
type Migrator struct {
	mutex      sync.Mutex
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator creates a migrator for the paste store schema
func NewMigrator(db *gorm.DB) *Migrator {
	return NewMigratorWith(db, allMigrations())
}

// NewMigratorWith creates a migrator for an explicit migration list
func NewMigratorWith(db *gorm.DB, migrations []Migration) *Migrator {
	sorted := append([]Migration(nil), migrations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	return &Migrator{
		db:         db,
		migrations: sorted,
	}
}

// Latest returns the highest known migration version.
func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

// Migrate applies every migration newer than the recorded version, each in
// its own transaction. Any failure is returned as *MigrationError.
func (m *Migrator) Migrate(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.validate(); err != nil {
		return err
	}

	if err := m.db.WithContext(ctx).Exec(historyTable).Error; err != nil {
		return &MigrationError{Err: fmt.Errorf("failed to create migration history table: %w", err)}
	}

	current, err := m.currentVersion(ctx)
	if err != nil {
		return &MigrationError{Err: err}
	}

	for _, migration := range m.migrations {
		if migration.Version <= current {
			continue
		}

		if err := m.runMigration(ctx, migration); err != nil {
			return &MigrationError{
				Version:     migration.Version,
				Description: migration.Description,
				Err:         err,
			}
		}
	}

	return nil
}

// CurrentVersion returns the highest applied version, 0 for a fresh store.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.db.WithContext(ctx).Migrator().HasTable(&migrationHistory{}) {
		return 0, nil
	}
	return m.currentVersion(ctx)
}

// Rollback rolls back the last applied migration
func (m *Migrator) Rollback(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var last migrationHistory
	if err := m.db.WithContext(ctx).Order("version DESC").First(&last).Error; err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	var migration *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == last.Version {
			migration = &m.migrations[i]
			break
		}
	}

	if migration == nil {
		return fmt.Errorf("migration %d not found", last.Version)
	}
	if migration.Down == nil {
		return fmt.Errorf("migration %d has no down script", last.Version)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Down(tx); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}

		if err := tx.Delete(&last).Error; err != nil {
			return fmt.Errorf("failed to update migration history: %w", err)
		}
		return nil
	})
}

// Status returns migration status
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	appliedVersions := make(map[int]bool)
	if m.db.WithContext(ctx).Migrator().HasTable(&migrationHistory{}) {
		var applied []migrationHistory
		if err := m.db.WithContext(ctx).Find(&applied).Error; err != nil {
			return nil, fmt.Errorf("failed to query migration history: %w", err)
		}

		for _, a := range applied {
			appliedVersions[a.Version] = true
		}
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		statuses = append(statuses, MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
			Applied:     appliedVersions[migration.Version],
		})
	}

	return statuses, nil
}

func (m *Migrator) validate() error {
	previous := 0
	for _, migration := range m.migrations {
		if migration.Version <= previous {
			return &MigrationError{
				Version:     migration.Version,
				Description: migration.Description,
				Err:         errors.New("versions must be positive and strictly increasing"),
			}
		}
		if migration.Up == nil {
			return &MigrationError{
				Version:     migration.Version,
				Description: migration.Description,
				Err:         errors.New("missing up script"),
			}
		}
		previous = migration.Version
	}
	return nil
}

func (m *Migrator) currentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.db.WithContext(ctx).
		Model(&migrationHistory{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to query current version: %w", err)
	}
	return version, nil
}

func (m *Migrator) runMigration(ctx context.Context, migration Migration) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Up(tx); err != nil {
			return err
		}

		history := migrationHistory{
			Version:     migration.Version,
			Description: migration.Description,
		}
		return tx.Create(&history).Error
	})
}
