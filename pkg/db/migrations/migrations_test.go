package migrations

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "migrations.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type schemaObject struct {
	Type string
	Name string
	SQL  string
}

func schemaSnapshot(t *testing.T, db *gorm.DB) []schemaObject {
	t.Helper()

	var objects []schemaObject
	err := db.Raw("SELECT type, name, COALESCE(sql, '') AS sql FROM sqlite_master ORDER BY type, name").
		Scan(&objects).Error
	require.NoError(t, err)
	return objects
}

func hasTable(db *gorm.DB, name string) bool {
	return db.Migrator().HasTable(name)
}

func TestMigrate_CreatesInitialSchema(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db)

	require.NoError(t, m.Migrate(context.Background()))

	for _, table := range []string{"paste", "tag", "paste_tag", "schema_migrations"} {
		assert.True(t, hasTable(db, table), "table %s should exist", table)
	}

	version, err := m.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, 1, m.Latest())
}

func TestMigrate_TwiceIsNoop(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewMigrator(db).Migrate(ctx))
	before := schemaSnapshot(t, db)

	require.NoError(t, NewMigrator(db).Migrate(ctx))
	after := schemaSnapshot(t, db)

	assert.Equal(t, before, after)

	var count int64
	require.NoError(t, db.Model(&migrationHistory{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMigrate_SchemaConstraints(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrator(db).Migrate(context.Background()))

	assert.Error(t, db.Exec("INSERT INTO paste (value) VALUES (?)", []byte{}).Error)
	assert.Error(t, db.Exec("INSERT INTO tag (name) VALUES ('')").Error)

	require.NoError(t, db.Exec("INSERT INTO tag (name) VALUES ('go')").Error)
	assert.Error(t, db.Exec("INSERT INTO tag (name) VALUES ('go')").Error)
	require.NoError(t, db.Exec("INSERT INTO tag (name) VALUES ('Go')").Error)

	require.NoError(t, db.Exec("INSERT INTO paste (id, value) VALUES (1, 'x')").Error)
	assert.Error(t, db.Exec("INSERT INTO paste_tag (paste_id, tag_id, seq_id) VALUES (1, 1, -1)").Error)
	assert.Error(t, db.Exec("INSERT INTO paste_tag (paste_id, tag_id, seq_id) VALUES (1, 99, 0)").Error)
}

func TestMigrate_ToleratesUnsortedInput(t *testing.T) {
	db := openTestDB(t)

	var order []int
	record := func(v int) func(*gorm.DB) error {
		return func(*gorm.DB) error {
			order = append(order, v)
			return nil
		}
	}

	m := NewMigratorWith(db, []Migration{
		{Version: 3, Description: "third", Up: record(3)},
		{Version: 1, Description: "first", Up: record(1)},
		{Version: 2, Description: "second", Up: record(2)},
	})

	require.NoError(t, m.Migrate(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestMigrate_OnlyAppliesNewerVersions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewMigrator(db).Migrate(ctx))

	ran := false
	extended := append(allMigrations(), Migration{
		Version:     2,
		Description: "add_paste_index",
		Up: func(tx *gorm.DB) error {
			ran = true
			return tx.Exec("CREATE INDEX idx_paste_last_used ON paste(last_used_at)").Error
		},
	})

	m := NewMigratorWith(db, extended)
	require.NoError(t, m.Migrate(ctx))
	assert.True(t, ran)

	version, err := m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestMigrate_FailureLeavesNoPartialSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	broken := append(allMigrations(), Migration{
		Version:     2,
		Description: "broken",
		Up: func(tx *gorm.DB) error {
			return execAll(tx,
				"CREATE TABLE half_done (id INTEGER PRIMARY KEY)",
				"THIS IS NOT SQL",
			)
		},
	})

	m := NewMigratorWith(db, broken)
	err := m.Migrate(ctx)
	require.Error(t, err)

	var migrationErr *MigrationError
	require.True(t, errors.As(err, &migrationErr))
	assert.Equal(t, 2, migrationErr.Version)
	assert.Equal(t, "broken", migrationErr.Description)

	assert.False(t, hasTable(db, "half_done"))
	assert.True(t, hasTable(db, "paste"))

	version, err := m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestMigrate_RejectsDuplicateVersions(t *testing.T) {
	db := openTestDB(t)
	noop := func(*gorm.DB) error { return nil }

	m := NewMigratorWith(db, []Migration{
		{Version: 1, Description: "a", Up: noop},
		{Version: 1, Description: "b", Up: noop},
	})

	var migrationErr *MigrationError
	assert.True(t, errors.As(m.Migrate(context.Background()), &migrationErr))
}

func TestStatusAndRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	m := NewMigrator(db)

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Applied)

	require.NoError(t, m.Migrate(ctx))

	statuses, err = m.Status(ctx)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.Equal(t, "create_initial_tables", statuses[0].Description)

	require.NoError(t, m.Rollback(ctx))
	assert.False(t, hasTable(db, "paste"))
	assert.False(t, hasTable(db, "paste_tag"))

	version, err := m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	assert.Error(t, m.Rollback(ctx))
}
