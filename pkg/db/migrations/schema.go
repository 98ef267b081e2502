package migrations

import "gorm.io/gorm"

var initialSchema = []string{
	`create table paste (
		id INTEGER PRIMARY KEY,
		value BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_used_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK(LENGTH(value) > 0)
	)`,
	`create table tag (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name),
		CHECK(LENGTH(name) > 0)
	)`,
	`create table paste_tag (
		paste_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		seq_id INTEGER NOT NULL,
		PRIMARY KEY (paste_id, tag_id),
		FOREIGN KEY (paste_id) REFERENCES paste(id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tag(id) ON DELETE CASCADE,
		CHECK(seq_id >= 0)
	)`,
}

var initialSchemaDown = []string{
	`drop table if exists paste_tag`,
	`drop table if exists tag`,
	`drop table if exists paste`,
}

// execAll runs each statement in order and stops at the first failure.
func execAll(db *gorm.DB, statements ...string) error {
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// allMigrations returns all migrations in order
func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create_initial_tables",
			Up: func(db *gorm.DB) error {
				return execAll(db, initialSchema...)
			},
			Down: func(db *gorm.DB) error {
				return execAll(db, initialSchemaDown...)
			},
		},
	}
}
