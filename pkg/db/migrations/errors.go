package migrations

import "fmt"

// MigrationError reports a migration that could not be applied. The schema is
// left at the last successfully recorded version.
type MigrationError struct {
	Version     int
	Description string
	Err         error
}

func (e *MigrationError) Error() string {
	if e.Version == 0 {
		return fmt.Sprintf("migration failed: %v", e.Err)
	}
	return fmt.Sprintf("migration %d (%s) failed: %v", e.Version, e.Description, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
