package migration

import (
	"errors"

	rulesdomain "github.com/ecoverde/compensa/internal/rules/domain"
	"gorm.io/gorm"
)

// RunMigrations creates the rule tables. Schema is small and append-only,
// so gorm's AutoMigrate is enough; the unique municipality indexes on the
// patch and app tables are part of the model definitions.
func RunMigrations(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	return conn.AutoMigrate(
		&rulesdomain.TreeRule{},
		&rulesdomain.PatchRule{},
		&rulesdomain.AppRule{},
		&rulesdomain.SpeciesStatus{},
	)
}
