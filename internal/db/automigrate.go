package db

import (
	"fmt"

	"gorm.io/gorm"

	"permit-tracker-go/internal/config"
	checklistdomain "permit-tracker-go/internal/domain/checklist"
	countydomain "permit-tracker-go/internal/domain/county"
	documentdomain "permit-tracker-go/internal/domain/document"
	permitdomain "permit-tracker-go/internal/domain/permit"
	userdomain "permit-tracker-go/internal/domain/user"
)

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&userdomain.User{},
		&countydomain.County{},
		&permitdomain.Package{},
		&documentdomain.Document{},
		&checklistdomain.Item{},
		&checklistdomain.Progress{},
	}
}

// AutoMigrate derives the schema from the models. It backs the sqlite mode
// and tests; postgres uses the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Prepare brings the schema up to date for the configured driver.
func Prepare(db *gorm.DB, driver string) error {
	if driver == config.DriverSQLite {
		return AutoMigrate(db)
	}
	return Migrate(db)
}
