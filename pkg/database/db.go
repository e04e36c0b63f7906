package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

// Open connects to postgres when a DSN is given, otherwise to a local sqlite
// file, and migrates the schema. TranslateError is on so unique-index
// violations surface as gorm.ErrDuplicatedKey on both backends; the engine
// relies on that for its double-booking guarantee.
func Open(dsn, sqlitePath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			TranslateError: true,
		})
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{
			TranslateError: true,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the engine uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Event{},
		&models.Department{},
		&models.Role{},
		&models.Volunteer{},
		&models.Session{},
		&models.Zone{},
		&models.Assignment{},
		&models.CheckIn{},
		&models.SwapRequest{},
		&models.AttendanceCount{},
		&models.Availability{},
		&models.Message{},
		&models.MessageRead{},
		&models.OfflineAction{},
		&MasterUser{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
