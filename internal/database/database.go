package database

import (
	"household-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 when running behind a connection pooler.
// TranslateError turns unique violations into gorm.ErrDuplicatedKey, which
// the households service relies on.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
}

// AutoMigrate creates the household tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Household{},
		&domain.HouseholdMember{},
		&domain.HouseholdInvitation{},
	)
}
