// Package storetest opens throwaway SQLite stores for repository and service
// tests.
package storetest

import (
	"github.com/frahmantamala/vaccination-registry/internal/core/datamodel"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory database with every model migrated. A single
// connection keeps the in-memory schema shared by all queries.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(datamodel.All()...); err != nil {
		return nil, err
	}
	return db, nil
}

// MustOpen is Open for BeforeEach blocks.
func MustOpen() *gorm.DB {
	db, err := Open()
	if err != nil {
		panic(err)
	}
	return db
}
