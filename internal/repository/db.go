package repository

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens a PostgreSQL connection pool for the given DSN.
func Connect(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("database connected")
	return db, nil
}

// AutoMigrate creates or updates the schema for all models. Intended
// for development; production uses versioned migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookingModel{},
		&ServiceModel{},
		&AddOnModel{},
		&DetailerModel{},
		&TimeEntryModel{},
	)
}
