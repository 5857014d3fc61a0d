package db

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workshop-backend/config"
	"workshop-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Info("Running database migrations...")
	if err := Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Info("Database initialization complete.")
	return gormDB, nil
}

// Migrate runs the schema migrations for every model. Split out so tests
// can run it against an in-memory SQLite database.
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&model.Location{},
		&model.Customer{},
		&model.ServiceTicket{},
		&model.TicketStatusHistory{},
		&model.VehicleCase{},
		&model.VehicleStatusHistory{},
		&model.BatteryRecord{},
		&model.BatteryStatusHistory{},
		&model.Attachment{},
		&model.Invoice{},
		&model.InvoiceLine{},
	)
}
