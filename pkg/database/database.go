package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/config"
)

var db *gorm.DB

// InitDB initializes the database connection and runs migrations
func InitDB(cfg *config.Config) error {
	logLevel := cfg.DB.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	// PreferSimpleProtocol avoids "prepared statement already exists" errors
	// behind connection poolers
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	var err error
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	return db.AutoMigrate(
		&model.User{},
		&model.Tenant{},
		&model.UserTenantPermission{},
		&model.Garage{},
		&model.Vehicle{},
		&model.VehicleCategory{},
		&model.VehicleColor{},
		&model.Supplier{},
		&model.SupplyCategory{},
		&model.Supply{},
		&model.Collaborator{},
		&model.VehicleAssignment{},
		&model.InterventionType{},
		&model.InterventionReceptionReport{},
		&model.Report{},
		&model.Alert{},
		&model.Attachment{},
		&model.SystemParameter{},
	)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}
