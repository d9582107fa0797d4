package config

import (
	"fmt"
	"log"

	"hostel-complaint-api/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the configured database and stores it in DB.
func InitDB(cfg *AppConfig) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		log.Fatal("Failed to configure database:", err)
	}

	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if cfg.IsProduction() && !cfg.DebugSQL {
		logLevel = logger.Warn
	}

	gormConfig := &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	}

	DB, err = gorm.Open(dialector, gormConfig)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Printf("Database connected successfully (%s)", cfg.DBDriver)
}

func dialectorFor(cfg *AppConfig) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUsername,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUsername,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// AutoMigrate creates or updates every table the API uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.ComplaintStatusHistory{},
		&models.Notification{},
		&models.Announcement{},
		&models.AnnouncementView{},
	)
}
