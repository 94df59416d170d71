package config

import (
	"fmt"
	"log"
	"os"

	"dentalclinic-backend/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB is the shared database handle used by handlers and the scheduling core.
var DB *gorm.DB

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ConnectDB opens the MySQL connection and migrates the schema.
// TranslateError lets callers match duplicate phone/insurance numbers with
// errors.Is(err, gorm.ErrDuplicatedKey) instead of driver-specific codes.
func ConnectDB() {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		getenv("DB_USER", "root"),
		getenv("DB_PASSWORD", ""),
		getenv("DB_HOST", "127.0.0.1"),
		getenv("DB_PORT", "3306"),
		getenv("DB_NAME", "dental_clinic"),
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	DB = db
	log.Println("Database connected & migrated")
}

// Migrate creates/updates all tables. Split out so tests can run it against
// an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PatientProfile{},
		&models.DentistProfile{},
		&models.Treatment{},
		&models.Appointment{},
		&models.Payment{},
	)
}
