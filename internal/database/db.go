package database

import (
	"log"
	"os"
	"time"

	"go-pos-checkout/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	// Credentials come from .env so the binary stays portable
	dsn := os.Getenv("DB_DSN")

	if dsn == "" {
		log.Fatal("❌ Error: DB_DSN not found in .env file. Please configure your database.")
	}

	var err error

	// Connect with GORM (wait for the DB container to come up)
	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts:", err)
	}

	log.Println("✅ Successfully connected to MySQL!")

	err = DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Settings{},
		&models.PendingCheckout{},
	)
	if err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	log.Println("✅ Database Schema Synced!")
}
