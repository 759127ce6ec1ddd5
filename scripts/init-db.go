package main

import (
	"fmt"
	"log"

	"medimarket/internal/config"
	"medimarket/internal/database"
	"medimarket/internal/migrations"
	"medimarket/internal/models"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Force recreate all tables
	fmt.Println("Dropping existing tables...")
	err = db.Migrator().DropTable(
		&models.User{},
		&models.CatalogProduct{},
		&models.Prescription{},
		&models.PrescriptionFile{},
		&models.ProcessedMedicine{},
		&models.StatusEntry{},
		&models.SuspendedOrder{},
		&models.SuspendedOrderItem{},
		&models.MoneyTransaction{},
		&models.EntityCommission{},
		&models.RefundRequest{},
		&models.PayoutSchedule{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	// Recreate schema and seed default data
	fmt.Println("Creating tables and default data...")
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Println("Database initialized successfully!")
}
