package migrations

import (
	"log"

	"medimarket/internal/models"
	"medimarket/internal/repository"
	"medimarket/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunMigrations runs all database migrations and creates default data
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
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
		return err
	}

	// Create default data
	err = createDefaultData(db)
	if err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData creates the default admin, commission configs and
// catalog seed products
func createDefaultData(db *gorm.DB) error {
	log.Println("Creating default data...")

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)
	settlementRepo := repository.NewSettlementRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// Check if super admin already exists
	existingUser, err := userService.GetUserByUsername("admin")
	if err == nil && existingUser != nil {
		log.Println("Super admin user already exists")
		return nil
	}

	// Create super admin user
	log.Println("Creating super admin user...")
	superAdmin := &models.User{
		Username:    "admin",
		Email:       "admin@medimarket.local",
		PhoneNumber: "15550100001",
		Role:        string(models.SuperAdmin),
		IsActive:    true,
	}
	if err := userService.CreateUser(superAdmin, "admin123"); err != nil {
		log.Printf("Warning: Failed to create super admin user: %v", err)
	} else {
		log.Println("Super admin user created successfully")
	}

	// Commission rates are negotiated per entity, never a platform constant.
	log.Println("Creating default commission records...")
	commissions := []models.EntityCommission{
		{EntityID: uuid.New().String(), EntityType: models.EntityPharmacy, EntityName: "City Care Pharmacy", CommissionRate: 0.10, CollectionStatus: models.CollectionPending, CollectionFrequency: "weekly"},
		{EntityID: uuid.New().String(), EntityType: models.EntityPharmacy, EntityName: "Green Cross Pharmacy", CommissionRate: 0.12, CollectionStatus: models.CollectionPending, CollectionFrequency: "biweekly"},
		{EntityID: uuid.New().String(), EntityType: models.EntityVendor, EntityName: "MedSupply Wholesale", CommissionRate: 0.08, CollectionStatus: models.CollectionPending, CollectionFrequency: "monthly"},
	}
	for i := range commissions {
		if err := settlementRepo.SaveCommission(&commissions[i]); err != nil {
			log.Printf("Warning: Failed to create commission record for %s: %v", commissions[i].EntityName, err)
		}
	}

	log.Println("Seeding catalog products...")
	products := []models.CatalogProduct{
		{ID: uuid.New().String(), Name: "Warfex 5mg", GenericName: "Warfarin Sodium", Manufacturer: "Helix Pharma", ActiveIngredient: "warfarin", Category: "anticoagulant", Dosage: "5mg", Price: 12.50, UnitType: models.UnitBlister, RequiresPrescription: true, IsActive: true},
		{ID: uuid.New().String(), Name: "Aspirin Protect 100", GenericName: "Acetylsalicylic Acid", Manufacturer: "Bayer", ActiveIngredient: "aspirin", Category: "antiplatelet", Dosage: "100mg", Price: 4.75, UnitType: models.UnitBox, RequiresPrescription: false, IsActive: true},
		{ID: uuid.New().String(), Name: "Brufen 400", GenericName: "Ibuprofen", Manufacturer: "Abbott", ActiveIngredient: "ibuprofen", Category: "nsaid", Dosage: "400mg", Price: 6.20, UnitType: models.UnitBox, RequiresPrescription: false, IsActive: true},
		{ID: uuid.New().String(), Name: "Glucophage 500", GenericName: "Metformin HCl", Manufacturer: "Merck", ActiveIngredient: "metformin", Category: "antidiabetic", Dosage: "500mg", Price: 8.90, UnitType: models.UnitBox, RequiresPrescription: true, IsActive: true},
		{ID: uuid.New().String(), Name: "Zestril 10", GenericName: "Lisinopril", Manufacturer: "AstraZeneca", ActiveIngredient: "lisinopril", Category: "ace-inhibitor", Dosage: "10mg", Price: 11.30, UnitType: models.UnitBlister, RequiresPrescription: true, IsActive: true},
		{ID: uuid.New().String(), Name: "Losec 20", GenericName: "Omeprazole", Manufacturer: "AstraZeneca", ActiveIngredient: "omeprazole", Category: "ppi", Dosage: "20mg", Price: 9.40, UnitType: models.UnitBottle, RequiresPrescription: false, IsActive: true},
	}
	for i := range products {
		if err := catalogRepo.Create(&products[i]); err != nil {
			log.Printf("Warning: Failed to seed product %s: %v", products[i].Name, err)
		}
	}

	log.Println("Default data created successfully!")
	return nil
}
