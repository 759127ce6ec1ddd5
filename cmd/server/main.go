package main

import (
	"log"

	"medimarket/internal/config"
	"medimarket/internal/database"
	"medimarket/internal/handlers"
	"medimarket/internal/migrations"
	"medimarket/internal/redis"
	"medimarket/internal/repository"
	"medimarket/internal/services"
	"medimarket/pkg/notify"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations and seed default data
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize notification client
	notifyClient := notify.NewClient(cfg.NotifyAPIURL, cfg.NotifyAPIKey)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	suspendedOrderRepo := repository.NewSuspendedOrderRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo)
	interactionService := services.NewMedicineInteractionService()
	notificationService := services.NewNotificationService(notifyClient)
	prescriptionService := services.NewPrescriptionService(prescriptionRepo, catalogRepo, interactionService, notificationService, redisClient)
	reconciliationService := services.NewReconciliationService(suspendedOrderRepo, catalogRepo, notificationService)
	settlementService := services.NewSettlementService(settlementRepo, redisClient)

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(userService)
	prescriptionHandler := handlers.NewPrescriptionHandler(prescriptionService)
	orderHandler := handlers.NewOrderHandler(reconciliationService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		// Staff management
		api.POST("/users", apiHandler.CreateUser)
		api.GET("/users", apiHandler.ListUsers)
		api.GET("/users/:id", apiHandler.GetUser)
		api.POST("/users/:id/deactivate", apiHandler.DeactivateUser)
		api.DELETE("/users/:id", apiHandler.DeleteUser)

		// Prescription workflow
		api.POST("/prescriptions", prescriptionHandler.Submit)
		api.GET("/prescriptions", prescriptionHandler.List)
		api.GET("/prescriptions/:id", prescriptionHandler.Get)
		api.POST("/prescriptions/:id/assign", prescriptionHandler.AssignReader)
		api.POST("/prescriptions/:id/status", prescriptionHandler.UpdateStatus)
		api.POST("/prescriptions/:id/medicines", prescriptionHandler.AddMedicine)
		api.PUT("/prescriptions/:id/medicines/:medicine_id", prescriptionHandler.UpdateMedicine)
		api.DELETE("/prescriptions/:id/medicines/:medicine_id", prescriptionHandler.RemoveMedicine)
		api.GET("/prescriptions/:id/interactions", prescriptionHandler.CheckInteractions)

		// Suspended order reconciliation
		api.POST("/suspended-orders", orderHandler.Suspend)
		api.GET("/suspended-orders", orderHandler.List)
		api.GET("/suspended-orders/:id", orderHandler.Get)
		api.POST("/suspended-orders/:id/modify", orderHandler.Modify)
		api.POST("/suspended-orders/:id/items/:item_id/restore", orderHandler.RestoreItem)
		api.POST("/suspended-orders/:id/approve", orderHandler.Approve)
		api.POST("/suspended-orders/:id/reject", orderHandler.Reject)
		api.POST("/suspended-orders/:id/escalate", orderHandler.Escalate)

		// Settlement ledger
		api.POST("/settlements", settlementHandler.RecordSettlement)
		api.GET("/commissions", settlementHandler.ListCommissions)
		api.GET("/commissions/:entity_type/:entity_id", settlementHandler.GetCommission)
		api.POST("/commissions/:entity_type/:entity_id/collect", settlementHandler.CollectCommission)
		api.POST("/doctor-commissions", settlementHandler.RecordDoctorCommission)
		api.POST("/refunds", settlementHandler.RequestRefund)
		api.POST("/refunds/:id/resolve", settlementHandler.ResolveRefund)
		api.POST("/payouts", settlementHandler.SchedulePayout)
		api.PUT("/payouts/:id/status", settlementHandler.SetPayoutStatus)
		api.GET("/payouts/due", settlementHandler.DuePayouts)
		api.GET("/metrics", settlementHandler.Metrics)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
