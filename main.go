package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/danuarts/takeout-app/config"
	"github.com/danuarts/takeout-app/hub"
	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/router"
	"github.com/danuarts/takeout-app/scheduler"
	"github.com/danuarts/takeout-app/services"
	"github.com/danuarts/takeout-app/store"
	"github.com/danuarts/takeout-app/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	orderStore := store.New(db)
	notificationHub := hub.New()
	gateway := services.NewPaymentGatewayFromEnv()
	orderSvc := services.NewOrderService(orderStore, notificationHub, gateway)

	sched := scheduler.New(orderSvc)
	sched.Start()
	defer sched.Stop()

	r := router.SetupRouter(orderStore, orderSvc, notificationHub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.AddressBook{},
		&models.ShoppingCart{},
		&models.Order{},
		&models.OrderDetail{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
