package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-giftshop-pos/internal/handler"
	"go-giftshop-pos/internal/middleware"
	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/repository"
	"go-giftshop-pos/internal/service"
	"go-giftshop-pos/internal/ws"
	"go-giftshop-pos/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.Product{}, &model.Customer{}, &model.Sale{}, &model.User{})

	// 3. Seed default admin account
	seedAdmin(db)

	// 4. Setup WebSocket Hub (live collection pushes to terminals)
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	userRepo := repository.NewUserRepo(db)

	checkoutService := service.NewCheckoutService(productRepo, customerRepo, saleRepo, db, wsHub)
	invService := service.NewInventoryService(productRepo, db, wsHub)
	custService := service.NewCustomerService(customerRepo, wsHub)
	dashService := service.NewDashboardService(saleRepo, productRepo)
	authService := service.NewAuthService(userRepo)

	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	invHandler := handler.NewInventoryHandler(invService)
	custHandler := handler.NewCustomerHandler(custService)
	dashHandler := handler.NewDashboardHandler(dashService, db)
	authHandler := handler.NewAuthHandler(authService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Gift Shop POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Catalog
	protected.Get("/products", invHandler.GetProducts)
	protected.Post("/products", adminOnly, invHandler.CreateProduct)
	protected.Put("/products/:id", adminOnly, invHandler.UpdateProduct)
	protected.Delete("/products/:id", adminOnly, invHandler.DeleteProduct)
	protected.Post("/products/:id/restock", invHandler.RestockProduct)

	// Members
	protected.Get("/customers", custHandler.GetCustomers)
	protected.Post("/customers", custHandler.Register)
	protected.Put("/customers/:id", custHandler.UpdateCustomer)
	protected.Delete("/customers/:id", adminOnly, custHandler.DeleteCustomer)

	// Sales
	protected.Get("/sales", dashHandler.ListSales)
	protected.Post("/sales", checkoutHandler.ProcessSale)
	protected.Delete("/sales/:id", adminOnly, checkoutHandler.ReverseSale)

	// Dashboard
	protected.Get("/dashboard/summary", dashHandler.GetSalesSummary)
	protected.Get("/dashboard/inventory", dashHandler.GetInventoryStats)

	// Admin utilities
	protected.Post("/admin/seed", adminOnly, dashHandler.SeedDemoData)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin account if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}

	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &model.User{
		Email:    email,
		FullName: "Store Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Printf("Admin user created: %s (ADMIN)", email)
	}
}
