package main

import (
	"log"
	"os"
	"time"

	"go-pos-checkout/internal/database"
	"go-pos-checkout/internal/handlers"
	"go-pos-checkout/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	database.Connect()
	handlers.Setup(baseURL)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"}, // the register UI in dev
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)
	r.Static("/uploads", "./uploads")

	// Only opens if we explicitly allow it in .env
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", handlers.Register)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/system/status", handlers.GetSystemStatus)

		// Catalog
		api.GET("/products", handlers.GetProducts)
		api.GET("/products/scan/:barcode", handlers.ScanProduct)
		api.GET("/categories", handlers.GetCategories)

		// Customers
		api.GET("/customers", handlers.GetCustomers)
		api.POST("/customers", handlers.AddCustomer)
		api.PUT("/customers/:id", handlers.UpdateCustomer)
		api.GET("/customers/:id/history", handlers.GetCustomerHistory)

		// Register cart
		api.GET("/cart", handlers.GetCart)
		api.POST("/cart/items", handlers.AddToCart)
		api.PUT("/cart/items/:productId", handlers.UpdateCartQuantity)
		api.PUT("/cart/items/:productId/variant", handlers.SelectCartVariant)
		api.DELETE("/cart/items/:productId", handlers.RemoveFromCart)
		api.DELETE("/cart", handlers.ClearCart)
		api.PUT("/cart/customer", handlers.SelectCartCustomer)
		api.POST("/cart/discount", handlers.ApplyCartPoints)
		api.DELETE("/cart/discount", handlers.RemoveCartDiscount)
		api.PUT("/cart/vat", handlers.SetCartExcludeVAT)

		// Checkout
		api.GET("/checkout/state", handlers.CheckoutState)
		api.POST("/checkout/start", handlers.StartCheckout)
		api.POST("/checkout/promptpay/confirm", handlers.ConfirmPromptPay)
		api.POST("/checkout/cancel", handlers.CancelCheckout)
		api.GET("/checkout/stripe/return", handlers.StripeReturn)

		// Sales
		api.GET("/sales", handlers.GetSales)
		api.GET("/sales/stats", handlers.GetSaleStats)
		api.GET("/sales/:id", handlers.GetSale)

		// Settings (read side is open to staff; writes are admin-only below)
		api.GET("/settings", handlers.GetSettings)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/ask", handlers.AskAI)

			admin.POST("/upload", handlers.UploadImage)
			admin.POST("/products", handlers.AddProduct)
			admin.PUT("/products/:id", handlers.UpdateProduct)
			admin.PATCH("/products/:id/stock", handlers.PatchStock)
			admin.DELETE("/products/:id", handlers.DeleteProduct)

			admin.DELETE("/customers/:id", handlers.DeleteCustomer)

			admin.POST("/sales/:id/refund", handlers.RefundSale)

			admin.PUT("/settings", handlers.UpdateSettings)
			admin.POST("/settings/logo", handlers.UploadLogo)

			admin.GET("/reports", handlers.GetSalesReport)
			admin.GET("/reports/valuation", handlers.GetStockValuation)
		}
	}

	// --- DEPLOYMENT: Serve the register front end ---
	r.Static("/assets", "./web/assets")
	r.StaticFile("/vite.svg", "./web/vite.svg")

	// SPA catch-all so a refresh on "/dashboard" still loads the app
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Server starting on " + baseURL)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
