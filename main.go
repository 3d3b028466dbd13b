package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cartonmill/cartones-backend/config"
	"github.com/cartonmill/cartones-backend/controllers"
	"github.com/cartonmill/cartones-backend/routes"
	"github.com/cartonmill/cartones-backend/services"
	"github.com/cartonmill/cartones-backend/utils/logger"
)

// setupRouter initializes Gin routes and middleware
func setupRouter(cfg config.Config, api *controllers.API) *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup REST routes
	routes.SetupRoutes(r, api)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket progress endpoint
	r.GET("/ws/progress", api.Hub.HandleWebSocket)

	return r
}

func main() {
	// Load env variables
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	// Connect to database
	db := config.SetupDatabase(cfg)
	store := services.NewGormStore(db)

	api := &controllers.API{
		Orders: services.NewOrderService(store),
		Audit:  services.NewAuditService(store),
		Store:  store,
		Hub:    services.NewProgressHub(),
	}

	router := setupRouter(cfg, api)

	log.Printf("🎫 Cartones backend starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
