package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/cartonmill/cartones-backend/controllers"
)

func SetupRoutes(r *gin.Engine, api *controllers.API) {
	group := r.Group("/api")

	// ----------------------
	// Order routes
	// ----------------------
	group.POST("/orders", api.CreateOrder) // Generate an order of series
	group.GET("/orders", api.ListOrders)   // Recent orders

	// ----------------------
	// Series & card routes
	// ----------------------
	group.GET("/series/:serie", api.GetSeries)               // Cards of a series
	group.GET("/series/:serie/verify", api.VerifySeries)     // Series integrity check
	group.GET("/series/:serie/cards/:number", api.GetCard)   // Single card lookup

	// ----------------------
	// Audit & validation routes
	// ----------------------
	group.GET("/audit", api.RunAudit)                // Full corpus audit
	group.POST("/cards/validate", api.ValidateCard)  // Validate a posted grid

	// ----------------------
	// Stats routes
	// ----------------------
	group.GET("/stats", api.GetStats)
}
