package routes

import (
	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/handlers"
)

// SetupSettlementRoutes registers the settlement batch endpoints
func SetupSettlementRoutes(r *gin.Engine) {
	group := r.Group("/api/settlement")
	{
		group.POST("/run", handlers.RunSettlement)
		group.GET("/batches", handlers.ListBatches)
		group.GET("/batches/:id", handlers.GetBatch)
		group.GET("/batches/:id/entries", handlers.GetBatchEntries)
		group.POST("/batches/:id/verify", handlers.VerifyBatch)
	}
}
