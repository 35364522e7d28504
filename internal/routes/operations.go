package routes

import (
	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/handlers"
)

// SetupOperationRoutes registers the composite ledger operation endpoints
func SetupOperationRoutes(r *gin.Engine) {
	group := r.Group("/api/operations")
	{
		group.POST("/deposit", handlers.Deposit)
		group.POST("/withdraw", handlers.Withdraw)
		group.POST("/settle-order", handlers.SettleOrder)
		group.POST("/refund-order", handlers.RefundOrder)
	}
}
