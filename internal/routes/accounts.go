package routes

import (
	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/handlers"
)

// SetupAccountRoutes registers the ledger account endpoints
func SetupAccountRoutes(r *gin.Engine) {
	group := r.Group("/api/accounts")
	{
		group.POST("", handlers.CreateAccount)
		group.GET("", handlers.ListAccounts)
		group.GET("/:id", handlers.GetAccount)
		group.GET("/:id/balance", handlers.GetAccountBalance)
		group.GET("/:id/history", handlers.GetTransactionHistory)
	}
}
