package routes

import (
	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/handlers"
)

// SetupTransferRoutes registers the transfer and entry endpoints
func SetupTransferRoutes(r *gin.Engine) {
	group := r.Group("/api/transfers")
	{
		group.POST("", handlers.CreateTransfer)
	}

	entries := r.Group("/api/entries")
	{
		entries.GET("", handlers.ListEntries)
		entries.GET("/:id", handlers.GetEntry)
	}
}
