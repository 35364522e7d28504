package routes

import (
	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/handlers"
)

// SetupReportRoutes registers the reporting endpoints
func SetupReportRoutes(r *gin.Engine) {
	group := r.Group("/api/reports")
	{
		group.GET("/summary", handlers.GetLedgerSummary)
		group.GET("/snapshots", handlers.ListSummarySnapshots)
	}
}
