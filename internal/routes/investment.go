package routes

import (
	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/handlers"
)

// SetupInvestmentRoutes registers the investment pool endpoints
func SetupInvestmentRoutes(r *gin.Engine) {
	group := r.Group("/api/pools")
	{
		group.POST("", handlers.CreatePool)
		group.GET("", handlers.ListPools)
		group.GET("/:id", handlers.GetPool)
		group.POST("/:id/invest", handlers.Invest)
		group.GET("/:id/investments", handlers.ListInvestments)
		group.POST("/:id/distribute", handlers.DistributeDividends)
	}
}
