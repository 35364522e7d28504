package routes

import (
	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/handlers"
)

// SetupPaymentRoutes registers the bank-transfer payment endpoints
func SetupPaymentRoutes(r *gin.Engine) {
	group := r.Group("/api/payments")
	{
		group.POST("/deposits", handlers.CreatePaymentDeposit)
		group.POST("/withdrawals", handlers.CreatePaymentWithdrawal)
		group.GET("/:ref", handlers.GetPaymentRecord)
		group.POST("/webhook", handlers.PaymentWebhook)
	}
}
