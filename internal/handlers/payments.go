package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"ledgercontrol/internal/models"
	"ledgercontrol/internal/payments"
	dbconfig "ledgercontrol/pkg/config"
)

// paymentProcessor is wired at startup; payment endpoints return 503 until
// a provider is configured
var paymentProcessor payments.Processor

// InitPayments installs the payment processor used by the HTTP handlers
func InitPayments(processor payments.Processor) {
	paymentProcessor = processor
}

// PaymentRequest represents the request body for a deposit or withdrawal capture
type PaymentRequest struct {
	AccountID uint    `json:"account_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Currency  string  `json:"currency"`
}

// CreatePaymentDeposit captures a bank deposit with the provider
func CreatePaymentDeposit(c *gin.Context) {
	if paymentProcessor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment provider not configured"})
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := payments.RecordDeposit(c.Request.Context(), dbconfig.DB, paymentProcessor, req.AccountID, req.Amount, req.Currency)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// CreatePaymentWithdrawal captures a bank payout with the provider
func CreatePaymentWithdrawal(c *gin.Context) {
	if paymentProcessor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment provider not configured"})
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := payments.RecordWithdrawal(c.Request.Context(), dbconfig.DB, paymentProcessor, req.AccountID, req.Amount, req.Currency)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetPaymentRecord returns a payment record by provider reference
func GetPaymentRecord(c *gin.Context) {
	ref := c.Param("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ref"})
		return
	}

	var record models.PaymentRecord
	if err := dbconfig.DB.Where("provider_ref = ?", ref).First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment record not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// PaymentWebhook receives the provider's status notification. The event is
// queued for the reconciliation worker so the provider gets a fast ack; when
// the broker is down the event is reconciled inline instead.
func PaymentWebhook(c *gin.Context) {
	var event payments.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if dbconfig.RabbitMQ != nil {
		publisher, err := dbconfig.NewPublisher()
		if err == nil {
			defer publisher.Close()
			if err := publisher.Publish(payments.WebhookQueue, event); err == nil {
				c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
				return
			}
			log.Warnf("Failed to queue payment webhook %s, reconciling inline", event.ProviderRef)
		}
	}

	record, err := payments.Reconcile(dbconfig.DB, event)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}
