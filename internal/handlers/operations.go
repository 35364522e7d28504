package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/ledger"
	dbconfig "ledgercontrol/pkg/config"
)

// DepositRequest represents the request body for a deposit
type DepositRequest struct {
	AccountID    uint    `json:"account_id" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	OperationKey string  `json:"operation_key"`
}

// Deposit credits an account from the system reserve
func Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := ledger.Deposit(dbconfig.DB, req.AccountID, req.Amount, req.OperationKey)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ledger.PublishEntryEvent(entry)
	c.JSON(http.StatusCreated, entry)
}

// WithdrawRequest represents the request body for a withdrawal
type WithdrawRequest struct {
	AccountID    uint    `json:"account_id" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	OperationKey string  `json:"operation_key"`
}

// Withdraw debits an account back into the system reserve
func Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := ledger.Withdraw(dbconfig.DB, req.AccountID, req.Amount, req.OperationKey)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ledger.PublishEntryEvent(entry)
	c.JSON(http.StatusCreated, entry)
}

// SettleOrderRequest represents the request body for an order settlement
type SettleOrderRequest struct {
	OrderID           uint    `json:"order_id" binding:"required"`
	CustomerAccountID uint    `json:"customer_account_id" binding:"required"`
	SellerAccountID   uint    `json:"seller_account_id" binding:"required"`
	Total             float64 `json:"total" binding:"required"`
	PlatformFee       float64 `json:"platform_fee"`
	AutoInvestPoolID  uint    `json:"auto_invest_pool_id"`
	OperationKey      string  `json:"operation_key"`
}

// SettleOrder runs the marketplace order settlement flow
func SettleOrder(c *gin.Context) {
	var req SettleOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ledger.SettleOrder(dbconfig.DB, ledger.OrderSettlementParams{
		OrderID:           req.OrderID,
		CustomerAccountID: req.CustomerAccountID,
		SellerAccountID:   req.SellerAccountID,
		Total:             req.Total,
		PlatformFee:       req.PlatformFee,
		AutoInvestPoolID:  req.AutoInvestPoolID,
		OperationKey:      req.OperationKey,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	ledger.PublishEntryEvent(result.PurchaseEntry)
	c.JSON(http.StatusCreated, result)
}

// RefundOrderRequest represents the request body for an order refund
type RefundOrderRequest struct {
	OrderID           uint    `json:"order_id" binding:"required"`
	CustomerAccountID uint    `json:"customer_account_id" binding:"required"`
	SellerAccountID   uint    `json:"seller_account_id" binding:"required"`
	Total             float64 `json:"total" binding:"required"`
	PlatformFee       float64 `json:"platform_fee"`
	OperationKey      string  `json:"operation_key"`
}

// RefundOrder reverses a settled order back to the customer
func RefundOrder(c *gin.Context) {
	var req RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := ledger.RefundOrder(dbconfig.DB, ledger.RefundOrderParams{
		OrderID:           req.OrderID,
		CustomerAccountID: req.CustomerAccountID,
		SellerAccountID:   req.SellerAccountID,
		Total:             req.Total,
		PlatformFee:       req.PlatformFee,
		OperationKey:      req.OperationKey,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	for _, entry := range entries {
		ledger.PublishEntryEvent(entry)
	}
	c.JSON(http.StatusCreated, gin.H{"entries": entries})
}
