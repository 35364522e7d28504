package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/ledger"
	"ledgercontrol/internal/models"
	dbconfig "ledgercontrol/pkg/config"
)

// CreateAccountRequest represents the request body for creating a ledger account
type CreateAccountRequest struct {
	AccountType string `json:"account_type" binding:"required"`
	Currency    string `json:"currency"`
	OwnerType   string `json:"owner_type"`
	OwnerID     uint   `json:"owner_id"`
}

var validAccountTypes = map[string]bool{
	models.AccountTypeUserWallet:     true,
	models.AccountTypeSellerEarnings: true,
	models.AccountTypePlatformFee:    true,
	models.AccountTypeReserve:        true,
	models.AccountTypeEscrow:         true,
	models.AccountTypeProducerPool:   true,
	models.AccountTypeSettlement:     true,
}

// CreateAccount creates a new ledger account with zero balances
func CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validAccountTypes[req.AccountType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown account type: " + req.AccountType})
		return
	}

	account, err := ledger.CreateAccount(dbconfig.DB, req.AccountType, req.Currency, req.OwnerType, req.OwnerID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// GetAccount returns a single ledger account by id
func GetAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account, err := ledger.GetAccount(dbconfig.DB, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// GetAccountBalance returns the balances of an account
func GetAccountBalance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	balance, err := ledger.GetBalance(dbconfig.DB, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// ListAccounts returns paginated ledger accounts
// Query parameters: page, page_size, account_type, owner_type, owner_id,
// status, order_by (id/balance/created_at), order_type (asc/desc)
func ListAccounts(c *gin.Context) {
	page, pageSize := parsePagination(c)
	order := parseOrder(c, []string{"id", "balance", "created_at"}, "id desc")

	query := dbconfig.DB.Model(&models.LedgerAccount{})
	if t := c.Query("account_type"); t != "" {
		query = query.Where("account_type = ?", t)
	}
	if ot := c.Query("owner_type"); ot != "" {
		query = query.Where("owner_type = ?", ot)
	}
	if oid := c.Query("owner_id"); oid != "" {
		query = query.Where("owner_id = ?", oid)
	}
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var accounts []models.LedgerAccount
	if err := query.Order(order).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       accounts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
