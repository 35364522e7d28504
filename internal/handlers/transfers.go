package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/ledger"
	"ledgercontrol/internal/models"
	dbconfig "ledgercontrol/pkg/config"
)

// CreateTransferRequest represents the request body for a direct transfer
type CreateTransferRequest struct {
	DebitAccountID  uint    `json:"debit_account_id" binding:"required"`
	CreditAccountID uint    `json:"credit_account_id" binding:"required"`
	Amount          float64 `json:"amount" binding:"required"`
	EntryType       string  `json:"entry_type"`
	IdempotencyKey  string  `json:"idempotency_key"`
	ReferenceType   string  `json:"reference_type"`
	ReferenceID     uint    `json:"reference_id"`
}

// CreateTransfer applies a double-entry transfer between two accounts
func CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entryType := req.EntryType
	if entryType == "" {
		entryType = models.EntryTypeTransfer
	}

	entry, err := ledger.CreateTransfer(dbconfig.DB, ledger.TransferParams{
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
		Amount:          req.Amount,
		EntryType:       entryType,
		IdempotencyKey:  req.IdempotencyKey,
		ReferenceType:   req.ReferenceType,
		ReferenceID:     req.ReferenceID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	ledger.PublishEntryEvent(entry)
	c.JSON(http.StatusCreated, entry)
}

// GetEntry returns a single ledger entry by id
func GetEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := ledger.GetEntry(dbconfig.DB, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListEntries returns paginated ledger entries
// Query parameters: page, page_size, account_id, entry_type, status,
// settlement_batch_id, order_by (id/amount/created_at), order_type (asc/desc)
func ListEntries(c *gin.Context) {
	page, pageSize := parsePagination(c)
	order := parseOrder(c, []string{"id", "amount", "created_at"}, "id desc")

	query := dbconfig.DB.Model(&models.LedgerEntry{})
	if aid := c.Query("account_id"); aid != "" {
		query = query.Where("debit_account_id = ? OR credit_account_id = ?", aid, aid)
	}
	if t := c.Query("entry_type"); t != "" {
		query = query.Where("entry_type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}
	if b := c.Query("settlement_batch_id"); b != "" {
		query = query.Where("settlement_batch_id = ?", b)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var entries []models.LedgerEntry
	if err := query.Order(order).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       entries,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
