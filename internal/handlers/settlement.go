package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/models"
	"ledgercontrol/internal/settlement"
	dbconfig "ledgercontrol/pkg/config"
)

// settlementEngine is wired at startup; settlement endpoints return 503
// until an anchor client is configured
var settlementEngine *settlement.Engine

// InitSettlement installs the settlement engine used by the HTTP handlers
func InitSettlement(engine *settlement.Engine) {
	settlementEngine = engine
}

// RunSettlementRequest represents the request body for a manual settlement run
type RunSettlementRequest struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// RunSettlement triggers a settlement run over all outstanding entries
func RunSettlement(c *gin.Context) {
	if settlementEngine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "settlement engine not configured"})
		return
	}

	var req RunSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch, err := settlementEngine.Run(c.Request.Context(), req.PeriodStart, req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if batch == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no entries to settle"})
		return
	}

	c.JSON(http.StatusCreated, batch)
}

// GetBatch returns a single settlement batch by id
func GetBatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var batch models.SettlementBatch
	if err := dbconfig.DB.First(&batch, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

// ListBatches returns paginated settlement batches
// Query parameters: page, page_size, status, order_by (id/batch_number/total_volume)
func ListBatches(c *gin.Context) {
	page, pageSize := parsePagination(c)
	order := parseOrder(c, []string{"id", "batch_number", "total_volume"}, "id desc")

	query := dbconfig.DB.Model(&models.SettlementBatch{})
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var batches []models.SettlementBatch
	if err := query.Order(order).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&batches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       batches,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// VerifyBatch re-checks a batch's merkle root against the anchored record
func VerifyBatch(c *gin.Context) {
	if settlementEngine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "settlement engine not configured"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := settlementEngine.Verify(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBatchEntries returns the entries sealed in a batch
func GetBatchEntries(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)

	query := dbconfig.DB.Model(&models.LedgerEntry{}).Where("settlement_batch_id = ?", id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var entries []models.LedgerEntry
	if err := query.Order("id asc").
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
