package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/ledger"
	"ledgercontrol/internal/models"
	dbconfig "ledgercontrol/pkg/config"
)

// GetTransactionHistory returns an account's history with per-row direction
// Query parameters: limit (default: 50, max: 500), offset, entry_type
func GetTransactionHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}

	records, err := ledger.GetTransactionHistory(dbconfig.DB, id, limit, offset, c.Query("entry_type"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records, "count": len(records)})
}

// GetLedgerSummary returns the ledger-wide aggregate view grouped by account type
func GetLedgerSummary(c *gin.Context) {
	summary, err := ledger.GetLedgerSummary(dbconfig.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListSummarySnapshots returns the recorded summary time series, newest first
func ListSummarySnapshots(c *gin.Context) {
	page, pageSize := parsePagination(c)

	var total int64
	if err := dbconfig.DB.Model(&models.LedgerSummarySnapshot{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var snapshots []models.LedgerSummarySnapshot
	if err := dbconfig.DB.Order("id desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&snapshots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       snapshots,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
