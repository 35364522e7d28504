package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/ledger"
	"ledgercontrol/internal/models"
	dbconfig "ledgercontrol/pkg/config"
)

// CreatePoolRequest represents the request body for creating an investment pool
type CreatePoolRequest struct {
	Name          string  `json:"name" binding:"required"`
	Currency      string  `json:"currency"`
	AutoInvestPct float64 `json:"auto_invest_pct"`
}

// CreatePool creates an investment pool and its backing ledger account
func CreatePool(c *gin.Context) {
	var req CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AutoInvestPct < 0 || req.AutoInvestPct > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "auto_invest_pct must be between 0 and 100"})
		return
	}

	pool, err := ledger.CreatePool(dbconfig.DB, req.Name, req.Currency, req.AutoInvestPct)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pool)
}

// GetPool returns a single investment pool by id
func GetPool(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	pool, err := ledger.GetPool(dbconfig.DB, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pool)
}

// ListPools returns paginated investment pools
// Query parameters: page, page_size, status, order_by (id/total_raised/created_at)
func ListPools(c *gin.Context) {
	page, pageSize := parsePagination(c)
	order := parseOrder(c, []string{"id", "total_raised", "created_at"}, "id desc")

	query := dbconfig.DB.Model(&models.InvestmentPool{})
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var pools []models.InvestmentPool
	if err := query.Order(order).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&pools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       pools,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// InvestRequest represents the request body for investing into a pool
type InvestRequest struct {
	InvestorAccountID uint    `json:"investor_account_id" binding:"required"`
	Amount            float64 `json:"amount" binding:"required"`
	SourceType        string  `json:"source_type"`
	SourceID          uint    `json:"source_id"`
	OperationKey      string  `json:"operation_key"`
}

// Invest moves funds from the investor's account into the pool
func Invest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = "direct"
	}

	investment, err := ledger.Invest(dbconfig.DB, id, req.InvestorAccountID, req.Amount, sourceType, req.SourceID, req.OperationKey)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, investment)
}

// ListInvestments returns the investments of a pool
func ListInvestments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)

	query := dbconfig.DB.Model(&models.Investment{}).Where("pool_id = ?", id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var investments []models.Investment
	if err := query.Order("id asc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&investments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       investments,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// DistributeDividendsRequest represents the request body for a dividend distribution
type DistributeDividendsRequest struct {
	TotalAmount  float64 `json:"total_amount" binding:"required"`
	OperationKey string  `json:"operation_key"`
}

// DistributeDividends pays every confirmed investment its pro-rata share
func DistributeDividends(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DistributeDividendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dist, err := ledger.DistributeDividends(dbconfig.DB, id, req.TotalAmount, req.OperationKey)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dist)
}
