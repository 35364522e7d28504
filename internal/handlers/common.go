package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ledgercontrol/internal/ledger"
	"ledgercontrol/internal/payments"
)

// errorStatus maps ledger errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound), errors.Is(err, ledger.ErrPoolNotFound),
		errors.Is(err, payments.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidAccount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

// parsePagination reads page / page_size query parameters
// (page default: 1, page_size default: 10, max: 100)
func parsePagination(c *gin.Context) (page, pageSize int) {
	page = 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize = 10
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}
	return page, pageSize
}

// parseOrder builds an ORDER BY clause from order_by / order_type query
// parameters, restricted to the allowed column list
func parseOrder(c *gin.Context, allowed []string, defaultOrder string) string {
	orderBy := ""
	if ob := c.Query("order_by"); ob != "" {
		for _, col := range allowed {
			if ob == col {
				orderBy = col
				break
			}
		}
	}
	if orderBy == "" {
		return defaultOrder
	}

	orderType := "desc"
	if ot := strings.ToLower(c.Query("order_type")); ot == "asc" || ot == "desc" {
		orderType = ot
	}
	return orderBy + " " + orderType
}

// paginationMeta builds the pagination block of a list response
func paginationMeta(page, pageSize int, total int64) gin.H {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	return gin.H{
		"current_page": page,
		"page_size":    pageSize,
		"total_pages":  totalPages,
		"total_count":  total,
		"has_next":     page < totalPages,
		"has_prev":     page > 1,
	}
}

// parseIDParam reads a uint path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
