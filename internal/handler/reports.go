package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"northwind/internal/apperr"
	"northwind/internal/report"
)

type ReportsHandler struct {
	svc *report.Service
}

func NewReportsHandler(svc *report.Service) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// reportParams reads the shared limit/year query params. Both are
// optional; violations are collected so a bad pair reports twice.
func reportParams(c *gin.Context) (limit, year int, err error) {
	limit = 10
	var violations []apperr.FieldError

	if raw := c.Query("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 || n > 100 {
			violations = append(violations, apperr.FieldError{
				Field:   "limit",
				Message: "must be an integer between 1 and 100, got '" + raw + "'",
			})
		} else {
			limit = n
		}
	}
	if raw := c.Query("year"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			violations = append(violations, apperr.FieldError{
				Field:   "year",
				Message: "must be a positive integer, got '" + raw + "'",
			})
		} else {
			year = n
		}
	}
	if len(violations) > 0 {
		return 0, 0, apperr.InvalidQuery(violations)
	}
	return limit, year, nil
}

func (h *ReportsHandler) TopCustomers(c *gin.Context) {
	limit, year, err := reportParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.svc.TopCustomers(c.Request.Context(), limit, year)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

func (h *ReportsHandler) SalesByCategory(c *gin.Context) {
	_, year, err := reportParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.svc.SalesByCategory(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

func (h *ReportsHandler) SalesByYear(c *gin.Context) {
	rows, err := h.svc.SalesByYear(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

func (h *ReportsHandler) SupplierStats(c *gin.Context) {
	rows, err := h.svc.SupplierStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

func (h *ReportsHandler) EmployeeSales(c *gin.Context) {
	_, year, err := reportParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.svc.EmployeeSales(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}
