// Package handler wires the HTTP surface: gin handlers per entity, the
// shared middleware chain and the response envelopes.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"northwind/internal/apperr"
	"northwind/internal/query"
)

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// respondPage writes the list envelope. Items marshal as [] rather than
// null when the page is empty.
func respondPage[T any](c *gin.Context, p query.Page[T]) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       items,
		"pagination": pagination{Page: p.Page, Limit: p.PageSize, Total: p.Total, Pages: p.Pages()},
	})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError maps an error onto the uniform failure envelope. Raw SQL
// and other foreign errors never reach the client: anything outside the
// taxonomy is logged and served as a plain 500.
func respondError(c *gin.Context, err error) {
	ae, ok := apperr.From(err)
	if !ok {
		log.Error().Err(err).Str("request_id", requestID(c)).Str("path", c.Request.URL.Path).Msg("unhandled_error")
		writeError(c, http.StatusInternalServerError, gin.H{
			"message":    "internal server error",
			"statusCode": http.StatusInternalServerError,
		})
		return
	}

	status := ae.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().Err(ae).Str("request_id", requestID(c)).Str("path", c.Request.URL.Path).Msg("store_error")
	}

	body := gin.H{"message": ae.Message, "statusCode": status}
	if len(ae.Fields) > 0 {
		body["errors"] = ae.Fields
	}
	if ae.Field != "" {
		body["field"] = ae.Field
	}
	writeError(c, status, body)
}

func writeError(c *gin.Context, status int, body gin.H) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": body})
}
