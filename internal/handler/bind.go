package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"northwind/internal/apperr"
)

const dateLayout = "2006-01-02"

// Validation errors должны называть поля так, как их видит клиент.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON decodes and validates a request body. Violations come back
// as one ValidationFailed carrying every failed field.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]apperr.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, apperr.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
			}
			return apperr.ValidationFailed(fields)
		}
		return apperr.ValidationFailed([]apperr.FieldError{{Field: "body", Message: "invalid JSON body"}})
	}
	return nil
}

// fieldPath drops the root struct segment from the validator namespace,
// leaving the client-facing path, e.g. details[0].productId.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// pathID parses the :id segment for integer-keyed entities.
func pathID(c *gin.Context) (int, error) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperr.InvalidQuery([]apperr.FieldError{
			{Field: "id", Message: fmt.Sprintf("must be a positive integer, got '%s'", raw)},
		})
	}
	return id, nil
}

func forceQuery(c *gin.Context) bool {
	return c.Query("force") == "true"
}

func hasInclude(includes []string, name string) bool {
	for _, inc := range includes {
		if inc == name {
			return true
		}
	}
	return false
}

// parseDate converts an already format-checked YYYY-MM-DD body field.
func parseDate(field string, raw *string) (*time.Time, *apperr.FieldError) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, &apperr.FieldError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return &t, nil
}

// checkNonNegative covers decimal fields, which the binding validator
// cannot range-check.
func checkNonNegative(field string, d *decimal.Decimal) *apperr.FieldError {
	if d != nil && d.IsNegative() {
		return &apperr.FieldError{Field: field, Message: "must not be negative"}
	}
	return nil
}
