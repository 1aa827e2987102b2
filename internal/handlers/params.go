package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"medconnect-server/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pagination reads ?page= and ?limit=, clamped to sane values.
func pagination(c *gin.Context) (page, limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, (page - 1) * limit
}

// pages is the number of pages needed for total items.
func pages(total int64, limit int) int64 {
	if limit <= 0 {
		return 1
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// queryBool returns a pointer to the parsed boolean query parameter, or nil
// when it is absent or not a boolean.
func queryBool(c *gin.Context, key string) *bool {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func queryFloat(c *gin.Context, key string) *float64 {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func boolPtr(b bool) *bool { return &b }

// parseDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, models.NewValidationError(field, "must be a date (YYYY-MM-DD or RFC 3339)")
}

// views projects accounts into their response shapes.
func views(list []models.Account) []any {
	out := make([]any, 0, len(list))
	for _, a := range list {
		out = append(out, a.RoleView())
	}
	return out
}
