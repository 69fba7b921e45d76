package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 200
)

// Pagination holds parsed pagination parameters.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads page and limit from the query string, applying
// defaults and capping limit.
func ParsePagination(c *gin.Context) Pagination {
	page := parseQueryInt(c, "page", defaultPage)
	limit := parseQueryInt(c, "limit", defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 1 {
			return n
		}
	}
	return defaultVal
}
