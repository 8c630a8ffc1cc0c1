package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pagination is the page window applied to list endpoints.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads the page and limit query params. Missing or garbage
// values fall back to page 1 with 20 items.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	if parsed, err := strconv.Atoi(c.Query(key)); err == nil {
		return parsed
	}
	return fallback
}
