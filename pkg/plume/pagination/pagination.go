package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PerPage is the fixed feed page size.
const PerPage = 10

// Page is one fixed-size window over an ordered list.
type Page struct {
	Number  int
	PerPage int
}

// FromQuery reads the "page" query parameter. Missing or invalid
// values fall back to the first page.
func FromQuery(c *gin.Context) Page {
	page := Page{Number: 1, PerPage: PerPage}
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page.Number = parsed
		}
	}
	return page
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Meta describes a paginated result set in responses.
type Meta struct {
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Count int64 `json:"count"`
}

// NewMeta builds response metadata for a page over total rows.
func NewMeta(p Page, total int64) Meta {
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if pages < 1 {
		pages = 1
	}
	return Meta{Page: p.Number, Pages: pages, Count: total}
}
