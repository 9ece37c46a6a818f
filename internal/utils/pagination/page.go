package pagination

import (
	"strconv"
)

// Meta is the pagination metadata block attached alongside paged data.
type Meta struct {
	Count            int64 `json:"count"`
	CurrentPageCount int   `json:"current_page_count"`
	CurrentPage      int   `json:"current_page"`
	TotalPages       int   `json:"total_pages"`
	StartRecord      int   `json:"start_record"`
	EndRecord        int   `json:"end_record"`
}

// Params carries the requested page; page numbers start at 1.
type Params struct {
	Page     int
	PageSize int
}

// ParsePage interprets the page query value, defaulting to the first page.
func ParsePage(raw string, pageSize int) Params {
	page := 1
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		page = n
	}
	return Params{Page: page, PageSize: pageSize}
}

// Offset is the row offset for the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// BuildMeta computes the metadata for a page of pageCount items out of total.
// A zero page size yields an empty-page meta with only the total filled in.
func BuildMeta(p Params, total int64, pageCount int) Meta {
	if p.PageSize == 0 {
		return Meta{Count: total}
	}

	totalPages := int(total) / p.PageSize
	if int(total)%p.PageSize != 0 {
		totalPages++
	}

	start := 0
	end := 0
	if pageCount > 0 {
		start = p.Offset() + 1
		end = start + pageCount - 1
	}

	return Meta{
		Count:            total,
		CurrentPageCount: pageCount,
		CurrentPage:      p.Page,
		TotalPages:       totalPages,
		StartRecord:      start,
		EndRecord:        end,
	}
}
