package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/realtruedate/backend/internal/utils/pagination"
)

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, pagination.ParsePage("", 20).Page)
	assert.Equal(t, 1, pagination.ParsePage("0", 20).Page)
	assert.Equal(t, 1, pagination.ParsePage("junk", 20).Page)
	assert.Equal(t, 3, pagination.ParsePage("3", 20).Page)

	assert.Equal(t, 40, pagination.ParsePage("3", 20).Offset())
}

func TestBuildMeta(t *testing.T) {
	// 45 records, page 2 of 20 → records 21..40
	meta := pagination.BuildMeta(pagination.Params{Page: 2, PageSize: 20}, 45, 20)
	assert.Equal(t, int64(45), meta.Count)
	assert.Equal(t, 20, meta.CurrentPageCount)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 21, meta.StartRecord)
	assert.Equal(t, 40, meta.EndRecord)

	// last, partial page
	meta = pagination.BuildMeta(pagination.Params{Page: 3, PageSize: 20}, 45, 5)
	assert.Equal(t, 5, meta.CurrentPageCount)
	assert.Equal(t, 41, meta.StartRecord)
	assert.Equal(t, 45, meta.EndRecord)

	// empty result set
	meta = pagination.BuildMeta(pagination.Params{Page: 1, PageSize: 20}, 0, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.Equal(t, 0, meta.StartRecord)
	assert.Equal(t, 0, meta.EndRecord)
}
