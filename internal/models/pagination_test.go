package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostPaginationParam_Normalize(t *testing.T) {
	t.Parallel()

	p, err := PostPaginationParam{Keyword: "  go  "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "go", p.Keyword)
	assert.Equal(t, SortLatest, p.Field)
	assert.Equal(t, SortDesc, p.Direction)
	assert.Equal(t, DefaultPageSize, p.Size)

	p, err = PostPaginationParam{Field: "post_most_view", Direction: "asc", Page: 2, Size: 500}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, SortPostMostView, p.Field)
	assert.Equal(t, SortAsc, p.Direction)
	assert.Equal(t, MaxPageSize, p.Size)
	assert.Equal(t, 200, p.Offset())

	p, err = PostPaginationParam{Field: "most_viewed"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, SortPostMostView, p.Field)

	p, err = PostPaginationParam{Field: "RECENCY"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, SortLatest, p.Field)

	_, err = PostPaginationParam{Page: -1}.Normalize()
	assert.Equal(t, CodeValidation, ErrorCode(err))

	_, err = PostPaginationParam{Field: "RANDOM"}.Normalize()
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestNewPage_TotalPages(t *testing.T) {
	t.Parallel()

	param := PostPaginationParam{Page: 0, Size: 10}
	assert.Equal(t, 0, NewPage([]int{}, param, 0).TotalPages)
	assert.Equal(t, 1, NewPage([]int{1}, param, 10).TotalPages)
	assert.Equal(t, 2, NewPage([]int{1}, param, 11).TotalPages)
	assert.NotNil(t, NewPage[int](nil, param, 0).Content)
}

func TestMapPage(t *testing.T) {
	t.Parallel()

	page := NewPage([]int{1, 2, 3}, PostPaginationParam{Size: 3}, 3)
	doubled := MapPage(page, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled.Content)
	assert.Equal(t, []int{1, 2, 3}, page.Content)
	assert.Equal(t, page.TotalElements, doubled.TotalElements)
}
