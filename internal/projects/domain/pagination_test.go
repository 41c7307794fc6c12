package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 20, PageRequest{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 90, PageRequest{Page: 10, Limit: 10}.Offset())
}

func TestNewPageMeta(t *testing.T) {
	cases := []struct {
		name       string
		limit      int
		total      int
		totalPages int
	}{
		{"empty result", 20, 0, 0},
		{"exact fit", 10, 30, 3},
		{"partial last page", 10, 25, 3},
		{"single item", 20, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := NewPageMeta(PageRequest{Page: 1, Limit: tc.limit}, tc.total)
			assert.Equal(t, tc.totalPages, meta.TotalPages)
			assert.Equal(t, tc.total, meta.Total)
		})
	}
}
