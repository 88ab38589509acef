package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPageMeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		page  int
		size  int
		total int64
		pages int
	}{
		{"exact fit", 1, 10, 30, 3},
		{"remainder adds a page", 2, 10, 31, 4},
		{"empty", 1, 10, 0, 0},
		{"single short page", 1, 20, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewPage([]int{}, tt.page, tt.size, tt.total)
			require.Equal(t, tt.page, p.Meta.Page)
			require.Equal(t, tt.size, p.Meta.Size)
			require.Equal(t, tt.total, p.Meta.Total)
			require.Equal(t, tt.pages, p.Meta.TotalPages)
		})
	}
}
