package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCardInvariants(t *testing.T) {
	for run := 0; run < 100; run++ {
		grid, err := BuildCard()
		require.NoError(t, err)
		require.Len(t, grid, Cells)

		v := ValidateGrid(grid)
		assert.True(t, v.Valid, "invalid card: %v", v.Findings)

		for col := 0; col < Cols; col++ {
			nums := grid.Column(col)
			assert.GreaterOrEqual(t, len(nums), 1, "column %d is empty", col)
			assert.LessOrEqual(t, len(nums), Rows)
		}
	}
}

func TestColumnRange(t *testing.T) {
	tests := []struct {
		col      int
		min, max int
	}{
		{0, 1, 9},
		{1, 10, 19},
		{4, 40, 49},
		{7, 70, 79},
		{8, 80, 90},
	}
	for _, tt := range tests {
		min, max := ColumnRange(tt.col)
		assert.Equal(t, tt.min, min)
		assert.Equal(t, tt.max, max)
	}
}
