package bingo

import (
	"math/rand"
	"sort"
)

const (
	maxCardAttempts      = 50
	removalsPerCard      = Cells - NumbersPerCard // 12
	maxRemovalsPerColumn = 2
)

// BuildCard builds a single card with no relation to a series partition:
// fill all 27 cells, blank 12 of them without emptying any column, then
// repair the rows. Used by the independent-card strategy.
func BuildCard() (Grid, error) {
	for attempt := 0; attempt < maxCardAttempts; attempt++ {
		if grid, ok := buildCardOnce(); ok {
			return grid, nil
		}
	}
	return nil, ErrUnbuildable
}

func buildCardOnce() (Grid, bool) {
	var w workGrid

	// Three distinct draws per column, ascending down the rows.
	for col := 0; col < Cols; col++ {
		pool := columnPool(col)
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		nums := append([]int(nil), pool[:Rows]...)
		sort.Ints(nums)
		for row := 0; row < Rows; row++ {
			w[row][col] = nums[row]
		}
	}

	// Blank 12 cells round-robin over the columns, at most two per column,
	// so every column keeps at least one number. The rows a column may lose
	// are fixed up front by a shuffle.
	var blankable [Cols][]int
	for col := 0; col < Cols; col++ {
		blankable[col] = shuffledRows()
	}

	order := shuffledCols()
	var removedPerCol [Cols]int
	removed := 0
	for pass := 0; pass < maxRemovalsPerColumn && removed < removalsPerCard; pass++ {
		for _, col := range order {
			if removed == removalsPerCard {
				break
			}
			if removedPerCol[col] == maxRemovalsPerColumn {
				continue
			}
			row := blankable[col][removedPerCol[col]]
			w[row][col] = 0
			removedPerCol[col]++
			removed++
		}
	}

	if !w.balanceRows() {
		return nil, false
	}
	return w.grid(), true
}
