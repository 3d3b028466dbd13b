package bingo

import (
	"errors"
	"math/rand"
)

const (
	Rows  = 3
	Cols  = 9
	Cells = Rows * Cols

	NumbersPerCard = 15
	NumbersPerRow  = 5

	CardsPerSeries      = 6
	CardsPerSeriesLarge = 4
)

// ErrUnbuildable means the builder exhausted its repair budget without
// producing a balanced card or series. Callers retry or give up.
var ErrUnbuildable = errors.New("could not build a balanced card")

// Grid is one card face: 27 cells in row-major order, 0 means blank.
type Grid []int

// At returns the cell at row, col.
func (g Grid) At(row, col int) int {
	return g[row*Cols+col]
}

// Filled counts the non-blank cells.
func (g Grid) Filled() int {
	count := 0
	for _, n := range g {
		if n != 0 {
			count++
		}
	}
	return count
}

// Column returns the non-blank numbers of one column, top to bottom.
func (g Grid) Column(col int) []int {
	nums := []int{}
	for row := 0; row < Rows; row++ {
		if n := g.At(row, col); n != 0 {
			nums = append(nums, n)
		}
	}
	return nums
}

// ColumnRange returns the inclusive number range reserved for a column:
// 1-9 for the first, 80-90 for the last, ten-wide decades in between.
func ColumnRange(col int) (int, int) {
	switch col {
	case 0:
		return 1, 9
	case Cols - 1:
		return 80, 90
	default:
		return 10 * col, 10*col + 9
	}
}

// columnPool returns every number of a column's range.
func columnPool(col int) []int {
	min, max := ColumnRange(col)
	pool := make([]int, 0, max-min+1)
	for n := min; n <= max; n++ {
		pool = append(pool, n)
	}
	return pool
}

func shuffledRows() []int {
	rows := []int{0, 1, 2}
	rand.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}

func shuffledCols() []int {
	cols := make([]int, Cols)
	for i := range cols {
		cols[i] = i
	}
	rand.Shuffle(len(cols), func(i, j int) { cols[i], cols[j] = cols[j], cols[i] })
	return cols
}

// workGrid is the mutable 3x9 form the builders operate on.
type workGrid [Rows][Cols]int

func (w *workGrid) grid() Grid {
	g := make(Grid, 0, Cells)
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			g = append(g, w[row][col])
		}
	}
	return g
}

func (w *workGrid) rowCounts() [Rows]int {
	var counts [Rows]int
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if w[row][col] != 0 {
				counts[row]++
			}
		}
	}
	return counts
}

const maxBalanceIterations = 200

// balanceRows repairs a card until every row holds exactly five numbers.
// Each step moves a number from an overfull row to an underfull one within
// the same column, which keeps column contents intact. When no such move
// exists, a random column is reshuffled across its rows to break the
// deadlock. Returns false once the iteration budget runs out.
func (w *workGrid) balanceRows() bool {
	for iter := 0; iter < maxBalanceIterations; iter++ {
		counts := w.rowCounts()
		if counts == [Rows]int{NumbersPerRow, NumbersPerRow, NumbersPerRow} {
			return true
		}

		fat, thin := -1, -1
		for row, count := range counts {
			if count > NumbersPerRow && fat == -1 {
				fat = row
			}
			if count < NumbersPerRow && thin == -1 {
				thin = row
			}
		}
		if fat == -1 || thin == -1 {
			return false
		}

		moved := false
		for col := 0; col < Cols; col++ {
			if w[fat][col] != 0 && w[thin][col] == 0 {
				w[thin][col] = w[fat][col]
				w[fat][col] = 0
				moved = true
				break
			}
		}

		if !moved {
			w.reshuffleColumn(rand.Intn(Cols))
		}
	}
	return false
}

// reshuffleColumn redistributes a column's numbers across random rows.
func (w *workGrid) reshuffleColumn(col int) {
	nums := []int{}
	for row := 0; row < Rows; row++ {
		if w[row][col] != 0 {
			nums = append(nums, w[row][col])
		}
		w[row][col] = 0
	}
	rows := shuffledRows()
	for i, n := range nums {
		w[rows[i]][col] = n
	}
}
