package bingo

import (
	"math/rand"
	"sort"
)

// Palette is the color rotation used when an order does not pin a color.
var Palette = []string{"#E65100", "#1976D2", "#2E2E2E", "#2E7D32", "#D32F2F", "#9C27B0"}

const maxSeriesAttempts = 100

// distributionProfile says how many numbers of a column pool each of the six
// cards receives. Pools hold 9, 10 or 11 numbers depending on the column.
func distributionProfile(size int) []int {
	switch size {
	case 9:
		return []int{2, 2, 2, 1, 1, 1}
	case 10:
		return []int{2, 2, 2, 2, 1, 1}
	default:
		return []int{2, 2, 2, 2, 2, 1}
	}
}

// BuildSeries builds the six grids of one series so that together they use
// every number from 1 to 90 exactly once. Any card that cannot be balanced
// discards the whole attempt; after maxSeriesAttempts the series is declared
// unbuildable.
func BuildSeries() ([]Grid, error) {
	for attempt := 0; attempt < maxSeriesAttempts; attempt++ {
		if grids, ok := buildSeriesOnce(); ok {
			return grids, nil
		}
	}
	return nil, ErrUnbuildable
}

func buildSeriesOnce() ([]Grid, bool) {
	var works [CardsPerSeries]workGrid
	takes := seriesTakes()

	// Partition all 90 numbers across the six cards, column by column.
	for col := 0; col < Cols; col++ {
		pool := columnPool(col)
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		next := 0
		for card := 0; card < CardsPerSeries; card++ {
			take := takes[card][col]
			nums := append([]int(nil), pool[next:next+take]...)
			next += take
			sort.Ints(nums)

			rows := shuffledRows()[:take]
			sort.Ints(rows)
			for i, row := range rows {
				works[card][row][col] = nums[i]
			}
		}
	}

	grids := make([]Grid, 0, CardsPerSeries)
	for i := range works {
		if !works[i].balanceRows() {
			return nil, false
		}
		grids = append(grids, works[i].grid())
	}
	return grids, true
}

// twosPerCard: a card's nine column takes are each 1 or 2 and must sum to 15,
// so exactly six columns contribute two numbers.
const twosPerCard = NumbersPerCard - Cols

// seriesTakes deals the distribution profiles across the cards so that every
// card receives exactly 15 numbers. Each column hands its 2-number slots to
// the cards that still owe the most 2s, ties broken at random; the row repair
// cannot change a card's total, so the totals must be exact here.
func seriesTakes() [CardsPerSeries][Cols]int {
	var takes [CardsPerSeries][Cols]int
	var need [CardsPerSeries]int
	for card := range need {
		need[card] = twosPerCard
	}

	for col := 0; col < Cols; col++ {
		twos := 0
		for _, take := range distributionProfile(len(columnPool(col))) {
			if take == 2 {
				twos++
			}
		}

		cards := make([]int, CardsPerSeries)
		for i := range cards {
			cards[i] = i
		}
		rand.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
		sort.SliceStable(cards, func(i, j int) bool { return need[cards[i]] > need[cards[j]] })

		for idx, card := range cards {
			if idx < twos {
				takes[card][col] = 2
				need[card]--
			} else {
				takes[card][col] = 1
			}
		}
	}
	return takes
}

const maxIndependentAttempts = 1000

// BuildSeriesIndependent assembles a series of count cards by building each
// card on its own and rejecting any card whose fingerprint collides with one
// already accepted. Unlike BuildSeries the cards do not partition 1-90.
func BuildSeriesIndependent(count int) ([]Grid, error) {
	grids := make([]Grid, 0, count)
	seen := make(map[string]bool, count)

	for attempt := 0; attempt < maxIndependentAttempts && len(grids) < count; attempt++ {
		grid, err := BuildCard()
		if err != nil {
			continue
		}
		fp := Fingerprint(grid)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		grids = append(grids, grid)
	}

	if len(grids) < count {
		return nil, ErrUnbuildable
	}
	return grids, nil
}
