package bingo

import (
	"fmt"
	"strconv"
	"strings"
)

// Validation is the verdict for a single grid. Findings accumulate: a
// malformed card lists every problem, not just the first one found.
type Validation struct {
	Valid    bool     `json:"valid"`
	Findings []string `json:"findings"`
}

// ValidateGrid checks every structural rule of a card face and collects one
// finding per violation.
func ValidateGrid(g Grid) Validation {
	findings := []string{}

	if len(g) != Cells {
		findings = append(findings, fmt.Sprintf("card has %d cells instead of %d", len(g), Cells))
	}

	if filled := g.Filled(); filled != NumbersPerCard {
		findings = append(findings, fmt.Sprintf("card has %d numbers instead of %d", filled, NumbersPerCard))
	}

	seen := map[int]bool{}
	duplicated := []int{}
	for _, n := range g {
		if n == 0 {
			continue
		}
		if seen[n] {
			duplicated = append(duplicated, n)
		}
		seen[n] = true
	}
	if len(duplicated) > 0 {
		findings = append(findings, "card contains duplicate numbers")
		findings = append(findings, fmt.Sprintf("duplicated numbers: %s", joinInts(duplicated)))
	}

	for col := 0; col < Cols; col++ {
		min, max := ColumnRange(col)
		for row := 0; row < Rows; row++ {
			i := row*Cols + col
			if i >= len(g) {
				continue
			}
			if n := g[i]; n != 0 && (n < min || n > max) {
				findings = append(findings, fmt.Sprintf("number %d in column %d must be between %d and %d", n, col+1, min, max))
			}
		}
	}

	for row := 0; row < Rows; row++ {
		count := 0
		for col := 0; col < Cols; col++ {
			if i := row*Cols + col; i < len(g) && g[i] != 0 {
				count++
			}
		}
		if count != NumbersPerRow {
			findings = append(findings, fmt.Sprintf("row %d has %d numbers instead of %d", row+1, count, NumbersPerRow))
		}
	}

	return Validation{Valid: len(findings) == 0, Findings: findings}
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
