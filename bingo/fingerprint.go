package bingo

import (
	"strconv"
	"strings"
)

// Fingerprint returns the canonical identity of a grid: all cells joined in
// row-major order with ".", blanks written as 0. Two grids are the same card
// exactly when their fingerprints are byte-equal; the store enforces a unique
// index over this value.
func Fingerprint(g Grid) string {
	parts := make([]string, len(g))
	for i, n := range g {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
