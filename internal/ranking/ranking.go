// Package ranking assigns tie-aware ranks to sorted standings.
package ranking

// Assign sets competition ranks on items already sorted by descending points.
// Equal points share a rank; the next distinct value gets its 1-based
// position, so ranks may skip after a tie group (1, 1, 3).
func Assign[T any](sorted []T, points func(*T) int, setRank func(*T, int)) {
	prevRank := 0
	for i := range sorted {
		rank := i + 1
		if i > 0 && points(&sorted[i]) == points(&sorted[i-1]) {
			rank = prevRank
		}
		setRank(&sorted[i], rank)
		prevRank = rank
	}
}

// Leaders returns the prefix of sorted items sharing rank 1.
func Leaders[T any](sorted []T, rank func(*T) int) []T {
	n := 0
	for n < len(sorted) && rank(&sorted[n]) == 1 {
		n++
	}
	return sorted[:n]
}
