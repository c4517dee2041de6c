package ingest

import "strings"

// similarityRatio scores how close two names are, in [0,1].
// ratio = 2*M/T where M is the total length of the matching blocks found
// by repeatedly taking the longest common block, and T is the combined
// length of both strings. Comparison is case-insensitive; two empty
// strings score 1.
func similarityRatio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	matched := matchingTotal(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(total)
}

// matchingTotal sums matching block sizes over a[alo:ahi] x b[blo:bhi]:
// the longest block splits the window, and the halves are aligned
// recursively on each side of it.
func matchingTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	besti, bestj, bestsize := longestMatch(a, b, alo, ahi, blo, bhi)
	if bestsize == 0 {
		return 0
	}

	total := bestsize
	total += matchingTotal(a, b, alo, besti, blo, bestj)
	total += matchingTotal(a, b, besti+bestsize, ahi, bestj+bestsize, bhi)
	return total
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the
// window. On equal sizes the earliest block wins, which keeps the
// alignment, and with it the ratio, deterministic.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj, bestsize = alo, blo, 0

	// j2len[j] is the length of the longest run ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] == b[j] {
				k := j2len[j-1] + 1
				newj2len[j] = k
				if k > bestsize {
					besti, bestj, bestsize = i-k+1, j-k+1, k
				}
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}
