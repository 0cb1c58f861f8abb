package matcher

import (
	"fmt"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// RatcliffObershelp implements [strutil.StringMetric] using the Ratcliff/Obershelp
// gestalt pattern matching ratio 2*M/T, where M is the number of runes in matching
// blocks and T the total number of runes in both strings.
//
// Matching blocks are found by taking the longest common substring and recursing on
// both sides. Ties prefer the block starting earliest in a, then earliest in b.
// The comparison is case-sensitive; two empty strings are identical.
type RatcliffObershelp struct{}

var _ strutil.StringMetric = RatcliffObershelp{}

// Compare returns the similarity of a and b in [0, 1].
func (RatcliffObershelp) Compare(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

type span struct{ alo, ahi, blo, bhi int }

// matchingRunes sums the sizes of all matching blocks of a and b.
func matchingRunes(a, b []rune) int {
	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest common substring of a[alo:ahi] and b[blo:bhi].
func longestMatch(a, b []rune, s span) (besti, bestj, bestk int) {
	besti, bestj = s.alo, s.blo
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := s.alo; i < s.ahi; i++ {
		for j := s.blo; j < s.bhi; j++ {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			k := prev[j] + 1
			cur[j+1] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
		clear(cur)
	}
	return besti, bestj, bestk
}

// MetricByName returns the similarity metric configured under name.
func MetricByName(name string) (strutil.StringMetric, error) {
	switch name {
	case "", "ratcliff-obershelp":
		return RatcliffObershelp{}, nil
	case "jaro-winkler":
		return metrics.NewJaroWinkler(), nil
	case "levenshtein":
		return metrics.NewLevenshtein(), nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q", name)
	}
}
