package fuzzy

import (
	"cmp"
	"slices"
)

// Sequences at least this long drop popular runes from the match index.
const (
	autojunkMinLen     = 200
	autojunkPercentile = 100
)

// block is a run of equal runes: a[i:i+size] == b[j:j+size].
type block struct {
	i, j, size int
}

// sequenceMatcher finds the longest common runs of two rune sequences by
// recursively taking the longest match and repeating on both sides of it.
// Its similarity is 2*M/T where M counts matched runes and T is the total length.
type sequenceMatcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newSequenceMatcher(a, b []rune) *sequenceMatcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	if n := len(b); n >= autojunkMinLen {
		limit := n/autojunkPercentile + 1
		for r, idxs := range b2j {
			if len(idxs) > limit {
				delete(b2j, r)
			}
		}
	}

	return &sequenceMatcher{a: a, b: b, b2j: b2j}
}

// longestMatch returns the longest block inside a[alo:ahi] and b[blo:bhi].
// Among equally long blocks the one starting earliest in a, then in b, wins.
func (m *sequenceMatcher) longestMatch(alo, ahi, blo, bhi int) block {
	best := block{i: alo, j: blo}

	// lengths[j] is the length of the match ending at a[i-1] and b[j].
	lengths := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > best.size {
				best = block{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		lengths = next
	}

	// Popular runes are missing from the index; grow the block over them.
	for best.i > alo && best.j > blo && m.a[best.i-1] == m.b[best.j-1] {
		best.i--
		best.j--
		best.size++
	}
	for best.i+best.size < ahi && best.j+best.size < bhi &&
		m.a[best.i+best.size] == m.b[best.j+best.size] {
		best.size++
	}
	return best
}

// matchingBlocks returns the non-overlapping matching blocks in order, with
// adjacent blocks merged, followed by a zero-size block at (len(a), len(b)).
func (m *sequenceMatcher) matchingBlocks() []block {
	type span struct{ alo, ahi, blo, bhi int }

	var found []block
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		x := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if x.size == 0 {
			continue
		}
		found = append(found, x)
		if s.alo < x.i && s.blo < x.j {
			queue = append(queue, span{s.alo, x.i, s.blo, x.j})
		}
		if x.i+x.size < s.ahi && x.j+x.size < s.bhi {
			queue = append(queue, span{x.i + x.size, s.ahi, x.j + x.size, s.bhi})
		}
	}

	slices.SortFunc(found, func(x, y block) int {
		return cmp.Or(cmp.Compare(x.i, y.i), cmp.Compare(x.j, y.j), cmp.Compare(x.size, y.size))
	})

	blocks := make([]block, 0, len(found)+1)
	var cur block
	for _, x := range found {
		if cur.i+cur.size == x.i && cur.j+cur.size == x.j {
			cur.size += x.size
			continue
		}
		if cur.size > 0 {
			blocks = append(blocks, cur)
		}
		cur = x
	}
	if cur.size > 0 {
		blocks = append(blocks, cur)
	}
	return append(blocks, block{i: len(m.a), j: len(m.b)})
}

// ratio returns the similarity in [0, 1]. Two empty sequences are identical.
func (m *sequenceMatcher) ratio() float64 {
	total := len(m.a) + len(m.b)
	if total == 0 {
		return 1
	}
	matched := 0
	for _, x := range m.matchingBlocks() {
		matched += x.size
	}
	return 2.0 * float64(matched) / float64(total)
}
