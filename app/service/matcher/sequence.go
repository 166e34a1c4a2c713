package matcher

// Popular elements of b are ignored when seeding matches once b is at least
// this long. An element is popular if it occupies more than 1% of b.
const autojunkMinLength = 200

type match struct {
	a, b, size int
}

// sequenceMatcher finds longest common contiguous blocks between a and b,
// recursing on both sides of each block.
type sequenceMatcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newSequenceMatcher(a, b []rune) *sequenceMatcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	if n := len(b); n >= autojunkMinLength {
		limit := n/100 + 1
		for r, positions := range b2j {
			if len(positions) > limit {
				delete(b2j, r)
			}
		}
	}

	return &sequenceMatcher{a: a, b: b, b2j: b2j}
}

// longestMatch returns the longest block of a[alo:ahi] equal to b[blo:bhi].
// Ties go to the block starting earliest in a, then earliest in b.
func (m *sequenceMatcher) longestMatch(alo, ahi, blo, bhi int) match {
	best := match{a: alo, b: blo}

	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}

			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = match{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = next
	}

	// popular elements never seed a block, but can still extend one
	for best.a > alo && best.b > blo && m.a[best.a-1] == m.b[best.b-1] {
		best.a--
		best.b--
		best.size++
	}
	for best.a+best.size < ahi && best.b+best.size < bhi && m.a[best.a+best.size] == m.b[best.b+best.size] {
		best.size++
	}

	return best
}

func (m *sequenceMatcher) matchingBlocks() []match {
	type span struct {
		alo, ahi, blo, bhi int
	}

	var blocks []match
	stack := []span{{0, len(m.a), 0, len(m.b)}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		found := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if found.size == 0 {
			continue
		}

		blocks = append(blocks, found)
		if s.alo < found.a && s.blo < found.b {
			stack = append(stack, span{s.alo, found.a, s.blo, found.b})
		}
		if found.a+found.size < s.ahi && found.b+found.size < s.bhi {
			stack = append(stack, span{found.a + found.size, s.ahi, found.b + found.size, s.bhi})
		}
	}

	return blocks
}

// ratio is 2*M/T, where M is the number of matched runes and T the combined
// length. Two empty sequences are identical.
func (m *sequenceMatcher) ratio() float64 {
	total := len(m.a) + len(m.b)
	if total == 0 {
		return 1
	}

	matched := 0
	for _, block := range m.matchingBlocks() {
		matched += block.size
	}

	return 2 * float64(matched) / float64(total)
}
