package lexical

// SimilarityRatio returns the Ratcliff-Obershelp similarity of two strings,
// in [0, 1]: twice the number of matching characters divided by the total
// length of both strings. Matching characters are counted by finding the
// longest common substring, then recursing on the pieces to its left and
// right. Comparison is done on the raw strings; callers normalize first.
func SimilarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	return 2.0 * float64(matchingChars(ra, rb)) / float64(total)
}

func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchingChars(a[:ai], b[:bi])
	matched += matchingChars(a[ai+size:], b[bi+size:])
	return matched
}

// longestCommonSubstring finds the longest run of runes present in both a
// and b, returning its start in each and its length. Earlier positions win
// ties, which keeps the recursion deterministic.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// lengths[j] is the length of the common suffix ending at a[i] and b[j]
	// for the current row i.
	lengths := make([]int, len(b))
	for i := range a {
		prev := 0
		for j := range b {
			cur := lengths[j]
			if a[i] == b[j] {
				lengths[j] = prev + 1
				if lengths[j] > size {
					size = lengths[j]
					ai = i - size + 1
					bi = j - size + 1
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return ai, bi, size
}
