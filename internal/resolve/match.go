package resolve

import "strings"

// MatchesPattern reports whether a candidate name matches a search pattern:
// either the pattern is a case-insensitive substring of the name, or its
// characters occur as a case-insensitive ordered subsequence (so "USvc"
// matches "UserService").
func MatchesPattern(pattern, name string) bool {
	p := strings.ToLower(pattern)
	n := strings.ToLower(name)
	if strings.Contains(n, p) {
		return true
	}
	return isSubsequence(p, n)
}

// isSubsequence reports whether every rune of pattern occurs in name in
// order. Both inputs are expected lower-cased.
func isSubsequence(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	pr := []rune(pattern)
	i := 0
	for _, r := range name {
		if r == pr[i] {
			i++
			if i == len(pr) {
				return true
			}
		}
	}
	return false
}

// rankDistance is the Levenshtein edit distance between the pattern and the
// closest prefix of the name. Whole-name distance would punish long names
// whose tail the pattern never touches ("USvc" should prefer "UserService"
// over "UtilitySvc"). Runes, not bytes, so non-ASCII names rank sanely.
func rankDistance(pattern, name string) int {
	if len(pattern) == 0 {
		return 0
	}
	if len(name) == 0 {
		return len([]rune(pattern))
	}

	pr := []rune(pattern)
	nr := []rune(name)

	prev := make([]int, len(nr)+1)
	curr := make([]int, len(nr)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(pr); i++ {
		curr[0] = i
		for j := 1; j <= len(nr); j++ {
			cost := 1
			if pr[i-1] == nr[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	// The name's unconsumed suffix is free: take the best prefix alignment.
	best := prev[0]
	for _, d := range prev[1:] {
		if d < best {
			best = d
		}
	}
	return best
}
