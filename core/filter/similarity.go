package filter

import "strings"

// Score tiers for the title similarity scorer. Scores below the partial
// tier come from edit distance and decrease monotonically with it.
const (
	scoreExact      = 1.0
	scoreCaseFold   = 0.99
	scoreNormalized = 0.97
)

// Normalize prepares a title for similarity comparison: upper-case, strip
// colons, turn dashes into spaces, collapse runs of whitespace.
func Normalize(title string) string {
	t := strings.ToUpper(title)
	t = strings.ReplaceAll(t, ":", "")
	t = strings.ReplaceAll(t, "-", " ")
	return strings.Join(strings.Fields(t), " ")
}

// Score rates how alike two titles are, in [0, 1]. Exact match scores
// highest, then case-insensitive match, then normalized match; anything
// else scores by edit distance over the normalized forms, with a floor for
// containment so that subtitled re-releases still rank above noise.
func Score(a, b string) float64 {
	if a == b {
		return scoreExact
	}
	if strings.EqualFold(a, b) {
		return scoreCaseFold
	}

	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return scoreNormalized
	}
	if na == "" || nb == "" {
		return 0
	}

	longest := len(na)
	shortest := len(nb)
	if shortest > longest {
		longest, shortest = shortest, longest
	}

	score := 1.0 - float64(levenshteinDistance(na, nb))/float64(longest)

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		if floor := 0.75 + 0.20*float64(shortest)/float64(longest); floor > score {
			score = floor
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}

	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = minInt(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

func minInt(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
