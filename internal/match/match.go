// Package match scores free-text search terms against catalog names.
// Item and site lookup both accept partial, misspelled, or reordered
// input ("monter energy 16oz"), so scoring blends edit distance with
// token overlap and gives package sizes their own signal.
package match

import (
	"regexp"
	"sort"
	"strings"
)

// Scorer rates how well candidate matches query. Scores are in [0, 1]
// where 1 is an exact match.
type Scorer interface {
	Score(query, candidate string) float64
}

// Match is one scored candidate.
type Match struct {
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

// Rank scores every candidate and returns those at or above threshold,
// best first. Ties break lexicographically so output is stable.
func Rank(s Scorer, query string, candidates []string, threshold float64, limit int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		score := s.Score(query, c)
		if score >= threshold {
			matches = append(matches, Match{Value: c, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Value < matches[j].Value
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// CompositeScorer blends edit similarity, token overlap, and unit-size
// agreement. Weights sum to 1 when size information is present on both
// sides; otherwise the size weight redistributes to the other two.
type CompositeScorer struct {
	EditWeight  float64
	TokenWeight float64
	SizeWeight  float64
}

// NewScorer returns the default composite scorer.
func NewScorer() *CompositeScorer {
	return &CompositeScorer{
		EditWeight:  0.5,
		TokenWeight: 0.3,
		SizeWeight:  0.2,
	}
}

// Score implements Scorer.
func (cs *CompositeScorer) Score(query, candidate string) float64 {
	q := normalize(query)
	c := normalize(candidate)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1
	}

	edit := jaroWinkler(q, c)
	token := tokenJaccard(q, c)

	qSize, qOK := ExtractSize(q)
	cSize, cOK := ExtractSize(c)

	if !qOK || !cOK {
		// No size on one side: renormalize over the remaining weights.
		total := cs.EditWeight + cs.TokenWeight
		return (cs.EditWeight*edit + cs.TokenWeight*token) / total
	}

	size := 0.0
	if qSize == cSize {
		size = 1.0
	}
	return cs.EditWeight*edit + cs.TokenWeight*token + cs.SizeWeight*size
}

var sizePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(oz|ml|l|lb|g|kg|ct|pk|pack)\b`)

// ExtractSize pulls a package size like "20oz" or "1.5 l" out of a
// normalized string. Returns the canonical "<number><unit>" form.
func ExtractSize(s string) (string, bool) {
	m := sizePattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return "", false
	}
	unit := m[2]
	if unit == "pk" {
		unit = "pack"
	}
	return m[1] + unit, true
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

func tokenJaccard(a, b string) float64 {
	as := strings.Fields(a)
	bs := strings.Fields(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}

	set := make(map[string]bool, len(as))
	for _, t := range as {
		set[t] = true
	}

	inter := 0
	bset := make(map[string]bool, len(bs))
	for _, t := range bs {
		if bset[t] {
			continue
		}
		bset[t] = true
		if set[t] {
			inter++
		}
	}

	union := len(set) + len(bset) - inter
	return float64(inter) / float64(union)
}

// LevenshteinDistance returns the minimum number of single-character
// edits needed to turn a into b.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// jaroWinkler computes Jaro-Winkler similarity with the standard 0.1
// prefix scale capped at 4 characters.
func jaroWinkler(a, b string) float64 {
	j := jaro(a, b)
	if j == 0 {
		return 0
	}

	prefix := 0
	for i := 0; i < len(a) && i < len(b) && i < 4; i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*0.1*(1-j)
}

func jaro(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0
	}

	window := max2(la, lb)/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, la)
	bMatched := make([]bool, lb)
	matches := 0

	for i := 0; i < la; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > lb {
			hi = lb
		}
		for j := lo; j < hi; j++ {
			if bMatched[j] || ra[i] != rb[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := 0; i < la; i++ {
		if !aMatched[i] {
			continue
		}
		for !bMatched[j] {
			j++
		}
		if ra[i] != rb[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions)/2)/m) / 3
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}
