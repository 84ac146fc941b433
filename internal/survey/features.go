package survey

// Kind selects how a raw cell becomes a number.
type Kind int

const (
	KindFrequency Kind = iota
	KindImportance
	KindNumeric
)

// String returns the kind name used in logs and chart labels.
func (k Kind) String() string {
	switch k {
	case KindFrequency:
		return "frequency"
	case KindImportance:
		return "importance"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// frequencyScale maps answers to "how often" questions.
var frequencyScale = map[string]float64{
	"Always":    4,
	"Often":     3,
	"Sometimes": 2,
	"Rarely":    1,
	"Never":     0,
}

// importanceScale maps answers to "how important" questions. The survey
// scores "slightly unimportant" above "very unimportant"; keep it that way.
var importanceScale = map[string]float64{
	"very important":       3,
	"slightly important":   2,
	"slightly unimportant": 1,
	"very unimportant":     0,
}

// ExtractFeatures returns one number per row for the given column.
// Missing cells and values outside the lookup tables become 0.
func ExtractFeatures(rows []Row, column string, kind Kind) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = featureValue(row[column], kind)
	}
	return out
}

func featureValue(raw string, kind Kind) float64 {
	switch kind {
	case KindFrequency:
		return frequencyScale[raw]
	case KindImportance:
		return importanceScale[raw]
	case KindNumeric:
		n, ok := parseIntPrefix(raw)
		if !ok {
			return 0
		}
		return n
	default:
		return 0
	}
}

// parseIntPrefix reads a leading base-10 integer the way a browser's parseInt
// does: optional whitespace, optional sign, then digits up to the first
// non-digit. "42kg" is 42, "3.9" is 3, "abc" is not a number.
func parseIntPrefix(s string) (float64, bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	start := i
	var n float64
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + float64(s[i]-'0')
		i++
	}
	if i == start {
		return 0, false
	}

	if neg {
		n = -n
	}
	return n, true
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// CategoryCount is one bar of a categorical tally.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoryTally counts distinct raw values in first-seen order.
type CategoryTally []CategoryCount

// Tally counts how often each distinct value of column occurs. Every row is
// counted exactly once; values are kept verbatim, including free-form ones.
func Tally(rows []Row, column string) CategoryTally {
	index := make(map[string]int)
	var tally CategoryTally
	for _, row := range rows {
		v := row[column]
		if pos, ok := index[v]; ok {
			tally[pos].Count++
			continue
		}
		index[v] = len(tally)
		tally = append(tally, CategoryCount{Value: v, Count: 1})
	}
	return tally
}

// Counts returns the tally as a map.
func (t CategoryTally) Counts() map[string]int {
	m := make(map[string]int, len(t))
	for _, c := range t {
		m[c.Value] = c.Count
	}
	return m
}

// Split returns categories and counts as parallel slices.
func (t CategoryTally) Split() ([]string, []int) {
	categories := make([]string, len(t))
	counts := make([]int, len(t))
	for i, c := range t {
		categories[i] = c.Value
		counts[i] = c.Count
	}
	return categories, counts
}
