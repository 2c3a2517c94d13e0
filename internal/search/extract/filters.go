// internal/search/extract/filters.go
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

const (
	ratingConfidence      = 0.9
	temporalConfidence    = 0.95
	priceSymbolConfidence = 0.95
	priceTextConfidence   = 0.85
	attributeConfidence   = 0.85
)

var (
	genericStars = regexp.MustCompile(`(\d)\s*stars?`)

	// Longest run first so "$$$" is not read as "$".
	priceSymbols = []struct {
		re    *regexp.Regexp
		level int
	}{
		{regexp.MustCompile(`\$\$\$\$`), 4},
		{regexp.MustCompile(`\$\$\$`), 3},
		{regexp.MustCompile(`\$\$`), 2},
		{regexp.MustCompile(`\$`), 1},
	}
)

// FilterResult is the filter state parsed from one query plus the mean
// confidence of the dimensions that produced a value.
type FilterResult struct {
	Filters    models.FilterState
	Confidence float64
}

type FilterExtractor struct {
	rating     []Rule[float64]
	temporal   []Rule[bool]
	price      []Rule[int]
	attributes []string
}

func NewFilterExtractor(vocab *vocabulary.Vocabulary) *FilterExtractor {
	e := &FilterExtractor{attributes: append([]string(nil), vocab.Attributes...)}

	for n := 5; n >= 1; n-- {
		re := regexp.MustCompile(strconv.Itoa(n) + `[-\s]star`)
		e.rating = append(e.rating, Rule[float64]{
			Name: re.String(), Match: Fixed(re, float64(n)), Confidence: ratingConfidence,
		})
	}
	e.rating = append(e.rating, Rule[float64]{
		Name: genericStars.String(),
		Match: Pattern(genericStars, func(m []string) (float64, bool) {
			v, ok := ParseNumber(m)
			return v, ok && v >= 1 && v <= 5
		}),
		Confidence: ratingConfidence,
	})
	for _, p := range vocab.RatingPhrases {
		e.rating = append(e.rating, Rule[float64]{
			Name: p.Phrase, Match: Phrase(p.Phrase, p.Value), Confidence: ratingConfidence,
		})
	}

	for _, p := range vocab.TemporalPhrases {
		e.temporal = append(e.temporal, Rule[bool]{
			Name: p, Match: Phrase(p, true), Confidence: temporalConfidence,
		})
	}

	for _, s := range priceSymbols {
		e.price = append(e.price, Rule[int]{
			Name: s.re.String(), Match: Fixed(s.re, s.level), Confidence: priceSymbolConfidence,
		})
	}
	for _, p := range vocab.PricePhrases {
		e.price = append(e.price, Rule[int]{
			Name: p.Phrase, Match: Phrase(p.Phrase, int(p.Value)), Confidence: priceTextConfidence,
		})
	}

	return e
}

func (e *FilterExtractor) Extract(text string) FilterResult {
	normalized := Normalize(text)
	var (
		out    models.FilterState
		scores []float64
	)

	if v, c, ok := FirstMatch(e.rating, normalized); ok {
		out.MinRating = models.Float64(v)
		scores = append(scores, c)
	}
	if v, c, ok := FirstMatch(e.temporal, normalized); ok {
		out.OpenNow = models.Bool(v)
		scores = append(scores, c)
	}
	if v, c, ok := FirstMatch(e.price, normalized); ok {
		out.MaxPriceLevel = models.Int(v)
		scores = append(scores, c)
	}
	if attrs := MatchAll(e.attributes, normalized); len(attrs) > 0 {
		out.Attributes = attrs
		scores = append(scores, attributeConfidence)
	}

	return FilterResult{Filters: out, Confidence: MeanConfidence(scores)}
}

// MatchAll returns every phrase contained in text, in list order.
func MatchAll(phrases []string, text string) []string {
	var found []string
	for _, p := range phrases {
		if strings.Contains(text, p) {
			found = append(found, p)
		}
	}
	return found
}
