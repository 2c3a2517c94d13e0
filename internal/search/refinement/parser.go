// internal/search/refinement/parser.go
package refinement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/extract"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

const (
	ratingConfidence      = 0.9
	openNowConfidence     = 0.95
	priceSymbolConfidence = 0.95
	priceTextConfidence   = 0.85
	distanceConfidence    = 0.9
	attributeConfidence   = 0.85
	limitConfidence       = 0.85

	// noOperatorConfidence is reported when the utterance reads as a
	// refinement but no individual operator could be extracted.
	noOperatorConfidence = 0.5

	walkingDistanceMiles = 0.5
	nearbyMiles          = 2
	metersPerKm          = 1000
)

var (
	businessTerms = regexp.MustCompile(`\b(?:restaurant|coffee|cafe|bar|shop|store|business)`)
	locationTerms = regexp.MustCompile(`\bnear\b|\bin\s+|\bat\s+|\baround\b|\bdowntown\b|\bstreet\b|\bavenue\b`)
	filterTerms   = regexp.MustCompile(`stars?|rated|open|cheap|expensive|\$|parking|delivery|wifi|distance|within|mile`)

	// "at least 4 stars" is a rating phrase, not an "at <place>" location.
	atLeast = regexp.MustCompile(`\bat\s+least\b`)

	// A run of one to four dollar signs not immediately followed by a digit,
	// so that "under $15" is read as an amount rather than a one-symbol
	// price. Longer runs are out of range and yield no price.
	dollarRun   = regexp.MustCompile(`(?:^|[^$])(\${1,4})(?:[^$\d]|$)`)
	underAmount = regexp.MustCompile(`under\s+\$(\d+)`)
)

// Parser turns follow-up utterances into refinement operators.
type Parser struct {
	directives []*regexp.Regexp
	resets     []string
	attributes []string

	rating    []extract.Rule[float64]
	openNow   []extract.Rule[bool]
	priceText []extract.Rule[int]
	distance  []extract.Rule[float64]
	limit     []extract.Rule[int]
}

func NewParser(vocab *vocabulary.Vocabulary) *Parser {
	p := &Parser{
		resets:     append([]string(nil), vocab.ResetPhrases...),
		attributes: append([]string(nil), vocab.RefinementAttributes...),
	}
	for _, d := range vocab.RefinementDirectives {
		p.directives = append(p.directives, regexp.MustCompile(d))
	}

	p.rating = []extract.Rule[float64]{
		ratingRule(`(\d+(?:\.\d+)?)\+\s*stars?`),
		ratingRule(`at\s+least\s+(\d+\.?\d*)\s*stars?`),
		ratingRule(`above\s+(\d+\.?\d*)\s*stars?`),
		{Name: "highly rated", Match: extract.Fixed(regexp.MustCompile(`highly\s+rated`), 4.0), Confidence: ratingConfidence},
		{Name: "top rated", Match: extract.Fixed(regexp.MustCompile(`top\s+rated`), 4.5), Confidence: ratingConfidence},
		ratingRule(`(\d+(?:\.\d+)?)\s*star`),
	}

	for _, pattern := range []string{`open\s+now`, `open\s+late`, `24\s*hours?`, `24/7`, `open\s+on\s+weekends?`} {
		p.openNow = append(p.openNow, extract.Rule[bool]{
			Name:       pattern,
			Match:      extract.Fixed(regexp.MustCompile(pattern), true),
			Confidence: openNowConfidence,
		})
	}

	for _, kw := range []struct {
		pattern string
		level   int
	}{
		{`cheap`, 1},
		{`inexpensive`, 1},
		{`affordable`, 2},
		{`expensive`, 3},
		{`fine\s+dining`, 4},
	} {
		p.priceText = append(p.priceText, extract.Rule[int]{
			Name:       kw.pattern,
			Match:      extract.Fixed(regexp.MustCompile(kw.pattern), kw.level),
			Confidence: priceTextConfidence,
		})
	}
	p.priceText = append(p.priceText, extract.Rule[int]{
		Name: underAmount.String(),
		Match: extract.Pattern(underAmount, func(m []string) (int, bool) {
			amount, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, false
			}
			return AmountToPriceLevel(amount), true
		}),
		Confidence: priceTextConfidence,
	})

	p.distance = []extract.Rule[float64]{
		distanceRule(`within\s+(\d+\.?\d*)\s*miles?`, models.MetersPerMile),
		distanceRule(`within\s+(\d+\.?\d*)\s*km`, metersPerKm),
		distanceRule(`less\s+than\s+(\d+\.?\d*)\s*miles?`, models.MetersPerMile),
		distanceRule(`less\s+than\s+(\d+\.?\d*)\s*km`, metersPerKm),
		{Name: "walking distance", Match: extract.Fixed(regexp.MustCompile(`walking\s+distance`), walkingDistanceMiles*models.MetersPerMile), Confidence: distanceConfidence},
		{Name: "nearby", Match: extract.Fixed(regexp.MustCompile(`nearby`), nearbyMiles*models.MetersPerMile), Confidence: distanceConfidence},
		{Name: "close by", Match: extract.Fixed(regexp.MustCompile(`close\s+by`), nearbyMiles*models.MetersPerMile), Confidence: distanceConfidence},
	}

	for _, pattern := range []string{`\b(?:top|first)\s+(\d+)\b`, `limit\s+to\s+(\d+)\b`} {
		re := regexp.MustCompile(pattern)
		p.limit = append(p.limit, extract.Rule[int]{
			Name: pattern,
			Match: extract.Pattern(re, func(m []string) (int, bool) {
				n, err := strconv.Atoi(m[1])
				return n, err == nil && n > 0
			}),
			Confidence: limitConfidence,
		})
	}

	return p
}

func ratingRule(pattern string) extract.Rule[float64] {
	return extract.Rule[float64]{
		Name:       pattern,
		Match:      extract.Pattern(regexp.MustCompile(pattern), extract.ParseNumber),
		Confidence: ratingConfidence,
	}
}

func distanceRule(pattern string, metersPerUnit float64) extract.Rule[float64] {
	return extract.Rule[float64]{
		Name: pattern,
		Match: extract.Pattern(regexp.MustCompile(pattern), func(m []string) (float64, bool) {
			v, ok := extract.ParseNumber(m)
			return v * metersPerUnit, ok
		}),
		Confidence: distanceConfidence,
	}
}

// AmountToPriceLevel maps a spend ceiling in dollars onto the 1-4 scale.
func AmountToPriceLevel(amount int) int {
	switch {
	case amount <= 10:
		return 1
	case amount <= 20:
		return 2
	case amount <= 40:
		return 3
	default:
		return 4
	}
}

// DetectIntent reports whether text narrows the current results rather than
// starting a new search. Explicit directives ("show only", "filter to")
// always count; otherwise text must carry filter vocabulary and mention
// neither a business type nor a location.
func (p *Parser) DetectIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, d := range p.directives {
		if d.MatchString(lower) {
			return true
		}
	}

	hasFilter := filterTerms.MatchString(lower)
	hasBusiness := businessTerms.MatchString(lower)
	hasLocation := locationTerms.MatchString(atLeast.ReplaceAllString(lower, ""))
	return hasFilter && !hasBusiness && !hasLocation
}

// IsReset reports whether text asks to drop every active filter.
func (p *Parser) IsReset(text string) bool {
	lower := extract.Normalize(text)
	for _, phrase := range p.resets {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Parse extracts at most one operator per dimension, in the order rating,
// open now, price, distance, attributes, limit.
func (p *Parser) Parse(text string) models.RefinementParseResult {
	if !p.DetectIntent(text) {
		return models.RefinementParseResult{
			Operators:    []models.RefinementOperator{},
			OriginalText: text,
		}
	}

	lower := strings.ToLower(text)
	var ops []models.RefinementOperator

	if v, conf, ok := extract.FirstMatch(p.rating, lower); ok {
		ops = append(ops, models.RatingOperator{Threshold: v, Score: conf})
	}
	if v, conf, ok := extract.FirstMatch(p.openNow, lower); ok {
		ops = append(ops, models.OpenNowOperator{Flag: v, Score: conf})
	}
	if level, conf, ok := p.price(lower); ok {
		ops = append(ops, models.PriceOperator{MaxLevel: level, Score: conf})
	}
	if v, conf, ok := extract.FirstMatch(p.distance, lower); ok {
		ops = append(ops, models.DistanceOperator{MaxMeters: v, Score: conf})
	}
	if attrs := extract.MatchAll(p.attributes, lower); len(attrs) > 0 {
		ops = append(ops, models.AttributesOperator{Attributes: attrs, Score: attributeConfidence})
	}
	if v, conf, ok := extract.FirstMatch(p.limit, lower); ok {
		ops = append(ops, models.LimitOperator{Count: v, Score: conf})
	}

	confidence := noOperatorConfidence
	if len(ops) > 0 {
		scores := make([]float64, len(ops))
		for i, op := range ops {
			scores[i] = op.Confidence()
		}
		confidence = extract.MeanConfidence(scores)
	}
	if ops == nil {
		ops = []models.RefinementOperator{}
	}

	return models.RefinementParseResult{
		IsRefinement: true,
		Operators:    ops,
		Confidence:   confidence,
		OriginalText: text,
	}
}

func (p *Parser) price(lower string) (int, float64, bool) {
	if m := dollarRun.FindStringSubmatch(lower); m != nil {
		return len(m[1]), priceSymbolConfidence, true
	}
	return extract.FirstMatch(p.priceText, lower)
}
