// internal/search/extract/location.go
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

const (
	relativeConfidence = 0.9
	distanceConfidence = 0.85
	landmarkConfidence = 0.8
	explicitConfidence = 0.75
	zipConfidence      = 0.95

	// relativeDefault is the location reported for a bare distance qualifier.
	relativeDefault = "near me"
	maxLocationLen  = 100
)

var (
	distancePatterns = []struct {
		re   *regexp.Regexp
		unit models.DistanceUnit
	}{
		{regexp.MustCompile(`within (\d+(?:\.\d+)?)\s*(?:mile|miles)`), models.UnitMiles},
		{regexp.MustCompile(`within (\d+(?:\.\d+)?)\s*(?:km|kilometer|kilometers)\b`), models.UnitKm},
		{regexp.MustCompile(`within (\d+(?:\.\d+)?)\s*(?:m|meter|meters)\b`), models.UnitMeters},
		{regexp.MustCompile(`less than (\d+(?:\.\d+)?)\s*(?:mile|miles)`), models.UnitMiles},
		{regexp.MustCompile(`less than (\d+(?:\.\d+)?)\s*(?:km|kilometer|kilometers)`), models.UnitKm},
		{regexp.MustCompile(`under (\d+(?:\.\d+)?)\s*(?:mile|miles)`), models.UnitMiles},
		{regexp.MustCompile(`(\d+)\s*mile`), models.UnitMiles},
		{regexp.MustCompile(`(\d+)\s*km`), models.UnitKm},
	}

	landmarkRun = regexp.MustCompile(`^([^,.;]+)`)
	explicitIn  = regexp.MustCompile(`\bin\s+([a-zA-Z\s]+?)(?:\s|$|,|\.)`)
	zipCode     = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
)

type LocationExtractor struct {
	rules []Rule[models.LocationResult]
}

func NewLocationExtractor(vocab *vocabulary.Vocabulary) *LocationExtractor {
	var rules []Rule[models.LocationResult]

	for _, kw := range vocab.RelativeLocations {
		rules = append(rules, Rule[models.LocationResult]{
			Name: "relative:" + kw,
			Match: Phrase(kw, models.LocationResult{
				Kind:       models.LocationRelative,
				Value:      kw,
				Confidence: relativeConfidence,
			}),
			Confidence: relativeConfidence,
		})
	}

	for _, p := range distancePatterns {
		unit := p.unit
		rules = append(rules, Rule[models.LocationResult]{
			Name: "distance:" + p.re.String(),
			Match: Pattern(p.re, func(m []string) (models.LocationResult, bool) {
				v, ok := ParseNumber(m)
				if !ok {
					return models.LocationResult{}, false
				}
				return models.LocationResult{
					Kind:       models.LocationRelative,
					Value:      relativeDefault,
					Distance:   &models.DistanceQualifier{Value: v, Unit: unit},
					Confidence: distanceConfidence,
				}, true
			}),
			Confidence: distanceConfidence,
		})
	}

	indicators := append([]string(nil), vocab.LandmarkIndicators...)
	rules = append(rules, Rule[models.LocationResult]{
		Name:       "landmark",
		Match:      func(text string) (models.LocationResult, bool) { return matchLandmark(indicators, text) },
		Confidence: landmarkConfidence,
	})

	stopWords := make(map[string]bool, len(vocab.LocationStopWords))
	for _, w := range vocab.LocationStopWords {
		stopWords[w] = true
	}
	rules = append(rules, Rule[models.LocationResult]{
		Name: "explicit:in",
		Match: Pattern(explicitIn, func(m []string) (models.LocationResult, bool) {
			place := strings.TrimSpace(m[1])
			if stopWords[strings.ToLower(place)] || utf8.RuneCountInString(place) <= 2 {
				return models.LocationResult{}, false
			}
			return models.LocationResult{
				Kind:       models.LocationExplicit,
				Value:      place,
				Confidence: explicitConfidence,
			}, true
		}),
		Confidence: explicitConfidence,
	})

	rules = append(rules, Rule[models.LocationResult]{
		Name: "explicit:zip",
		Match: Pattern(zipCode, func(m []string) (models.LocationResult, bool) {
			return models.LocationResult{
				Kind:       models.LocationExplicit,
				Value:      m[0],
				Confidence: zipConfidence,
			}, true
		}),
		Confidence: zipConfidence,
	})

	return &LocationExtractor{rules: rules}
}

// Extract returns the highest-priority location found. When nothing
// matches, the result is relative with an empty value and zero confidence.
func (e *LocationExtractor) Extract(text string) models.LocationResult {
	if loc, _, ok := FirstMatch(e.rules, Normalize(text)); ok {
		return loc
	}
	return models.LocationResult{Kind: models.LocationRelative}
}

// matchLandmark tries each indicator in list order. For an indicator that
// occurs, the text after its first occurrence up to the next comma, period
// or semicolon is the candidate; an unusable candidate moves on to the next
// indicator.
func matchLandmark(indicators []string, text string) (models.LocationResult, bool) {
	for _, ind := range indicators {
		idx := strings.Index(text, ind)
		if idx < 0 {
			continue
		}
		after := strings.TrimSpace(text[idx+len(ind):])
		m := landmarkRun.FindStringSubmatch(after)
		if m == nil {
			continue
		}
		place := strings.TrimSpace(m[1])
		n := utf8.RuneCountInString(place)
		if n > 2 && n < maxLocationLen && hasLetter(place) {
			return models.LocationResult{
				Kind:       models.LocationLandmark,
				Value:      place,
				Confidence: landmarkConfidence,
			}, true
		}
	}
	return models.LocationResult{}, false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
