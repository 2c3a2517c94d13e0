// internal/search/ambiguity/detector.go
package ambiguity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/metrics"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

const DefaultThreshold = 0.6

const (
	categoryQuestion = "What type of business are you looking for? (e.g., restaurants, coffee shops, gyms)"
	locationQuestion = "Where would you like to search? (e.g., Seattle, downtown, near me)"
	placeQuestion    = `I found "%s" - which state or area did you mean?`
	confirmQuestion  = `Did you mean to search in "%s"?`

	// maxAmbiguousWords bounds how long a place value may be and still be
	// considered missing a state or region qualifier.
	maxAmbiguousWords = 2
)

var fiveDigits = regexp.MustCompile(`\d{5}`)

type Detector struct {
	threshold float64
	places    []string
}

func NewDetector(vocab *vocabulary.Vocabulary, threshold float64) *Detector {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Detector{
		threshold: threshold,
		places:    append([]string(nil), vocab.AmbiguousPlaces...),
	}
}

func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect returns the first ambiguity found in precedence order, or nil when
// the parse can be acted on as is.
func (d *Detector) Detect(result *models.QueryParseResult) *models.AmbiguityDetection {
	found := d.detect(result)
	if found != nil {
		metrics.AmbiguitiesDetected.WithLabelValues(string(found.Field)).Inc()
	}
	return found
}

func (d *Detector) detect(result *models.QueryParseResult) *models.AmbiguityDetection {
	if result.Category.IsFallback() && result.Confidence < d.threshold {
		return &models.AmbiguityDetection{
			Field:              models.AmbiguousBusinessType,
			Candidates:         append([]string{}, result.Category.Categories...),
			ClarifyingQuestion: categoryQuestion,
			Confidence:         result.Confidence,
		}
	}

	loc := result.Location
	value := strings.TrimSpace(loc.Value)
	if value == "" {
		return &models.AmbiguityDetection{
			Field:              models.AmbiguousLocation,
			Candidates:         []string{},
			ClarifyingQuestion: locationQuestion,
			Confidence:         0,
		}
	}

	if d.isAmbiguousPlace(loc.Value) {
		return &models.AmbiguityDetection{
			Field:              models.AmbiguousLocation,
			Candidates:         []string{loc.Value},
			ClarifyingQuestion: fmt.Sprintf(placeQuestion, loc.Value),
			Confidence:         loc.Confidence,
		}
	}

	if loc.Confidence < d.threshold {
		return &models.AmbiguityDetection{
			Field:              models.AmbiguousLocation,
			Candidates:         []string{loc.Value},
			ClarifyingQuestion: fmt.Sprintf(confirmQuestion, loc.Value),
			Confidence:         loc.Confidence,
		}
	}

	return nil
}

func (d *Detector) isAmbiguousPlace(value string) bool {
	lower := strings.ToLower(value)
	named := false
	for _, place := range d.places {
		if strings.Contains(lower, place) {
			named = true
			break
		}
	}
	if !named {
		return false
	}
	return len(strings.Fields(value)) <= maxAmbiguousWords && !fiveDigits.MatchString(value)
}
