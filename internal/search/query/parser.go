// internal/search/query/parser.go
package query

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	commonerrors "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/metrics"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/extract"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

// recordThreshold is the location confidence above which a parsed location
// is remembered for pronoun resolution.
const recordThreshold = 0.6

var tracer = otel.Tracer("search.query")

// LocationContext remembers the locations a session has mentioned, most
// recent first.
type LocationContext interface {
	Recent(ctx context.Context, sessionID string) ([]string, error)
	Record(ctx context.Context, sessionID, location string) error
}

type Config struct {
	MaxQueryLength int
	Retry          RetryConfig
}

type Parser struct {
	validator *Validator
	category  *extract.CategoryExtractor
	location  *extract.LocationExtractor
	filters   *extract.FilterExtractor

	contexts       LocationContext
	pronounPhrases []string
	pronouns       *regexp.Regexp

	retry  RetryConfig
	logger logger.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewParser wires the extractors over vocab. contexts may be nil, in which
// case pronoun resolution and location recording are skipped.
func NewParser(vocab *vocabulary.Vocabulary, contexts LocationContext, cfg Config, log logger.Logger) *Parser {
	quoted := make([]string, 0, len(vocab.PronounPhrases))
	for _, p := range vocab.PronounPhrases {
		quoted = append(quoted, regexp.QuoteMeta(p))
	}

	return &Parser{
		validator:      NewValidator(cfg.MaxQueryLength),
		category:       extract.NewCategoryExtractor(vocab),
		location:       extract.NewLocationExtractor(vocab),
		filters:        extract.NewFilterExtractor(vocab),
		contexts:       contexts,
		pronounPhrases: append([]string(nil), vocab.PronounPhrases...),
		pronouns:       regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
		retry:          cfg.Retry.withDefaults(),
		logger:         log.WithFields(map[string]interface{}{"component": "query-parser"}),
		now:            time.Now,
		sleep:          sleepContext,
	}
}

// Parse validates text, resolves demonstratives against the session's
// location history and runs the extractors. Validation failures wrap
// ErrEmptyQuery, ErrQueryTooLong or ErrMalformedQuery. A failing location
// context surfaces as a retryable CONTEXT_UNAVAILABLE error.
func (p *Parser) Parse(ctx context.Context, text, sessionID string) (*models.QueryParseResult, error) {
	ctx, span := tracer.Start(ctx, "query.Parse")
	defer span.End()
	span.SetAttributes(attribute.Bool("session", sessionID != ""), attribute.Int("length", len(text)))

	start := time.Now()
	defer func() { metrics.QueryParseDuration.Observe(time.Since(start).Seconds()) }()

	if err := p.validator.Validate(text); err != nil {
		metrics.QueriesParsed.WithLabelValues("invalid").Inc()
		metrics.QueryValidationFailures.WithLabelValues(validationCode(err)).Inc()
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	effective := Sanitize(text)

	if sessionID != "" && p.contexts != nil && p.mentionsPronoun(effective) {
		recent, err := p.contexts.Recent(ctx, sessionID)
		if err != nil {
			span.RecordError(err)
			return nil, commonerrors.NewContextUnavailableError(err)
		}
		if len(recent) > 0 {
			effective = p.pronouns.ReplaceAllLiteralString(effective, recent[0])
			span.SetAttributes(attribute.Bool("pronoun_resolved", true))
		}
	}

	category := p.category.Extract(effective)
	location := p.location.Extract(effective)
	filters := p.filters.Extract(effective)

	scores := []float64{category.Confidence, location.Confidence}
	if filters.Confidence > 0 {
		scores = append(scores, filters.Confidence)
	}

	if sessionID != "" && p.contexts != nil && location.Found() && location.Confidence > recordThreshold {
		if err := p.contexts.Record(ctx, sessionID, location.Value); err != nil {
			span.RecordError(err)
			return nil, commonerrors.NewContextUnavailableError(err)
		}
	}

	result := &models.QueryParseResult{
		Category: category,
		Location: location,
		Filters:  filters.Filters,
		Metadata: models.ParseMetadata{
			OriginalQuery: text,
			Timestamp:     p.now(),
			SessionID:     sessionID,
		},
		Confidence: extract.MeanConfidence(scores),
	}

	metrics.QueriesParsed.WithLabelValues("parsed").Inc()
	span.SetAttributes(
		attribute.StringSlice("categories", category.Categories),
		attribute.String("location_kind", string(location.Kind)),
		attribute.Float64("confidence", result.Confidence),
	)
	return result, nil
}

func (p *Parser) MaxQueryLength() int {
	return p.validator.MaxLength()
}

func (p *Parser) mentionsPronoun(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range p.pronounPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ToStandardError maps a parse error onto the shared taxonomy.
func ToStandardError(err error, maxLength int) *commonerrors.StandardError {
	switch {
	case errors.Is(err, ErrEmptyQuery):
		return commonerrors.NewEmptyQueryError()
	case errors.Is(err, ErrQueryTooLong):
		return commonerrors.NewQueryTooLongError(maxLength)
	case errors.Is(err, ErrMalformedQuery):
		return commonerrors.NewMalformedQueryError()
	default:
		return commonerrors.Normalize(err)
	}
}

func validationCode(err error) string {
	switch {
	case errors.Is(err, ErrEmptyQuery):
		return string(commonerrors.ErrCodeEmptyQuery)
	case errors.Is(err, ErrQueryTooLong):
		return string(commonerrors.ErrCodeQueryTooLong)
	default:
		return string(commonerrors.ErrCodeMalformedQuery)
	}
}
