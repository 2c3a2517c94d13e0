package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (r *ValidationResult) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Field + ": " + e.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// MustCompile compiles src or panics; schemas are package-level literals.
func MustCompile(name, src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("validation: compile schema %s: %v", name, err))
	}
	return &Schema{name: name, schema: s}
}

// Validate checks doc, any value that encodes to JSON, against the schema.
func (s *Schema) Validate(doc interface{}) *ValidationResult {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "UNREADABLE_DOCUMENT",
		}}}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	out := &ValidationResult{}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	return out
}

var filterStateSchema = MustCompile("filterState", `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"minRating":         {"type": "number", "minimum": 0, "maximum": 5},
		"maxPriceLevel":     {"type": "integer", "minimum": 1, "maximum": 4},
		"openNow":           {"type": "boolean"},
		"maxDistanceMeters": {"type": "number", "exclusiveMinimum": 0},
		"attributes":        {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": false
}`)

// ValidateFilterState rejects filter values outside their documented
// ranges. Values are never clamped.
func ValidateFilterState(fs models.FilterState) error {
	result := filterStateSchema.Validate(fs)
	if result.Valid {
		return nil
	}
	return errors.NewInvalidFilterError(result)
}
