package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(DefaultMaxQueryLength)

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", ErrEmptyQuery},
		{"whitespace only", "   \t\n", ErrEmptyQuery},
		{"too long", strings.Repeat("a", 501), ErrQueryTooLong},
		{"digits only", "12345", ErrMalformedQuery},
		{"symbols only", "!!!!!!", ErrMalformedQuery},
		{"eleven repeats", "coffee " + strings.Repeat("z", 11), ErrMalformedQuery},
		{"exactly the limit", strings.Repeat("ab ", 166) + "ab", nil},
		{"ten repeats allowed", "coffee " + strings.Repeat("z", 10), nil},
		{"normal query", "coffee shops near me", nil},
		{"multibyte within limit", strings.Repeat("éa", 250), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.text)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidator_EmptyCheckedBeforeLength(t *testing.T) {
	v := NewValidator(5)

	assert.ErrorIs(t, v.Validate(strings.Repeat(" ", 20)), ErrEmptyQuery)
	assert.ErrorIs(t, v.Validate("coffee shops"), ErrQueryTooLong)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<b>coffee</b> near me", "coffee near me"},
		{"pizza <script>alert(1)</script> downtown", "pizza alert(1) downtown"},
		{"a > b < c", "a b c"},
		{"  lots   of\n\tspace  ", "lots of space"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in))
	}
}
