package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_SynonymsResolveToCanonicalCategories(t *testing.T) {
	v := Default()

	for _, s := range v.Synonyms {
		assert.True(t, v.IsCategory(s.Canonical), "synonym %q maps to unknown category %q", s.Phrase, s.Canonical)
	}
}

func TestDefault_InstancesAreIndependent(t *testing.T) {
	a := Default()
	b := Default()

	a.Categories[0] = "changed"
	a.AmbiguousPlaces = append(a.AmbiguousPlaces, "dublin")

	assert.Equal(t, "restaurant", b.Categories[0])
	assert.NotContains(t, b.AmbiguousPlaces, "dublin")
}

func TestDefault_RefinementAttributesExtendBaseList(t *testing.T) {
	v := Default()

	assert.Contains(t, v.RefinementAttributes, "valet parking")
	assert.Contains(t, v.RefinementAttributes, "take-out")
	assert.NotContains(t, v.Attributes, "family friendly")
}
