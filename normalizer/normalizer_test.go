package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog-engine/domain"
)

func TestNormalizeColorSynonyms(t *testing.T) {
	n := New(nil)

	tests := []struct {
		raw           string
		wantCanonical string
		wantSlug      string
	}{
		{"navy", "Dark Blue", "navy"},
		{"Dark Blue", "Dark Blue", "dark_blue"},
		{"RED", "Red", "red"},
		{"чорний", "Black", "chornyi"},
	}

	for _, tt := range tests {
		canonical, slug := n.Normalize("color", tt.raw)
		assert.Equal(t, tt.wantCanonical, canonical, "raw %q", tt.raw)
		assert.Equal(t, tt.wantSlug, slug, "raw %q", tt.raw)
	}
}

func TestNormalizeCyrillicColorDimension(t *testing.T) {
	n := New(nil)

	// A Ukrainian feed names the dimension Колір, which slugs to kolir;
	// the color table must apply there just like for color.
	canonical, slug := n.Normalize("kolir", "Червоний")
	assert.Equal(t, "Red", canonical)
	assert.Equal(t, "chervonyi", slug)
}

func TestNormalizeComposition(t *testing.T) {
	n := New(nil)

	tests := []struct {
		raw           string
		wantCanonical string
	}{
		{"80 cotton 20 polyester", "80% Cotton, 20% Polyester"},
		{"80% Cotton, 20% Polyester", "80% Cotton, 20% Polyester"},
		{"80% бавовна, 20% поліестер", "80% Cotton, 20% Polyester"},
		{"100 wool", "100% Wool"},
		// Unmapped material falls back to capitalization.
		{"95 bamboo 5 elastane", "95% Bamboo, 5% Elastane"},
	}

	for _, tt := range tests {
		canonical, slug := n.Normalize("material", tt.raw)
		assert.Equal(t, tt.wantCanonical, canonical, "raw %q", tt.raw)
		// Slug tracks the raw value, not the canonical rendering.
		assert.Equal(t, domain.Slug(tt.raw), slug, "raw %q", tt.raw)
	}
}

func TestNormalizeNotAComposition(t *testing.T) {
	n := New(nil)

	// Plain text with digits in it must not be mistaken for a
	// composition value.
	canonical, slug := n.Normalize("model", "iPhone 15 Pro")
	assert.Equal(t, "Iphone 15 Pro", canonical)
	assert.Equal(t, "iphone_15_pro", slug)
}

func TestNormalizeGenericReplacements(t *testing.T) {
	n := New(nil)

	canonical, slug := n.Normalize("size", "xl")
	assert.Equal(t, "XL", canonical)
	assert.Equal(t, "xl", slug)

	canonical, slug = n.Normalize("waterproof", "так")
	assert.Equal(t, "Yes", canonical)
	assert.Equal(t, "tak", slug)
}

func TestNormalizeDefaultTitleCase(t *testing.T) {
	n := New(nil)

	canonical, slug := n.Normalize("pattern", "polka_dots")
	assert.Equal(t, "Polka Dots", canonical)
	assert.Equal(t, "polka_dots", slug)
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New(nil)

	for _, raw := range []string{"navy", "80 cotton 20 polyester", "polka_dots", "Dark Blue"} {
		c1, s1 := n.Normalize("color", raw)
		c2, s2 := n.Normalize("color", raw)
		assert.Equal(t, c1, c2, "canonical must be deterministic for %q", raw)
		assert.Equal(t, s1, s2, "slug must be deterministic for %q", raw)
	}
}
