package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple word", input: "Red", want: "red"},
		{name: "spaces become underscores", input: "Dark Blue", want: "dark_blue"},
		{name: "punctuation collapses", input: "80% Cotton, 20% Polyester", want: "80_cotton_20_polyester"},
		{name: "already slugged", input: "dark_blue", want: "dark_blue"},
		{name: "leading and trailing junk", input: "  --Red--  ", want: "red"},
		{name: "cyrillic transliterated", input: "Бавовна", want: "bavovna"},
		{name: "cyrillic parameter name", input: "Колір", want: "kolir"},
		{name: "cyrillic brand param", input: "Бренд", want: "brend"},
		{name: "soft sign dropped", input: "Льон", want: "lon"},
		{name: "mixed scripts", input: "Розмір XL", want: "rozmir_xl"},
		{name: "empty", input: "", want: ""},
		{name: "only punctuation", input: "---", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.input))
		})
	}
}

func TestSlugIdempotent(t *testing.T) {
	inputs := []string{"Dark Blue", "80% Cotton, 20% Polyester", "Acme Inc.", "Колір", "Червоний"}
	for _, in := range inputs {
		once := Slug(in)
		assert.Equal(t, once, Slug(once), "slugging must be idempotent for %q", in)
	}
}

func TestSlugProducesValidDimensions(t *testing.T) {
	// Parameter dimensions are derived from feed param names, which this
	// catalog's feeds write in Ukrainian. The derived slug must pass
	// boundary validation or the dimension could never be filtered on.
	for _, name := range []string{"Колір", "Матеріал", "Розмір", "Color", "Основний склад"} {
		dim := Slug(name)
		err := ValidateSelection(FilterSelection{dim: {"x"}})
		assert.NoError(t, err, "dimension %q from param %q must validate", dim, name)
	}
}

func TestCategorySlug(t *testing.T) {
	assert.Equal(t, "phones-2", CategorySlug("Phones", "2"))
	// Same name, different external ids must not collide.
	assert.NotEqual(t, CategorySlug("Phones", "2"), CategorySlug("Phones", "17"))
}
