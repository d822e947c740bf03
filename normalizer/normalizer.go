// Package normalizer maps raw free-text parameter values to canonical
// display values. Facet sets stay keyed by the slug of the RAW value, so
// extending the tables below never invalidates existing keys.
package normalizer

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"catalog-engine/domain"
)

// colorSynonyms maps slugged raw color values to canonical display
// values, per dimension rule 1. Keys are domain.Slug form.
var colorSynonyms = map[string]string{
	"red":        "Red",
	"blue":       "Blue",
	"navy":       "Dark Blue",
	"dark_blue":  "Dark Blue",
	"light_blue": "Light Blue",
	"green":      "Green",
	"black":      "Black",
	"white":      "White",
	"grey":       "Grey",
	"gray":       "Grey",
	"chornyi":    "Black",
	"bilyi":      "White",
	"chervonyi":  "Red",
	"synii":      "Blue",
	"zelenyi":    "Green",
	"siryi":      "Grey",
}

// colorDimensions names the dimension slugs the color table applies to,
// in both the Latin and the transliterated Ukrainian feed spelling.
var colorDimensions = map[string]bool{
	"color":  true,
	"colour": true,
	"kolir":  true,
}

// materialSynonyms maps slugged material tokens in composition values to
// canonical material names.
var materialSynonyms = map[string]string{
	"cotton":    "Cotton",
	"polyester": "Polyester",
	"wool":      "Wool",
	"elastane":  "Elastane",
	"spandex":   "Elastane",
	"viscose":   "Viscose",
	"linen":     "Linen",
	"silk":      "Silk",
	"bavovna":   "Cotton",
	"poliester": "Polyester",
	"vovna":     "Wool",
	"elastan":   "Elastane",
	"viskoza":   "Viscose",
	"lon":       "Linen",
	"shovk":     "Silk",
}

// genericReplacements applies to any dimension when neither the color
// table nor the composition pattern matched.
var genericReplacements = map[string]string{
	"yes": "Yes",
	"no":  "No",
	"tak": "Yes",
	"ni":  "No",
	"xs":  "XS",
	"s":   "S",
	"m":   "M",
	"l":   "L",
	"xl":  "XL",
	"xxl": "XXL",
}

// compositionPair matches one "<percent> <material>" token of a material
// composition value, with optional percent sign and separators.
var compositionPair = regexp.MustCompile(`(\d{1,3})\s*%?\s*([\p{L}]+)`)

// Normalizer applies the rule table in fixed order and reports raw
// values no rule could map, so the tables can be extended over time.
type Normalizer struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}
	return &Normalizer{log: log}
}

// Normalize maps a raw parameter value to its canonical display value and
// the slug the facet set is keyed by. The slug is always derived from the
// raw value, never the canonical one. Pure and deterministic.
func (n *Normalizer) Normalize(dimension, raw string) (string, string) {
	valueSlug := domain.Slug(raw)

	// Rule 1: dimension-specific synonym table.
	if colorDimensions[dimension] {
		if canonical, ok := colorSynonyms[valueSlug]; ok {
			return canonical, valueSlug
		}
	}

	// Rule 2: material composition pattern.
	if canonical, ok := normalizeComposition(raw); ok {
		return canonical, valueSlug
	}

	// Rule 3: generic replacement table.
	if canonical, ok := genericReplacements[valueSlug]; ok {
		return canonical, valueSlug
	}

	// Rule 4: default normalization.
	n.log.Warn("unmapped parameter value", "dimension", dimension, "value", raw)
	return titleCase(valueSlug), valueSlug
}

// normalizeComposition rewrites "<percent> <material>" sequences as
// "{percent}% {Material}, ...". The whole value must consist of such
// pairs summing within a plausible range; otherwise it is not a
// composition.
func normalizeComposition(raw string) (string, bool) {
	matches := compositionPair.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return "", false
	}

	// Anything beyond the matched pairs means the value is ordinary text
	// with numbers in it, not a composition.
	stripped := compositionPair.ReplaceAllString(raw, "")
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return "", false
		}
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		material, ok := materialSynonyms[domain.Slug(m[2])]
		if !ok {
			material = capitalize(m[2])
		}
		parts = append(parts, m[1]+"% "+material)
	}
	return strings.Join(parts, ", "), true
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func titleCase(slug string) string {
	words := strings.Split(slug, "_")
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}
