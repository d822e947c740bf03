package domain

import (
	"strings"
	"unicode"
)

// translit folds Cyrillic letters into Latin sequences, following the
// Ukrainian national transliteration. Keys are lowercase; Slug lowers
// its input before the lookup. Soft and hard signs carry no sound and
// are simply dropped by the letter fallthrough in Slug.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "h", 'ґ': "g",
	'д': "d", 'е': "e", 'є': "ie", 'ж': "zh", 'з': "z",
	'и': "y", 'і': "i", 'ї': "i", 'й': "i", 'к': "k",
	'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p",
	'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f",
	'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ю': "iu", 'я': "ia",
	'ё': "e", 'ы': "y", 'э': "e",
}

// Slug converts a raw value into the canonical set-key form: lowercased,
// Cyrillic transliterated to Latin, with every run of non-letter,
// non-digit characters collapsed into a single underscore. Letters with
// no Latin mapping are dropped so keys stay ASCII. The function is pure
// and idempotent, so facet set keys stay stable no matter how often a
// value is re-imported.
func Slug(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastUnderscore := true // suppress a leading underscore
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastUnderscore = false
		case translit[r] != "":
			b.WriteString(translit[r])
			lastUnderscore = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// unmappable letter, dropped
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}

// CategorySlug builds the slug for a category. The external id is appended
// so two categories with the same name under different parents never
// collide on slug.
func CategorySlug(name, externalID string) string {
	return Slug(name) + "-" + externalID
}
