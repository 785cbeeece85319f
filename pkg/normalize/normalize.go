// Package normalize converts raw spreadsheet cell text into clean display
// text. Cell content arriving from exported workbooks is frequently laced
// with numeric character references (&#1057;), named HTML entities (&amp;)
// and embedded markup (<b>...</b>); Normalize decodes and strips these in a
// fixed order and reports what it found.
//
// Decoding runs before tag stripping: entity-decoding can reveal tags
// (&lt;b&gt; becomes <b>) and those must be stripped too.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gridglot/gridglot/internal/logger"
)

// Result holds the normalized text and the content-type flags detected on
// the raw input. Flags are computed on the original string, so a cell that
// contained HTML but decodes to plain text still reports HasHTML.
type Result struct {
	Cleaned     string `json:"cleaned"`
	HasHTML     bool   `json:"has_html"`
	HasEntities bool   `json:"has_entities"`
}

var (
	// Numeric character references: decimal (&#1057;) or hex (&#x41F;).
	// The payload class is deliberately loose so malformed references
	// (&#xyz;) are still recognized and reported, not silently skipped.
	reNumericRef = regexp.MustCompile(`&#([xX]?)([0-9a-zA-Z]+);`)

	reTag        = regexp.MustCompile(`<[^>]*>`)
	reEntity     = regexp.MustCompile(`&#?[0-9a-zA-Z]+;`)
	reWhitespace = regexp.MustCompile(`\s+`)

	// Pure numerals, optionally signed, with one decimal separator.
	reNumeral = regexp.MustCompile(`^[+-]?[0-9]+([.,][0-9]+)?$`)

	entityReplacer = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&nbsp;", " ",
		"&amp;", "&",
	)
)

// Normalize converts raw cell text into clean display text.
//
// Steps, in order: decode numeric character references, decode the fixed
// named-entity set, strip remaining tag-like substrings, collapse whitespace
// runs to single spaces and trim. Malformed numeric references pass through
// unchanged (logged as a warning), never fail the call.
func Normalize(raw string) Result {
	res := Result{
		HasHTML:     reTag.MatchString(raw),
		HasEntities: reEntity.MatchString(raw),
	}

	s := decodeNumericRefs(raw)
	s = entityReplacer.Replace(s)
	s = reTag.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	res.Cleaned = strings.TrimSpace(s)

	return res
}

// decodeNumericRefs replaces every well-formed numeric character reference
// with its code point. References with a non-numeric payload or an invalid
// code point (surrogates, beyond U+10FFFF) are left in place.
func decodeNumericRefs(s string) string {
	if !strings.Contains(s, "&#") {
		return s
	}
	return reNumericRef.ReplaceAllStringFunc(s, func(ref string) string {
		groups := reNumericRef.FindStringSubmatch(ref)
		base := 10
		if groups[1] != "" {
			base = 16
		}
		n, err := strconv.ParseUint(groups[2], base, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			logger.Warn("malformed character reference left undecoded", "ref", ref)
			return ref
		}
		return string(rune(n))
	})
}

// IsTranslatable reports whether cleaned cell content is worth sending to
// the translation service. Blank strings, pure numerals, one- and two-letter
// tokens, and boolean literals are passed through untranslated.
func IsTranslatable(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if reNumeral.MatchString(t) {
		return false
	}
	switch strings.ToLower(t) {
	case "true", "false":
		return false
	}
	if utf8.RuneCountInString(t) <= 2 && lettersOnly(t) {
		return false
	}
	return true
}

func lettersOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
