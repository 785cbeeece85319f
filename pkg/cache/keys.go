package cache

import (
	"hash/fnv"
	"strconv"
)

// Fingerprint returns a compact content key: the FNV-1a hash of the text
// joined with its byte length. Stable across runs, so it can key the
// persistent translation store.
func Fingerprint(s string) string {
	h := fnv.New64a()
	h.Write([]byte(s))
	return strconv.FormatUint(h.Sum64(), 16) + ":" + strconv.Itoa(len(s))
}

// TranslationKey keys a translation by target language plus content
// fingerprint. The NUL separator keeps language codes from colliding with
// fingerprint text.
func TranslationKey(content, lang string) string {
	return lang + "\x00" + Fingerprint(content)
}
