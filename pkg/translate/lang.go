package translate

import (
	wlg "github.com/abadojack/whatlanggo"
)

// DetectLanguage returns the ISO-639-1 code of the text's language, or
// "und" when detection is not reliable enough to act on. Short spreadsheet
// cells are frequently unreliable, so callers treat "und" as unknown
// rather than a match.
func DetectLanguage(text string) string {
	if len(text) == 0 {
		return "und"
	}
	info := wlg.Detect(text)
	if !info.IsReliable() {
		return "und"
	}
	iso6391 := info.Lang.Iso6391()
	if iso6391 == "" {
		return "und"
	}
	return iso6391
}
