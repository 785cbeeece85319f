package sheet

import (
	"bytes"
	"encoding/csv"
)

// parseCSV reads delimited text with a sniffed separator. Rows may have
// differing field counts and quoting is lax; materialization squares
// everything off afterwards.
func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return r.ReadAll()
}

// detectDelimiter picks whichever of comma, semicolon or tab occurs most
// in the first line. Comma wins ties.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best := ','
	bestCount := bytes.Count(line, []byte{','})
	for _, cand := range []byte{';', '\t'} {
		if n := bytes.Count(line, []byte{cand}); n > bestCount {
			best = rune(cand)
			bestCount = n
		}
	}
	return best
}
