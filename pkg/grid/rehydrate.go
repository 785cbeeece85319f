package grid

import "github.com/gridglot/gridglot/pkg/normalize"

// Apply merges translations back into the grid and returns a new grid of
// identical shape; the input is never mutated.
//
// A cell is rewritten when its trimmed cleaned text is a key in
// translations: both Original and Cleaned take the translated value, so a
// later export sees only the translation. Cells with no matching key, and
// cells that normalized to nothing, are copied through unchanged.
//
// Translations are normalized on the way in. Models occasionally echo
// entity-encoded text back, and the grid invariant is that Cleaned is
// always the normalized form of Original.
func Apply(g *Grid, translations map[string]string) *Grid {
	out := g.Clone()
	if len(translations) == 0 {
		return out
	}

	for i, row := range out.Rows {
		for j, cell := range row {
			key := Fingerprint(cell)
			if key == "" {
				continue
			}
			translated, ok := translations[key]
			if !ok {
				continue
			}
			res := normalize.Normalize(translated)
			out.Rows[i][j] = Cell{
				Original:    translated,
				Cleaned:     res.Cleaned,
				HasHTML:     res.HasHTML,
				HasEntities: res.HasEntities,
			}
		}
	}

	return out
}
