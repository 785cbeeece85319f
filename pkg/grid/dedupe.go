package grid

import "github.com/gridglot/gridglot/pkg/normalize"

// CollectUnique returns every distinct non-empty cleaned string in the
// grid, in first-occurrence row-major order. Two cells are the same entry
// when their trimmed cleaned text is equal; position plays no part.
//
// The returned order is deterministic for a given grid, which keeps batch
// boundaries and cache keys stable across runs.
func CollectUnique(g *Grid) []string {
	return collect(g, nil)
}

// CollectTranslatable is CollectUnique restricted to content worth sending
// to the translation service: pure numerals, one- and two-letter tokens and
// boolean literals are skipped.
func CollectTranslatable(g *Grid) []string {
	return collect(g, normalize.IsTranslatable)
}

func collect(g *Grid, keep func(string) bool) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, row := range g.Rows {
		for _, cell := range row {
			text := Fingerprint(cell)
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			if keep != nil && !keep(text) {
				continue
			}
			out = append(out, text)
		}
	}

	return out
}
