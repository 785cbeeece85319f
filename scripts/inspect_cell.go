// inspect_cell.go - Show what the normalization pipeline does to raw cell text
//
// Usage: go run scripts/inspect_cell.go <raw-text>...
//
// Example:
//   go run scripts/inspect_cell.go '&#1055;&#1088;&#1080;&#1074;&#1077;&#1090;' '<b>Hello &amp; welcome</b>' '42'

package main

import (
	"fmt"
	"os"

	"github.com/gridglot/gridglot/pkg/normalize"
	"github.com/gridglot/gridglot/pkg/translate"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/inspect_cell.go <raw-text>...")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  go run scripts/inspect_cell.go '&#1055;&#1088;&#1080;&#1074;&#1077;&#1090;' '<b>Hello &amp; welcome</b>' '42'")
		os.Exit(1)
	}

	for _, raw := range os.Args[1:] {
		res := normalize.Normalize(raw)

		fmt.Printf("raw:          %q\n", raw)
		fmt.Printf("cleaned:      %q\n", res.Cleaned)
		fmt.Printf("has_html:     %v\n", res.HasHTML)
		fmt.Printf("has_entities: %v\n", res.HasEntities)
		fmt.Printf("translatable: %v\n", normalize.IsTranslatable(res.Cleaned))
		fmt.Printf("language:     %s\n", translate.DetectLanguage(res.Cleaned))
		fmt.Println()
	}
}
