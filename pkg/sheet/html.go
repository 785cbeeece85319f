package sheet

import (
	"bytes"
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// parseHTML extracts the first table element. Cell text is taken after the
// HTML parser has done its own entity decoding; what remains is whatever
// was double-encoded inside the document, which is exactly the content
// normalization exists for.
func parseHTML(data []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("no table element found")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cell.Text())
		})
		rows = append(rows, row)
	})

	return rows, nil
}
