// Package quality runs a statistical pass over an ingested grid,
// interpreting each row as a question record: the main text in column 0,
// up to four answer variants in columns 1-4, and a paired 0/1 correctness
// code for each variant in columns 5-8. It needs no AI calls and is cheap
// enough to run on every ingest.
package quality

import (
	"fmt"
	"strings"

	"github.com/gridglot/gridglot/pkg/grid"
)

// Severity ranks how damaging an issue is to the dataset.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Issue kinds as they appear in reports.
const (
	KindEmptyContent      = "Empty Content"
	KindMissingVariants   = "Missing Variants"
	KindInvalidCode       = "Invalid Answer Code"
	KindNoCorrect         = "No Correct Answer"
	KindMultipleCorrect   = "Multiple Correct Answers"
	KindDuplicateVariants = "Duplicate Variants"
)

// Tier is the coarse verdict over the whole dataset.
type Tier string

const (
	TierGood Tier = "good"
	TierFair Tier = "fair"
	TierPoor Tier = "poor"
)

// maxIssues caps the per-record issue list; counting continues past it.
const maxIssues = 100

const (
	variantCount = 4
	variantStart = 1
	codeStart    = 5
)

// Issue describes one problem found in one record.
type Issue struct {
	Row      int      `json:"row"`
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Report aggregates the analysis of one grid.
type Report struct {
	Records           int `json:"records"`
	EmptyContent      int `json:"empty_content"`
	MissingVariants   int `json:"missing_variants"`
	InvalidCodes      int `json:"invalid_codes"`
	NoCorrectAnswer   int `json:"no_correct_answer"`
	MultipleCorrect   int `json:"multiple_correct"`
	DuplicateVariants int `json:"duplicate_variants"`

	Tier Tier `json:"tier"`

	// Issues holds at most maxIssues entries; TotalIssues keeps the full
	// count when the list is capped.
	Issues      []Issue `json:"issues"`
	TotalIssues int     `json:"total_issues"`
}

// Analyze walks every row of the grid and builds a quality report.
func Analyze(g *grid.Grid) *Report {
	rows, _ := g.Shape()
	r := &Report{Records: rows}

	recordsWithHigh := 0
	recordsWithAny := 0

	for row := 0; row < rows; row++ {
		issues := analyzeRecord(g, row)
		if len(issues) == 0 {
			continue
		}

		recordsWithAny++
		high := false
		for _, issue := range issues {
			r.count(issue)
			if issue.Severity == SeverityHigh {
				high = true
			}
		}
		if high {
			recordsWithHigh++
		}
	}

	r.Tier = tier(rows, recordsWithHigh, recordsWithAny)
	return r
}

// analyzeRecord checks one row against the record schema.
func analyzeRecord(g *grid.Grid, row int) []Issue {
	var issues []Issue

	content := strings.TrimSpace(g.At(row, 0).Display())
	if content == "" {
		issues = append(issues, Issue{
			Row:      row,
			Kind:     KindEmptyContent,
			Severity: SeverityHigh,
			Detail:   "main text is empty",
		})
	}

	type variant struct {
		pos  int
		text string
	}
	var variants []variant
	for i := 0; i < variantCount; i++ {
		if text := strings.TrimSpace(g.At(row, variantStart+i).Display()); text != "" {
			variants = append(variants, variant{pos: i, text: text})
		}
	}

	if len(variants) == 0 {
		issues = append(issues, Issue{
			Row:      row,
			Kind:     KindMissingVariants,
			Severity: SeverityMedium,
			Detail:   "no answer variants present",
		})
		// Code checks are meaningless without variants.
		return issues
	}

	seen := make(map[string]bool, len(variants))
	duplicates := 0
	for _, v := range variants {
		key := strings.ToLower(v.text)
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}
	if duplicates > 0 {
		issues = append(issues, Issue{
			Row:      row,
			Kind:     KindDuplicateVariants,
			Severity: SeverityMedium,
			Detail:   fmt.Sprintf("%d repeated answer variant(s)", duplicates),
		})
	}

	invalid := 0
	correct := 0
	for _, v := range variants {
		code := strings.TrimSpace(g.At(row, codeStart+v.pos).Display())
		switch code {
		case "", "0":
		case "1":
			correct++
		default:
			invalid++
		}
	}

	if invalid > 0 {
		issues = append(issues, Issue{
			Row:      row,
			Kind:     KindInvalidCode,
			Severity: SeverityHigh,
			Detail:   fmt.Sprintf("%d code(s) outside {0,1}", invalid),
		})
	}
	if correct == 0 {
		issues = append(issues, Issue{
			Row:      row,
			Kind:     KindNoCorrect,
			Severity: SeverityHigh,
			Detail:   "no variant is marked correct",
		})
	}
	if correct > 1 {
		issues = append(issues, Issue{
			Row:      row,
			Kind:     KindMultipleCorrect,
			Severity: SeverityHigh,
			Detail:   fmt.Sprintf("%d variants are marked correct", correct),
		})
	}

	return issues
}

// count folds one issue into the report totals.
func (r *Report) count(issue Issue) {
	switch issue.Kind {
	case KindEmptyContent:
		r.EmptyContent++
	case KindMissingVariants:
		r.MissingVariants++
	case KindInvalidCode:
		r.InvalidCodes++
	case KindNoCorrect:
		r.NoCorrectAnswer++
	case KindMultipleCorrect:
		r.MultipleCorrect++
	case KindDuplicateVariants:
		r.DuplicateVariants++
	}

	r.TotalIssues++
	if len(r.Issues) < maxIssues {
		r.Issues = append(r.Issues, issue)
	}
}

// tier maps issue density to a coarse verdict. A dataset is poor when
// more than 10% of records carry a high-severity issue, fair when any
// high-severity issue exists or more than a quarter of records have any
// issue at all, and good otherwise.
func tier(records, withHigh, withAny int) Tier {
	if records == 0 {
		return TierGood
	}
	if float64(withHigh) > float64(records)*0.10 {
		return TierPoor
	}
	if withHigh > 0 || float64(withAny) > float64(records)*0.25 {
		return TierFair
	}
	return TierGood
}

// String renders the report for terminal output.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dataset quality: %s\n", r.Tier)
	fmt.Fprintf(&b, "  %-28s %d\n", "Records:", r.Records)
	fmt.Fprintf(&b, "  %-28s %d\n", "Empty content:", r.EmptyContent)
	fmt.Fprintf(&b, "  %-28s %d\n", "Missing variants:", r.MissingVariants)
	fmt.Fprintf(&b, "  %-28s %d\n", "Invalid answer codes:", r.InvalidCodes)
	fmt.Fprintf(&b, "  %-28s %d\n", "No correct answer:", r.NoCorrectAnswer)
	fmt.Fprintf(&b, "  %-28s %d\n", "Multiple correct answers:", r.MultipleCorrect)
	fmt.Fprintf(&b, "  %-28s %d\n", "Duplicate variants:", r.DuplicateVariants)

	if r.TotalIssues == 0 {
		return b.String()
	}

	if r.TotalIssues > len(r.Issues) {
		fmt.Fprintf(&b, "Issues (first %d of %d):\n", len(r.Issues), r.TotalIssues)
	} else {
		fmt.Fprintf(&b, "Issues (%d):\n", r.TotalIssues)
	}
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "  [%s] row %d: %s: %s\n", issue.Severity, issue.Row+1, issue.Kind, issue.Detail)
	}

	return b.String()
}
