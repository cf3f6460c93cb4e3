// Package report renders the outcome of a correction run as a
// character-level diff, for the CLI's diff view and for audit storage.
package report

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/wudi/ocrkit/correct"
)

// ChangeType classifies a span of the diff between original and corrected
// text.
type ChangeType string

const (
	ChangeEqual  ChangeType = "equal"
	ChangeInsert ChangeType = "insert"
	ChangeDelete ChangeType = "delete"
)

// Change is one contiguous span of the diff.
type Change struct {
	Type ChangeType `json:"type"`
	Text string     `json:"text"`
}

// Report describes how the corrected text differs from the original.
// Concatenating the Text of equal+delete spans reproduces the original;
// equal+insert spans reproduce the corrected text.
type Report struct {
	Changes  []Change      `json:"changes"`
	Inserted int           `json:"inserted_chars"`
	Deleted  int           `json:"deleted_chars"`
	Stats    correct.Stats `json:"stats"`
}

// Build diffs original against corrected and summarizes the correction
// records per method.
func Build(original, corrected string, records []correct.Record) *Report {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(original, corrected, false))

	r := &Report{
		Changes: make([]Change, 0, len(diffs)),
		Stats:   correct.Summarize(&correct.Result{Corrections: records}),
	}
	for _, d := range diffs {
		change := Change{Text: d.Text}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			change.Type = ChangeInsert
			r.Inserted += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			change.Type = ChangeDelete
			r.Deleted += utf8.RuneCountInString(d.Text)
		default:
			change.Type = ChangeEqual
		}
		r.Changes = append(r.Changes, change)
	}
	return r
}

// PrettyDiff returns a terminal-colored inline diff of the two texts.
func PrettyDiff(original, corrected string) string {
	dmp := diffmatchpatch.New()
	return dmp.DiffPrettyText(dmp.DiffCleanupSemantic(dmp.DiffMain(original, corrected, false)))
}
