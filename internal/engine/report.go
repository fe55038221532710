package engine

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/rsrepair/internal/model"
)

func init() {
	plurals := map[string][2]string{
		"%d documents": {"%[1]d document", "%[1]d documents"},
		"%d ranges":    {"%[1]d range", "%[1]d ranges"},
	}
	for key, forms := range plurals {
		err := message.Set(language.English, key,
			plural.Selectf(1, "%d",
				"=1", forms[0],
				"other", forms[1],
			))
		if err != nil {
			panic(err)
		}
	}
}

// Outcome kinds reported per document.
const (
	OutcomeDeleted    = "deleted"
	OutcomeReplaced   = "replaced"
	OutcomeUnresolved = "unresolved"
)

// Outcome is what happened, or in a dry run would have happened, to one
// document.
type Outcome struct {
	Namespace model.Namespace `json:"namespace"`
	ID        model.ID        `json:"id"`
	Outcome   string          `json:"outcome"`

	// Agreeing is the number of nodes that already match the outcome: the
	// nodes missing the document for a delete, the nodes holding the chosen
	// version for a replace. Zero when unresolved.
	Agreeing int  `json:"agreeing"`
	Total    int  `json:"total"`
	DryRun   bool `json:"dry_run"`
}

// Reporter receives per-document outcomes. Reports are emitted when the run
// is verbose or a dry run.
type Reporter interface {
	Report(o Outcome) error
}

// TextReporter writes one human-readable line per outcome.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// Report implements Reporter.
func (r *TextReporter) Report(o Outcome) error {
	_, err := fmt.Fprintln(r.w, FormatOutcome(o))
	return err
}

// FormatOutcome renders o as a report line, for example:
//
//	Document in 'shop.orders' with _id 7 was replaced with a version present on 3/5 nodes (dry run)
func FormatOutcome(o Outcome) string {
	line := fmt.Sprintf("Document in '%s' with _id %s ", o.Namespace, o.ID)
	switch o.Outcome {
	case OutcomeDeleted:
		line += fmt.Sprintf("was deleted (missing on %d/%d nodes)", o.Agreeing, o.Total)
	case OutcomeReplaced:
		line += fmt.Sprintf("was replaced with a version present on %d/%d nodes", o.Agreeing, o.Total)
	default:
		line += "was not resolved"
	}
	if o.DryRun {
		line += " (dry run)"
	}
	return line
}

// JSONReporter writes one JSON object per line per outcome.
type JSONReporter struct {
	enc *json.Encoder
}

// NewJSONReporter creates a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONReporter{enc: enc}
}

// Report implements Reporter.
func (r *JSONReporter) Report(o Outcome) error {
	return r.enc.Encode(o)
}

// Summary counts what a run did.
type Summary struct {
	RunID        string `json:"run_id"`
	DryRun       bool   `json:"dry_run"`
	Ranges       int    `json:"ranges"`
	Processed    int    `json:"processed"`
	Deleted      int    `json:"deleted"`
	Replaced     int    `json:"replaced"`
	Unresolved   int    `json:"unresolved"`
	AlreadyFixed int    `json:"already_fixed"`
}

func (s Summary) String() string {
	p := message.NewPrinter(language.English)
	line := p.Sprintf("%d documents", s.Processed) + " processed in " + p.Sprintf("%d ranges", s.Ranges) +
		fmt.Sprintf(": %d deleted, %d replaced, %d unresolved, %d already fixed",
			s.Deleted, s.Replaced, s.Unresolved, s.AlreadyFixed)
	if s.DryRun {
		line += " (dry run)"
	}
	return line
}

func (s *Summary) count(o Outcome) {
	s.Processed++
	switch o.Outcome {
	case OutcomeDeleted:
		s.Deleted++
	case OutcomeReplaced:
		s.Replaced++
	default:
		s.Unresolved++
	}
}
