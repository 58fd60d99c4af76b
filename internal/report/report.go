// Package report assembles the per-pair record out of the similarity score
// and the flaw reports of both submissions.
package report

import (
	"errors"
	"sort"

	"regrade/internal/checker"
	"regrade/internal/flaw"
	"regrade/internal/region"
	"regrade/internal/similarity"
)

// NotComparable is shown instead of a ratio for a degenerate pair.
const NotComparable = "not comparable"

// Comparison is built once per comparable pair and never mutated.
type Comparison struct {
	EditDistance int         `json:"edit_distance" msgpack:"edit_distance"`
	Ratio        float64     `json:"ratio" msgpack:"ratio"`
	Old          flaw.Report `json:"-" msgpack:"old"`
	New          flaw.Report `json:"-" msgpack:"new"`
}

// Side is one submission of a pair after extraction and checking.
type Side struct {
	Path     string
	Region   region.Result
	Lint     checker.Outcome
	DeadCode checker.Outcome
}

func (s Side) flawInput() flaw.Input {
	return flaw.Input{
		Lines:    s.Region.Lines,
		Region:   s.Region,
		Lint:     s.Lint,
		DeadCode: s.DeadCode,
	}
}

// Flaws runs the rule table over a single submission.
func (s Side) Flaws() flaw.Report {
	return flaw.Detect(s.flawInput())
}

// Input is everything Assemble needs for one pair.
type Input struct {
	Question    string
	Old         Side
	New         Side
	Calibration *similarity.Calibration
	Diagnostics []string
}

// Record is the result row of one pair.
type Record struct {
	Question    string                  `json:"question" msgpack:"question"`
	OldPath     string                  `json:"old_path" msgpack:"old_path"`
	NewPath     string                  `json:"new_path" msgpack:"new_path"`
	Comparable  bool                    `json:"comparable" msgpack:"comparable"`
	Comparison  Comparison              `json:"comparison" msgpack:"comparison"`
	Calibration *similarity.Calibration `json:"calibration,omitempty" msgpack:"calibration"`
	Inspect     []string                `json:"inspect" msgpack:"inspect"`
	OldFlaws    map[string]any          `json:"old_flaws,omitempty" msgpack:"-"`
	NewFlaws    map[string]any          `json:"new_flaws,omitempty" msgpack:"-"`
	Diagnostics []string                `json:"diagnostics,omitempty" msgpack:"diagnostics"`
	Err         string                  `json:"error,omitempty" msgpack:"err"`
	Cached      bool                    `json:"cached,omitempty" msgpack:"-"`
}

// Assemble compares the two sides and flags the corrected submission.
// Failures are recorded on the record; Assemble itself never fails.
func Assemble(in Input) Record {
	rec := Record{
		Question:    in.Question,
		OldPath:     in.Old.Path,
		NewPath:     in.New.Path,
		Calibration: in.Calibration,
		Diagnostics: in.Diagnostics,
	}

	oldFlaws := flaw.Detect(in.Old.flawInput())
	newFlaws := flaw.Detect(in.New.flawInput())
	rec.Comparison = Comparison{Old: oldFlaws, New: newFlaws}
	rec.Inspect = flaw.Inspect(newFlaws)
	rec.Expand()

	res, err := similarity.Compare(in.Old.Region.Lines, in.New.Region.Lines, in.Calibration)
	switch {
	case errors.Is(err, similarity.ErrNotComparable):
		return rec
	case err != nil:
		rec.Err = err.Error()
		return rec
	}
	rec.Comparable = true
	rec.Comparison.EditDistance = res.EditDistance
	rec.Comparison.Ratio = res.Ratio
	return rec
}

// Failed builds a record for a pair that could not be processed at all.
func Failed(question, oldPath, newPath string, err error) Record {
	return Record{
		Question: question,
		OldPath:  oldPath,
		NewPath:  newPath,
		Err:      err.Error(),
	}
}

// Expand fills the plain-value flaw maps used by JSON output. Records read
// back from the cache carry only the ordered reports.
func (r *Record) Expand() {
	r.OldFlaws = r.Comparison.Old.Map()
	r.NewFlaws = r.Comparison.New.Map()
}

// RatioText renders the ratio or the not-comparable marker.
func (r Record) RatioText() string {
	if !r.Comparable {
		return NotComparable
	}
	return formatRatio(r.Comparison.Ratio)
}

// NeedsReview reports whether a human should look at the pair.
func (r Record) NeedsReview() bool {
	return r.Err != "" || !r.Comparable || len(r.Inspect) > 0
}

// Sort orders records by question, then by corrected path.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Question != records[j].Question {
			return records[i].Question < records[j].Question
		}
		return records[i].NewPath < records[j].NewPath
	})
}

// Summary counts records by outcome.
type Summary struct {
	Total         int `json:"total"`
	Comparable    int `json:"comparable"`
	NotComparable int `json:"not_comparable"`
	NeedsReview   int `json:"needs_review"`
	Failed        int `json:"failed"`
}

// Summarize counts records.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch {
		case r.Err != "":
			s.Failed++
		case r.Comparable:
			s.Comparable++
		default:
			s.NotComparable++
		}
		if r.NeedsReview() {
			s.NeedsReview++
		}
	}
	return s
}
