// Package flaw runs a fixed battery of heuristic checks over a canonical
// submission and lists the ones that deviate from a clean baseline.
package flaw

import (
	"regrade/internal/checker"
	"regrade/internal/region"
)

// Input is everything the rules look at.
type Input struct {
	// Lines are the canonical lines of the editable region.
	Lines    []string
	Region   region.Result
	Lint     checker.Outcome
	DeadCode checker.Outcome
}

// Rule is one named check with its clean value.
type Rule struct {
	Name   string
	Detect func(in Input) Value
	Expect Value
}

// Rule names.
const (
	ColonCode           = "colon_code"
	Semicolons          = "semicolons"
	NakedCommas         = "naked_commas"
	ExecCalls           = "exec_calls"
	GlobalNonlocal      = "global_nonlocal"
	Ternaries           = "ternaries"
	SelfAssignments     = "self_assignments"
	EmptyStringReturns  = "empty_string_returns"
	SillyAndOr          = "silly_and_or"
	StrayAndOr          = "stray_and_or"
	SentinelsWellFormed = "sentinels_well_formed"
	Lint                = "lint"
	DeadCode            = "dead_code"
)

var rules = []Rule{
	{Name: ColonCode, Detect: perLine(countColonCode), Expect: Int(0)},
	{Name: Semicolons, Detect: perLine(countSemicolons), Expect: Int(0)},
	{Name: NakedCommas, Detect: perLine(countNakedCommas), Expect: Int(0)},
	{Name: ExecCalls, Detect: perLine(countExecCalls), Expect: Int(0)},
	{Name: GlobalNonlocal, Detect: perLine(countGlobalNonlocal), Expect: Int(0)},
	{Name: Ternaries, Detect: perLine(countTernaries), Expect: Int(0)},
	{Name: SelfAssignments, Detect: perLine(countSelfAssignment), Expect: Int(0)},
	{Name: EmptyStringReturns, Detect: perLine(countEmptyStringReturn), Expect: Int(0)},
	{Name: SillyAndOr, Detect: perLine(countSillyAndOr), Expect: Int(0)},
	{Name: StrayAndOr, Detect: perLine(countStrayAndOr), Expect: Int(0)},
	{
		Name:   SentinelsWellFormed,
		Detect: func(in Input) Value { return Bool(in.Region.WellFormed) },
		Expect: Bool(true),
	},
	{
		Name:   Lint,
		Detect: func(in Input) Value { return Text(in.Lint.Text()) },
		Expect: Text(""),
	},
	{
		Name:   DeadCode,
		Detect: func(in Input) Value { return Text(in.DeadCode.Text()) },
		Expect: Text(""),
	},
}

// Rules returns a copy of the rule table.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Names returns the rule names in table order.
func Names() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

// Baseline is the report of a clean submission.
func Baseline() Report {
	out := Report{Entries: make([]Entry, len(rules))}
	for i, r := range rules {
		out.Entries[i] = Entry{Name: r.Name, Value: r.Expect}
	}
	return out
}

// Detect runs every rule once.
func Detect(in Input) Report {
	out := Report{Entries: make([]Entry, len(rules))}
	for i, r := range rules {
		out.Entries[i] = Entry{Name: r.Name, Value: r.Detect(in)}
	}
	return out
}

// Inspect lists, in table order, the rules whose observed value differs from
// the expected one. A rule missing from the report is not listed.
func Inspect(r Report) []string {
	var names []string
	for _, rule := range rules {
		v, ok := r.Get(rule.Name)
		if ok && !v.Equal(rule.Expect) {
			names = append(names, rule.Name)
		}
	}
	return names
}

func perLine(count func(line string) int) func(Input) Value {
	return func(in Input) Value {
		total := 0
		for _, l := range in.Lines {
			total += count(l)
		}
		return Int(total)
	}
}
