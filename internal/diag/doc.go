// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced while folding, stripping and extracting submissions, and while
//     running the external checkers.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting beyond the golden/short line
// form, and it does no IO or CLI integration. Rendering lives in
// internal/diagfmt, orchestration in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the physical lines of the submission the finding refers to.
//   - Notes – optional secondary spans/messages for additional context.
//
// Malformed submissions are never fatal. Unterminated quotes and unbalanced
// sentinels become warnings here and flaw values in internal/flaw; only
// configuration problems abort a run, and those travel as plain Go errors.
//
// # Emitting diagnostics
//
// Phases take a diag.Reporter. Use ReportWarning/ReportError to build a
// diagnostic, chain WithNote, then Emit. BagReporter aggregates into a Bag,
// which supports sorting, deduplication and filtering; DedupReporter drops
// repeats when the same logical line is scanned by several stages.
package diag
