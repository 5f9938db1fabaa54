package menucc

import "fmt"

// Severity expresses the severity level for issues.
type Severity int

const (
	Error Severity = iota
	Warn
)

// CompileOpt bundles compile options.
type CompileOpt struct {
	// FailFast stops at the first error-level issue instead of collecting a
	// full report across sibling subtrees.
	FailFast bool
	// Capacity and Reserve initialize a fresh ledger when the caller passes
	// nil. Both are ignored when a loaded ledger is supplied.
	Capacity uint
	Reserve  uint
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
