package menucc

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// CodeSchemaViolation covers shape, required-field and enumeration
	// mismatches found by the validator.
	CodeSchemaViolation = "schema_violation"
	// CodeSemanticConflict covers derivation contradictions found by the
	// analyzer, e.g. both min and offset given.
	CodeSemanticConflict = "semantic_conflict"
	// CodeIdentifierCollision is reported when disambiguation is exhausted,
	// e.g. an explicit id and its id-suffix variant are both taken.
	CodeIdentifierCollision = "identifier_collision_unresolved"
	// CodeStorageSizeMismatch is a warning: a persisted slot's historical size
	// differs from the newly computed size. Generation continues with the
	// historical size.
	CodeStorageSizeMismatch = "storage_size_mismatch"
	// CodeStorageOverlap is a fatal consistency-check failure: two identities
	// computed to overlapping byte ranges.
	CodeStorageOverlap = "storage_overlap"
	// CodeStorageExhausted is reported when the EEPROM address space or the
	// usable variable-store region is full.
	CodeStorageExhausted = "storage_exhausted"
	// CodeLedgerCorrupt is fatal: the persisted allocation ledger is malformed.
	CodeLedgerCorrupt = "ledger_corrupt"
)

// Issue represents a single compile diagnostic.
type Issue struct {
	Path    string // JSON Pointer into the descriptor (for example: /items/2/max).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"field":"max", "got":42})
	// for i18n and observability.
	Params map[string]any
	// Rule optionally records the fine-grained rule that produced this issue.
	Rule string
	// Severity distinguishes warnings (surfaced, non-blocking) from errors.
	Severity Severity
}

// Issues is a collection of compile diagnostics that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. schema_violation at /items/2
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Fatal reports whether any issue in the collection blocks output.
func (iss Issues) Fatal() bool {
	for _, it := range iss {
		if it.Severity != Warn {
			return true
		}
	}
	return false
}

// Warnings returns the warning-level subset.
func (iss Issues) Warnings() Issues {
	var out Issues
	for _, it := range iss {
		if it.Severity == Warn {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
