package menucc

import (
	"errors"

	"github.com/menucc/menucc/eeprom"
)

// Result is the full output of a successful compile: the resolved tree, the
// linear emission order, the updated ledger and any warning-level issues.
type Result struct {
	Tree     *Tree
	Linear   *Linear
	Ledger   *eeprom.Ledger
	Warnings Issues
}

// Compile transforms a normalized descriptor tree into an emission-ready
// Result. The passed ledger is never mutated; the caller persists
// Result.Ledger after a successful run (nil led means a fresh ledger is
// initialized from opt.Capacity/opt.Reserve).
//
// Any validation, semantic, identifier or storage failure returns an Issues
// error and no Result; warnings (storage size mismatches) do not block
// output. Cancellation is all-or-nothing: on error the input ledger is the
// only ledger.
func Compile(doc map[string]any, led *eeprom.Ledger, opt CompileOpt) (*Result, error) {
	if led == nil {
		capacity := opt.Capacity
		if capacity == 0 {
			capacity = eeprom.AddressSpace
		}
		led = eeprom.New(capacity, opt.Reserve)
	}
	if err := led.Validate(); err != nil {
		return nil, storageIssues(err)
	}

	tree, issues := validate(doc, opt)
	if len(issues) > 0 {
		return nil, issues
	}
	if issues := analyze(tree, opt); len(issues) > 0 {
		return nil, issues
	}
	if issues := allocIdents(tree, opt); len(issues) > 0 {
		return nil, issues
	}

	next, warnings, err := allocStorage(tree, led, opt)
	if err != nil {
		return nil, storageIssues(err)
	}
	if warnings.Fatal() {
		return nil, warnings
	}

	linear, issues := linearize(tree, opt)
	if len(issues) > 0 {
		return nil, issues
	}

	return &Result{Tree: tree, Linear: linear, Ledger: next, Warnings: warnings.Warnings()}, nil
}

// storageIssues maps eeprom package errors onto the Issue taxonomy.
func storageIssues(err error) Issues {
	var corrupt *eeprom.CorruptError
	if errors.As(err, &corrupt) {
		return Issues{IssueAt(Root(), CodeLedgerCorrupt, "corrupt", map[string]any{"reason": corrupt.Reason})}
	}
	var overlap *eeprom.OverlapError
	if errors.As(err, &overlap) {
		return Issues{IssueAt(Root(), CodeStorageOverlap, "overlap", map[string]any{
			"a": overlap.A, "b": overlap.B,
			"a_offset": overlap.ASlot.Offset, "b_offset": overlap.BSlot.Offset,
		})}
	}
	var exhausted *eeprom.ExhaustedError
	if errors.As(err, &exhausted) {
		return Issues{IssueAt(Root(), CodeStorageExhausted, "exhausted", map[string]any{
			"identity": exhausted.Identity, "need": exhausted.Need,
		})}
	}
	return Issues{{Path: "/", Code: CodeLedgerCorrupt, Message: err.Error(), Cause: err}}
}
