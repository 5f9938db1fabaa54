package menucc

import "github.com/menucc/menucc/eeprom"

// Storage binding: compute per-variant slot sizes, thread the ledger through
// the pure allocator, and attach resolved slots to the arena. The allocation
// policy itself (reuse verbatim, append after the high-water mark, never
// reclaim) lives in the eeprom package.

// slotSize returns the serialized byte footprint for a persistable item.
func slotSize(it *Item) uint {
	switch it.Kind {
	case KindBoolean:
		return 1
	case KindAnalog:
		// The analog register is a u16 regardless of the declared range.
		return 2
	case KindEnum:
		// Smallest width covering the option count.
		if len(it.Enum.Options) <= 256 {
			return 1
		}
		return 2
	case KindScroll:
		return 2
	case KindLargeNumber:
		// Packed decimal, two digits per byte, plus a sign byte when signed.
		n := uint(it.LargeNumber.Length+1) / 2
		if it.LargeNumber.Signed {
			n++
		}
		return n
	}
	// Float, Submenu and Action are not persistable; the analyzer rejects
	// persistent on them before we get here.
	return 0
}

// allocStorage assigns a slot to every persistent item in declaration order.
// It returns the updated ledger and warning-level issues (size mismatches);
// overlap and exhaustion surface as the fatal error.
func allocStorage(tree *Tree, led *eeprom.Ledger, opt CompileOpt) (*eeprom.Ledger, Issues, error) {
	var reqs []eeprom.Request
	var nodes []NodeID
	var issues Issues
	tree.Walk(func(id NodeID, it *Item) bool {
		if it.Kind == KindScroll && it.Scroll.Mode.EEPROMBacked() {
			if _, ok := led.SpareSegment(it.Scroll.Address); !ok {
				issues = AppendIssues(issues, IssueAt(At(it.Path).Field("data-source"), CodeSemanticConflict, "unknown_segment",
					map[string]any{"segment": it.Scroll.Address}))
				if opt.FailFast {
					return false
				}
			}
		}
		if it.Persistent && it.Kind.Persistable() {
			reqs = append(reqs, eeprom.Request{Identity: it.Identity, Size: slotSize(it), Path: it.Path})
			nodes = append(nodes, id)
		}
		return true
	})
	if issues.Fatal() {
		return nil, issues, nil
	}

	next, events, err := eeprom.Allocate(led, reqs)
	if err != nil {
		return nil, nil, err
	}
	for i, ev := range events {
		slot := ev.Slot
		tree.Item(nodes[i]).Slot = &slot
		if ev.Kind == eeprom.EventSizeMismatch {
			// Reallocating would corrupt already-written device storage;
			// the historical slot wins and the user is told.
			issues = AppendIssues(issues, WarnAt(At(ev.Path), CodeStorageSizeMismatch, "historical_size_kept",
				map[string]any{"identity": ev.Identity, "have": ev.Slot.Size, "want": ev.WantSize}))
		}
	}
	return next, issues, nil
}
