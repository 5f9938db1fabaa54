package eeprom

import "sort"

// Request asks for a slot of Size bytes bound to Identity. Path carries the
// descriptor location for diagnostics.
type Request struct {
	Identity string
	Size     uint
	Path     string
}

// EventKind classifies what Allocate did for one request.
type EventKind int

const (
	// EventReused means the identity already owned a slot and kept it.
	EventReused EventKind = iota
	// EventAppended means a new slot was appended at the high-water mark.
	EventAppended
	// EventSizeMismatch means the historical slot was kept even though the
	// computed size differs. Reallocating would corrupt already-written
	// device storage, so this is a warning, not a reallocation.
	EventSizeMismatch
)

// Event records the outcome for one request, in request order.
type Event struct {
	Kind     EventKind
	Identity string
	Path     string
	Slot     Slot
	WantSize uint // differs from Slot.Size only for EventSizeMismatch
}

// Allocate binds a slot to every request, reusing ledger entries verbatim and
// appending new identities after the high-water mark. The input ledger is
// never mutated; on error the returned ledger is nil and no slot assignment
// is observable.
func Allocate(led *Ledger, reqs []Request) (*Ledger, []Event, error) {
	out := led.Clone()
	events := make([]Event, 0, len(reqs))
	for _, req := range reqs {
		if have, ok := out.Vars[req.Identity]; ok {
			ev := Event{Kind: EventReused, Identity: req.Identity, Path: req.Path, Slot: have, WantSize: req.Size}
			if have.Size != req.Size {
				ev.Kind = EventSizeMismatch
			}
			events = append(events, ev)
			continue
		}
		slot, err := out.append(req)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, Event{Kind: EventAppended, Identity: req.Identity, Path: req.Path, Slot: slot, WantSize: req.Size})
	}
	if err := out.checkOverlaps(); err != nil {
		return nil, nil, err
	}
	return out, events, nil
}

func (l *Ledger) append(req Request) (Slot, error) {
	offset := l.AutoIndex
	if offset >= AddressSpace || offset+req.Size > AddressSpace {
		return Slot{}, &ExhaustedError{Identity: req.Identity, Need: req.Size}
	}
	maxSpace := l.VarstoreBar
	if l.Capacity < maxSpace {
		maxSpace = l.Capacity
	}
	if offset >= maxSpace || offset+req.Size > maxSpace {
		return Slot{}, &ExhaustedError{Identity: req.Identity, Need: req.Size}
	}
	slot := Slot{Offset: offset, Size: req.Size}
	l.Vars[req.Identity] = slot
	l.AutoIndex += req.Size
	return slot, nil
}

// checkOverlaps verifies that no two variable slots intersect.
func (l *Ledger) checkOverlaps() error {
	type named struct {
		name string
		slot Slot
	}
	all := make([]named, 0, len(l.Vars))
	for name, s := range l.Vars {
		all = append(all, named{name, s})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].slot.Offset != all[j].slot.Offset {
			return all[i].slot.Offset < all[j].slot.Offset
		}
		return all[i].name < all[j].name
	})
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if cur.slot.Offset < prev.slot.End() {
			return &OverlapError{A: prev.name, B: cur.name, ASlot: prev.slot, BSlot: cur.slot}
		}
	}
	return nil
}
