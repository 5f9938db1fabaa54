// Package eeprom models the append-only EEPROM allocation ledger.
//
// The ledger maps stable item identities to (offset, size) slots. Offsets are
// as stable as an on-disk schema version: once an identity owns a slot, later
// runs reuse it verbatim, new identities are appended after the high-water
// mark, and identities missing from the current descriptor are retained so a
// re-added item finds its old offset instead of aliasing new data onto it.
//
// Allocation is a pure function of (old ledger, requests); persistence is a
// load-before/store-after concern at the process edge (see yaml.go and
// sqlite.go).
package eeprom

import (
	"errors"
	"fmt"
)

// AddressSpace is the largest addressable EEPROM offset. 0xffff doubles as
// the "not persisted" sentinel in emitted code and is never allocated.
const AddressSpace = 0xffff

// Slot is one allocated EEPROM region.
type Slot struct {
	Offset uint
	Size   uint
}

// End returns the first offset past the slot.
func (s Slot) End() uint { return s.Offset + s.Size }

// Ledger is the persisted allocation state carried between compiler runs.
type Ledger struct {
	Capacity    uint
	VarstoreBar uint // first offset not usable for variables (capacity minus reserve)
	AutoIndex   uint // high-water mark for appends
	Vars        map[string]Slot
	Spare       map[string]Slot // named spare segments addressed by scroll data sources
	// DescriptorDigest is the SHA-256 of the descriptor bytes from the last
	// run, letting callers detect "unchanged since last run" without
	// reparsing the descriptor.
	DescriptorDigest string
}

// New initializes a fresh ledger for the given capacity, keeping the last
// reserve bytes out of the variable store. Allocation starts at offset 0;
// firmware that wants a magic/version word models it as a reserved var in
// the map file.
func New(capacity, reserve uint) *Ledger {
	return &Ledger{
		Capacity:    capacity,
		VarstoreBar: capacity - reserve,
		Vars:        map[string]Slot{},
		Spare:       map[string]Slot{},
	}
}

// Clone returns a deep copy. Allocate never mutates its input.
func (l *Ledger) Clone() *Ledger {
	c := *l
	c.Vars = make(map[string]Slot, len(l.Vars))
	for k, v := range l.Vars {
		c.Vars[k] = v
	}
	c.Spare = make(map[string]Slot, len(l.Spare))
	for k, v := range l.Spare {
		c.Spare[k] = v
	}
	return &c
}

// Lookup returns the slot owned by identity, if any.
func (l *Ledger) Lookup(identity string) (Slot, bool) {
	s, ok := l.Vars[identity]
	return s, ok
}

// SpareSegment returns the named spare segment, if declared.
func (l *Ledger) SpareSegment(name string) (Slot, bool) {
	s, ok := l.Spare[name]
	return s, ok
}

// CorruptError is a fatal error: the persisted ledger is malformed. The run
// aborts before any output and the prior ledger is left untouched.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string { return "eeprom: ledger corrupt: " + e.Reason }

// OverlapError is a fatal consistency-check failure: two identities resolved
// to overlapping byte ranges. It indicates an allocator defect.
type OverlapError struct {
	A, B         string
	ASlot, BSlot Slot
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("eeprom: slots overlap: %s [%d,%d) and %s [%d,%d)",
		e.A, e.ASlot.Offset, e.ASlot.End(), e.B, e.BSlot.Offset, e.BSlot.End())
}

// ExhaustedError reports that no slot could be appended for identity.
type ExhaustedError struct {
	Identity string
	Need     uint
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("eeprom: no space left for %s (%d bytes); run defragmentation and bump the mapping version", e.Identity, e.Need)
}

// Validate checks internal consistency of a loaded ledger.
func (l *Ledger) Validate() error {
	if l.Capacity == 0 || l.Capacity > AddressSpace+1 {
		return &CorruptError{Reason: fmt.Sprintf("capacity %d out of range", l.Capacity)}
	}
	if l.VarstoreBar > l.Capacity {
		return &CorruptError{Reason: fmt.Sprintf("varstore-bar %d exceeds capacity %d", l.VarstoreBar, l.Capacity)}
	}
	for name, s := range l.Vars {
		if s.Size == 0 {
			return &CorruptError{Reason: fmt.Sprintf("slot %s has zero size", name)}
		}
		if s.End() > l.AutoIndex {
			return &CorruptError{Reason: fmt.Sprintf("slot %s ends at %d past auto-index %d", name, s.End(), l.AutoIndex)}
		}
	}
	if err := l.checkOverlaps(); err != nil {
		var ov *OverlapError
		if errors.As(err, &ov) {
			return &CorruptError{Reason: ov.Error()}
		}
		return err
	}
	return nil
}
