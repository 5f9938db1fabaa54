package menucc

import "github.com/menucc/menucc/eeprom"

// Kind enumerates the eight menu item variants. The set is closed: every
// compiler stage dispatches exhaustively over it and a new kind requires
// touching every stage.
type Kind int

const (
	KindAnalog Kind = iota
	KindLargeNumber
	KindFloat
	KindEnum
	KindScroll
	KindBoolean
	KindSubmenu
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindAnalog:
		return "analog"
	case KindLargeNumber:
		return "large-number"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindScroll:
		return "scroll"
	case KindBoolean:
		return "boolean"
	case KindSubmenu:
		return "submenu"
	case KindAction:
		return "action"
	}
	return "unknown"
}

// Persistable reports whether items of this kind may carry an EEPROM slot.
func (k Kind) Persistable() bool {
	switch k {
	case KindAnalog, KindLargeNumber, KindEnum, KindScroll, KindBoolean:
		return true
	case KindFloat, KindSubmenu, KindAction:
		return false
	}
	return false
}

// NodeID addresses an item inside the tree arena.
type NodeID int

// NoNode marks an absent reference (no parent, no sibling).
const NoNode NodeID = -1

// ScrollMode enumerates scroll-choice data sources.
type ScrollMode int

const (
	ScrollEEPROM ScrollMode = iota
	ScrollArrayInEEPROM
	ScrollRAM
	ScrollArrayInRAM
	ScrollCustomRenderFn
)

func (m ScrollMode) String() string {
	switch m {
	case ScrollEEPROM:
		return "eeprom"
	case ScrollArrayInEEPROM:
		return "array-in-eeprom"
	case ScrollRAM:
		return "ram"
	case ScrollArrayInRAM:
		return "array-in-ram"
	case ScrollCustomRenderFn:
		return "custom-renderfn"
	}
	return "unknown"
}

// EEPROMBacked reports whether the scroll data lives in EEPROM, in which case
// the data-source identifier doubles as a spare-segment name in the ledger.
func (m ScrollMode) EEPROMBacked() bool {
	return m == ScrollEEPROM || m == ScrollArrayInEEPROM
}

// AnalogSpec holds the bounded-integer item fields. Max/Min/Precision/Offset
// keep raw presence (nil means absent); the analyzer folds them into
// ResOffset/ResRange.
type AnalogSpec struct {
	Max       *int
	Min       *int
	Precision *int
	Offset    *int
	Divisor   int
	Unit      string

	// Resolved by the analyzer: the display offset and the raw register range.
	ResOffset int
	ResRange  int
}

// LargeNumberSpec holds packed-decimal editor fields.
type LargeNumberSpec struct {
	DecimalPlaces int
	Length        int
	Signed        bool
}

// FloatSpec holds the read-only float display fields. DecimalPlaces is a
// display-rounding count, not a digit count.
type FloatSpec struct {
	DecimalPlaces int
}

// EnumSpec holds a static option list.
type EnumSpec struct {
	Options []string
}

// ScrollSpec holds a dynamic option list backed by EEPROM, RAM or a custom
// render callback.
type ScrollSpec struct {
	ItemSize   int
	ItemCount  int
	DataSource string

	// Resolved by the analyzer.
	Mode    ScrollMode
	Address string
}

// BooleanSpec holds the response-format selector. Response is one of
// "true-false", "on-off", "yes-no"; the descriptor type alias picks the
// default.
type BooleanSpec struct {
	Response string
}

// SubmenuSpec holds the ordered child list. Order is declaration/display order.
type SubmenuSpec struct {
	Auth     bool
	Children []NodeID
}

// Item is one menu node. Exactly one variant pointer matching Kind is non-nil.
type Item struct {
	Kind       Kind
	Name       string
	ID         string // explicit id, empty when derived
	IDSuffix   string
	Persistent bool
	ReadOnly   bool
	LocalOnly  bool
	Visible    bool
	Callback   string

	Analog      *AnalogSpec
	LargeNumber *LargeNumberSpec
	Float       *FloatSpec
	Enum        *EnumSpec
	Scroll      *ScrollSpec
	Boolean     *BooleanSpec
	Submenu     *SubmenuSpec

	// Parent is the owning submenu, NoNode for top-level items.
	Parent NodeID
	// Path is the JSON Pointer of the item in the descriptor, kept for
	// diagnostics in later stages.
	Path string
	// MenuID is the protocol-visible numeric id, assigned in declaration
	// order starting at 1.
	MenuID int

	// Identity is the stable cross-revision correlation key, filled by the
	// identifier allocator (equal to Ident once resolved).
	Identity string
	// Seed is the pre-collision identity seed derived by the analyzer.
	Seed string
	// Ident is the final globally unique identifier.
	Ident string
	// BackIdent is the identifier of the synthesized back item (submenus only).
	BackIdent string
	// Slot is the resolved EEPROM slot for persistent items, nil otherwise.
	Slot *eeprom.Slot
}

// Tree is the validated menu: an arena of items addressed by NodeID plus the
// ordered top-level item list.
type Tree struct {
	Name  string
	UUID  string
	Items []Item
	Roots []NodeID
}

// Item returns the arena entry for id.
func (t *Tree) Item(id NodeID) *Item { return &t.Items[id] }

// Walk visits every item depth-first in declaration order. Returning false
// from fn stops the walk.
func (t *Tree) Walk(fn func(id NodeID, it *Item) bool) {
	var walk func(ids []NodeID) bool
	walk = func(ids []NodeID) bool {
		for _, id := range ids {
			it := t.Item(id)
			if !fn(id, it) {
				return false
			}
			if it.Kind == KindSubmenu {
				if !walk(it.Submenu.Children) {
					return false
				}
			}
		}
		return true
	}
	walk(t.Roots)
}
