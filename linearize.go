package menucc

import "github.com/menucc/menucc/eeprom"

// Linearization flattens the tree into the order the emitter declares items
// in. The policy is reverse-of-traversal: leaves and later siblings are
// declared before the nodes that reference them, and a submenu follows all of
// its descendants, so the emitted source needs no forward declarations.

// LinkedItem is one emission-ready node. References are identifiers of items
// that appear earlier in Linear.Order.
type LinkedItem struct {
	// Node addresses the source item in the tree arena; NoNode for
	// synthesized back items.
	Node NodeID
	Kind Kind
	// Back marks the implicit back item generated for a submenu; its Next is
	// the submenu's first child.
	Back  bool
	Ident string
	Name  string
	Slot  *eeprom.Slot
	// Next is the next-sibling reference, empty for the last item of a list.
	Next string
	// Child and BackRef are set for submenus only: the first child and the
	// synthesized back item.
	Child   string
	BackRef string
}

// CallbackKind distinguishes the two generated prototype shapes.
type CallbackKind int

const (
	CallbackOnChange CallbackKind = iota
	CallbackOnRender
)

// Callback is one user-provided symbol the emitter declares a prototype for.
type Callback struct {
	Kind   CallbackKind
	Symbol string
}

// Linear is the full emission order plus the tree-level emission contract.
type Linear struct {
	Order     []LinkedItem
	RootIdent string
	Callbacks []Callback
}

// linearize computes the emission order and the callback set. The only
// diagnosable failure is one symbol claimed by both callback shapes.
func linearize(tree *Tree, opt CompileOpt) (*Linear, Issues) {
	l := &Linear{}
	l.emitList(tree, tree.Roots)
	l.RootIdent = tree.Item(tree.Roots[0]).Ident

	var issues Issues
	seen := map[string]CallbackKind{}
	tree.Walk(func(id NodeID, it *Item) bool {
		add := func(kind CallbackKind, symbol string) bool {
			if have, ok := seen[symbol]; ok {
				if have != kind {
					issues = AppendIssues(issues, IssueAt(At(it.Path), CodeSemanticConflict, "callback_conflict",
						map[string]any{"symbol": symbol}))
					return !opt.FailFast
				}
				return true
			}
			seen[symbol] = kind
			l.Callbacks = append(l.Callbacks, Callback{Kind: kind, Symbol: symbol})
			return true
		}
		if it.Callback != "" {
			if !add(CallbackOnChange, it.Callback) {
				return false
			}
		}
		if it.Kind == KindScroll && it.Scroll.Mode == ScrollCustomRenderFn {
			if !add(CallbackOnRender, it.Scroll.Address) {
				return false
			}
		}
		return true
	})
	return l, issues
}

// emitList appends the linearization of an ordered sibling list, last sibling
// first so that every Next reference points at an already declared item.
func (l *Linear) emitList(tree *Tree, ids []NodeID) {
	for i := len(ids) - 1; i >= 0; i-- {
		it := tree.Item(ids[i])
		next := ""
		if i+1 < len(ids) {
			next = tree.Item(ids[i+1]).Ident
		}
		if it.Kind == KindSubmenu {
			l.emitList(tree, it.Submenu.Children)
			first := tree.Item(it.Submenu.Children[0]).Ident
			l.Order = append(l.Order,
				LinkedItem{Node: NoNode, Kind: KindSubmenu, Back: true, Ident: it.BackIdent, Name: it.Name, Next: first},
				LinkedItem{Node: ids[i], Kind: KindSubmenu, Ident: it.Ident, Name: it.Name, Next: next, Child: first, BackRef: it.BackIdent})
			continue
		}
		l.Order = append(l.Order,
			LinkedItem{Node: ids[i], Kind: it.Kind, Ident: it.Ident, Name: it.Name, Slot: it.Slot, Next: next})
	}
}
