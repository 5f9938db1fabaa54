package menucc

import "strconv"

// Identifier allocation: one globally unique, symbol-legal name per node,
// deterministic for an unchanged tree. Seeds are tried first; collisions are
// resolved by the declared id-suffix, else by a numeric disambiguator
// assigned in depth-first declaration order, so the first-seen node keeps the
// bare name.

// backSeed is the seed of every synthesized submenu back item. It is
// reserved: a user item can never claim it.
const backSeed = "menuback"

// reservedIdents excludes the generated root accessor, the defaults-setup
// entry point and the application info symbol from the user namespace.
// C++ keywords a display name could slug into are kept out as well, since
// identifiers become variable names in emitted source.
var reservedIdents = map[string]bool{
	backSeed:            true,
	"getrootmenuitem":   true,
	"setupmenudefaults": true,
	"applicationinfo":   true,

	"auto": true, "bool": true, "break": true, "case": true, "class": true,
	"const": true, "continue": true, "default": true, "delete": true,
	"do": true, "double": true, "else": true, "enum": true, "false": true,
	"float": true, "for": true, "if": true, "int": true, "long": true,
	"namespace": true, "new": true, "operator": true, "private": true,
	"protected": true, "public": true, "return": true, "short": true,
	"static": true, "struct": true, "switch": true, "template": true,
	"this": true, "true": true, "union": true, "void": true, "while": true,
}

type identAllocator struct {
	claimed  map[string]bool
	issues   Issues
	failFast bool
}

func (a *identAllocator) free(name string) bool {
	return !a.claimed[name] && !reservedIdents[name]
}

// allocIdents assigns Item.Ident (and BackIdent for submenus) across the
// whole tree. Identity equals the resolved identifier; it is the ledger key.
func allocIdents(tree *Tree, opt CompileOpt) Issues {
	a := &identAllocator{claimed: map[string]bool{}, failFast: opt.FailFast}
	a.visit(tree, tree.Roots)
	return a.issues
}

func (a *identAllocator) visit(tree *Tree, ids []NodeID) bool {
	for _, id := range ids {
		it := tree.Item(id)
		if !a.assign(it) {
			return false
		}
		if it.Kind == KindSubmenu {
			// Back items live outside the user namespace: the first one
			// owns the reserved seed itself.
			if !a.claimed[backSeed] {
				a.claimed[backSeed] = true
				it.BackIdent = backSeed
			} else {
				it.BackIdent = a.numeric(backSeed)
			}
			if !a.visit(tree, it.Submenu.Children) {
				return false
			}
		}
	}
	return true
}

func (a *identAllocator) assign(it *Item) bool {
	if a.free(it.Seed) {
		a.take(it, it.Seed)
		return true
	}
	// Collision. An explicit id with a declared suffix gets exactly one
	// retry; exhausting it is an unresolved collision, never a silent
	// rename of a name the user spelled out in full.
	if it.ID != "" && it.IDSuffix != "" {
		retry := it.ID + it.IDSuffix
		if a.free(retry) {
			a.take(it, retry)
			return true
		}
		a.issues = AppendIssues(a.issues, IssueAt(At(it.Path), CodeIdentifierCollision, "exhausted",
			map[string]any{"id": it.ID, "suffix": it.IDSuffix}))
		return !a.failFast
	}
	a.take(it, a.numeric(it.Seed))
	return true
}

func (a *identAllocator) take(it *Item, name string) {
	a.claimed[name] = true
	it.Ident = name
	it.Identity = name
}

// numeric returns the first free name among seed2, seed3, ...
func (a *identAllocator) numeric(seed string) string {
	for i := 2; ; i++ {
		name := seed + strconv.Itoa(i)
		if a.free(name) {
			a.claimed[name] = true
			return name
		}
	}
}
