package menucc

import (
	"regexp"
	"strings"
)

// Cross-field derivation and defaults that are not expressible as pure shape
// constraints. Runs over the validated arena and fills the resolved fields
// (AnalogSpec.ResOffset/ResRange, ScrollSpec.Mode/Address, Item.Seed).

// analogRegister is the raw range limit of the runtime's 16-bit analog register.
const analogRegister = 65535

var (
	// reSlug is the bare symbol pattern an identity seed must match.
	reSlug = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	// reSegment is the looser charset for EEPROM-backed scroll identifiers,
	// which double as spare-segment names in the ledger.
	reSegment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

type analyzer struct {
	tree     *Tree
	issues   Issues
	failFast bool
}

func (a *analyzer) add(it Issue) bool {
	a.issues = AppendIssues(a.issues, it)
	return !a.failFast
}

// analyze derives implicit fields and enforces cross-field invariants.
// Semantic errors have the same severity as validator errors: the compile
// fails, but diagnostics are still collected across sibling subtrees.
func analyze(tree *Tree, opt CompileOpt) Issues {
	a := &analyzer{tree: tree, failFast: opt.FailFast}
	tree.Walk(func(id NodeID, it *Item) bool {
		p := At(it.Path)
		switch it.Kind {
		case KindAnalog:
			if !a.analyzeAnalog(it, p) {
				return false
			}
		case KindScroll:
			if !a.analyzeScroll(it, p) {
				return false
			}
		case KindLargeNumber, KindFloat, KindEnum, KindBoolean, KindSubmenu, KindAction:
			// No derivations beyond the shared rules below.
		}
		if it.Persistent && !it.Kind.Persistable() {
			if !a.add(IssueAt(p.Field("persistent"), CodeSemanticConflict, "not_persistable", map[string]any{"type": it.Kind.String()})) {
				return false
			}
		}
		return a.deriveSeed(it, p)
	})
	return a.issues
}

func (a *analyzer) analyzeAnalog(it *Item, p PathRef) bool {
	spec := it.Analog
	if spec.Min != nil && spec.Offset != nil {
		return a.add(IssueAt(p, CodeSemanticConflict, "mutually_exclusive", map[string]any{"fields": "min, offset"}))
	}
	if spec.Max != nil && spec.Precision != nil {
		return a.add(IssueAt(p, CodeSemanticConflict, "mutually_exclusive", map[string]any{"fields": "max, precision"}))
	}

	// min is an alias of offset; neither given means offset 0.
	switch {
	case spec.Min != nil:
		spec.ResOffset = *spec.Min
	case spec.Offset != nil:
		spec.ResOffset = *spec.Offset
	}

	// With max given the raw range is derived; with precision given the max
	// is whatever the register covers from the offset.
	if spec.Max != nil {
		spec.ResRange = *spec.Max - spec.ResOffset
	} else {
		spec.ResRange = *spec.Precision
	}
	if spec.ResRange < 1 || spec.ResRange > analogRegister {
		return a.add(IssueAt(p, CodeSemanticConflict, "range_unrepresentable", map[string]any{"range": spec.ResRange, "register": analogRegister}))
	}

	if spec.Divisor < 1 {
		return a.add(IssueAt(p.Field("divisor"), CodeSemanticConflict, "out_of_range", map[string]any{"min": 1, "got": spec.Divisor}))
	}
	// Displayed values are raw/divisor rendered in decimal; the division
	// round-trips exactly only when the divisor is of the form 2^a * 5^b.
	if !terminatingDecimal(spec.Divisor) {
		return a.add(IssueAt(p.Field("divisor"), CodeSemanticConflict, "divisor_round_trip", map[string]any{"got": spec.Divisor}))
	}
	return true
}

func terminatingDecimal(d int) bool {
	for d%2 == 0 {
		d /= 2
	}
	for d%5 == 0 {
		d /= 5
	}
	return d == 1
}

func (a *analyzer) analyzeScroll(it *Item, p PathRef) bool {
	spec := it.Scroll
	if spec.DataSource == "" {
		// The validator already rejected the node; nothing to derive.
		return true
	}
	modeName, addr, _ := splitDataSource(spec.DataSource)
	spec.Mode = scrollModes[modeName]
	spec.Address = addr
	if spec.Mode.EEPROMBacked() {
		// The identifier names a spare segment in the ledger.
		if !reSegment.MatchString(addr) {
			return a.add(IssueAt(p.Field("data-source"), CodeSemanticConflict, "segment_identifier", map[string]any{"got": addr, "mode": modeName}))
		}
		return true
	}
	// RAM and callback modes reference a linker-visible symbol.
	if !reSymbol.MatchString(addr) {
		return a.add(IssueAt(p.Field("data-source"), CodeSemanticConflict, "symbol_identifier", map[string]any{"got": addr, "mode": modeName}))
	}
	return true
}

// deriveSeed computes the identity seed: id if present, else the id-suffix
// appended to a slug of the name, else the slug alone.
func (a *analyzer) deriveSeed(it *Item, p PathRef) bool {
	if it.ID != "" {
		it.Seed = it.ID
		return true
	}
	s := slug(it.Name)
	if !reSlug.MatchString(s) {
		return a.add(IssueAt(p.Field("name"), CodeSemanticConflict, "slug", map[string]any{"name": it.Name, "slug": s}))
	}
	it.Seed = s + it.IDSuffix
	return true
}

// slug lowercase-folds a display name and strips every non-symbol character.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitDataSource splits "<mode>:<identifier>" with exactly one delimiter.
func splitDataSource(ds string) (mode, addr string, ok bool) {
	parts := strings.Split(ds, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
