package menucc

import (
	"regexp"

	"github.com/google/uuid"
)

// Shape-level validation of the raw descriptor tree. Each node must match
// exactly one of the eight variant shapes once its type alias is resolved;
// unknown fields are rejected. Derivations and cross-field defaults live in
// semantic.go.

var (
	reSymbol = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reSuffix = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// maxNameLen bounds display names; the runtime renders at most 19 characters.
const maxNameLen = 19

type kindAlias struct {
	kind Kind
	// booleanResponse is the default response format implied by the alias.
	booleanResponse string
}

var typeAliases = map[string]kindAlias{
	"analog": {kind: KindAnalog},
	"fixed":  {kind: KindAnalog},
	"number": {kind: KindAnalog},

	"large-number": {kind: KindLargeNumber},
	"bcd":          {kind: KindLargeNumber},

	"float": {kind: KindFloat},

	"enum":          {kind: KindEnum},
	"option":        {kind: KindEnum},
	"static-option": {kind: KindEnum},

	"scroll-choice":  {kind: KindScroll},
	"scroll":         {kind: KindScroll},
	"dynamic-option": {kind: KindScroll},

	"boolean":   {kind: KindBoolean, booleanResponse: "true-false"},
	"bool":      {kind: KindBoolean, booleanResponse: "true-false"},
	"truefalse": {kind: KindBoolean, booleanResponse: "true-false"},
	"switch":    {kind: KindBoolean, booleanResponse: "on-off"},
	"onoff":     {kind: KindBoolean, booleanResponse: "on-off"},
	"yesno":     {kind: KindBoolean, booleanResponse: "yes-no"},

	"submenu": {kind: KindSubmenu},
	"menu":    {kind: KindSubmenu},

	"action": {kind: KindAction},
}

var booleanResponses = map[string]bool{
	"true-false": true,
	"on-off":     true,
	"yes-no":     true,
}

var scrollModes = map[string]ScrollMode{
	"eeprom":          ScrollEEPROM,
	"array-in-eeprom": ScrollArrayInEEPROM,
	"ram":             ScrollRAM,
	"array-in-ram":    ScrollArrayInRAM,
	"custom-renderfn": ScrollCustomRenderFn,
}

var commonFields = fieldSet("type", "name", "id", "id-suffix", "persistent", "read-only", "local-only", "visible", "callback")

var kindFields = map[Kind]map[string]bool{
	KindAnalog:      fieldSet("max", "min", "precision", "offset", "divisor", "unit"),
	KindLargeNumber: fieldSet("decimal-places", "length", "signed"),
	KindFloat:       fieldSet("decimal-places"),
	KindEnum:        fieldSet("options"),
	KindScroll:      fieldSet("item-size", "items", "data-source"),
	KindBoolean:     fieldSet("response"),
	KindSubmenu:     fieldSet("items", "auth"),
	KindAction:      fieldSet(),
}

func fieldSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

type validator struct {
	tree     *Tree
	issues   Issues
	failFast bool
}

// add records an issue and reports whether validation should keep going.
func (v *validator) add(it Issue) bool {
	v.issues = AppendIssues(v.issues, it)
	return !v.failFast
}

func (v *validator) stopped() bool {
	return v.failFast && len(v.issues) > 0
}

// validate type-checks the raw descriptor tree and builds the item arena.
// Diagnostics are collected across sibling subtrees so the user gets a full
// report in one pass; any error-level issue fails the whole compile.
func validate(doc map[string]any, opt CompileOpt) (*Tree, Issues) {
	v := &validator{tree: &Tree{}, failFast: opt.FailFast}
	root := Root()

	for key := range doc {
		switch key {
		case "name", "uuid", "items":
		default:
			if !v.add(IssueAt(root.Field(key), CodeSchemaViolation, "unknown_key", map[string]any{"field": key})) {
				return nil, v.issues
			}
		}
	}

	if name, ok := asString(doc["name"]); ok && name != "" {
		v.tree.Name = name
	} else if !v.add(IssueAt(root.Field("name"), CodeSchemaViolation, "required", map[string]any{"field": "name"})) {
		return nil, v.issues
	}

	if raw, ok := asString(doc["uuid"]); ok && isCanonicalUUID(raw) {
		v.tree.UUID = raw
	} else if !v.add(IssueAt(root.Field("uuid"), CodeSchemaViolation, "uuid_format", map[string]any{"got": doc["uuid"]})) {
		return nil, v.issues
	}

	items, ok := asList(doc["items"])
	if !ok || len(items) == 0 {
		v.add(IssueAt(root.Field("items"), CodeSchemaViolation, "min_items", map[string]any{"field": "items"}))
		return nil, v.issues
	}
	v.tree.Roots = v.validateItems(items, root.Field("items"), NoNode)

	if len(v.issues) > 0 {
		return nil, v.issues
	}
	return v.tree, nil
}

// isCanonicalUUID accepts only the 8-4-4-4-12 hexadecimal form.
func isCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// validateItems validates an ordered child list. A failed node aborts its own
// subtree but later siblings are still validated.
func (v *validator) validateItems(items []any, p PathRef, parent NodeID) []NodeID {
	ids := make([]NodeID, 0, len(items))
	for i, raw := range items {
		if v.stopped() {
			break
		}
		id := v.validateItem(raw, p.Index(i), parent)
		if id != NoNode {
			ids = append(ids, id)
		}
	}
	return ids
}

func (v *validator) validateItem(raw any, p PathRef, parent NodeID) NodeID {
	m, ok := asMap(raw)
	if !ok {
		v.add(IssueAt(p, CodeSchemaViolation, "invalid_type", map[string]any{"expected": "mapping"}))
		return NoNode
	}
	typeName, ok := asString(m["type"])
	if !ok || typeName == "" {
		v.add(IssueAt(p.Field("type"), CodeSchemaViolation, "required", map[string]any{"field": "type"}))
		return NoNode
	}
	alias, ok := typeAliases[typeName]
	if !ok {
		v.add(IssueAt(p.Field("type"), CodeSchemaViolation, "invalid_enum", map[string]any{"got": typeName}))
		return NoNode
	}

	before := len(v.issues)
	item := Item{Kind: alias.kind, Parent: parent, Path: p.Pointer(), Visible: true}
	v.validateCommon(m, p, &item)
	allowed := kindFields[alias.kind]
	for key := range m {
		if commonFields[key] || allowed[key] {
			continue
		}
		if !v.add(IssueAt(p.Field(key), CodeSchemaViolation, "unknown_key", map[string]any{"field": key, "type": typeName})) {
			return NoNode
		}
	}

	// Reserve the arena index before descending so parents precede children.
	v.tree.Items = append(v.tree.Items, item)
	id := NodeID(len(v.tree.Items) - 1)
	v.tree.Items[id].MenuID = int(id) + 1

	// Validate the variant before touching the arena entry again: submenu
	// recursion appends to the arena and may move its backing array.
	var variant Item
	switch alias.kind {
	case KindAnalog:
		variant.Analog = v.validateAnalog(m, p)
	case KindLargeNumber:
		variant.LargeNumber = v.validateLargeNumber(m, p)
	case KindFloat:
		variant.Float = v.validateFloat(m, p)
	case KindEnum:
		variant.Enum = v.validateEnum(m, p)
	case KindScroll:
		variant.Scroll = v.validateScroll(m, p)
	case KindBoolean:
		variant.Boolean = v.validateBoolean(m, p, alias.booleanResponse)
	case KindSubmenu:
		variant.Submenu = v.validateSubmenu(m, p, id)
	case KindAction:
		// No extra fields.
	}
	entry := v.tree.Item(id)
	entry.Analog, entry.LargeNumber, entry.Float = variant.Analog, variant.LargeNumber, variant.Float
	entry.Enum, entry.Scroll, entry.Boolean, entry.Submenu = variant.Enum, variant.Scroll, variant.Boolean, variant.Submenu

	if len(v.issues) > before {
		return NoNode
	}
	return id
}

func (v *validator) validateCommon(m map[string]any, p PathRef, item *Item) {
	if name, ok := asString(m["name"]); ok && len(name) >= 1 && len(name) <= maxNameLen {
		item.Name = name
	} else {
		v.add(IssueAt(p.Field("name"), CodeSchemaViolation, "name_length", map[string]any{"min": 1, "max": maxNameLen, "got": m["name"]}))
	}
	if raw, present := m["id"]; present {
		if id, ok := asString(raw); ok && reSymbol.MatchString(id) {
			item.ID = id
		} else {
			v.add(IssueAt(p.Field("id"), CodeSchemaViolation, "pattern", map[string]any{"got": raw}))
		}
	}
	if raw, present := m["id-suffix"]; present {
		if sfx, ok := asString(raw); ok && reSuffix.MatchString(sfx) {
			item.IDSuffix = sfx
		} else {
			v.add(IssueAt(p.Field("id-suffix"), CodeSchemaViolation, "pattern", map[string]any{"got": raw}))
		}
	}
	item.Persistent = v.boolField(m, p, "persistent", false)
	item.ReadOnly = v.boolField(m, p, "read-only", false)
	item.LocalOnly = v.boolField(m, p, "local-only", false)
	item.Visible = v.boolField(m, p, "visible", true)
	if raw, present := m["callback"]; present {
		if cb, ok := asString(raw); ok && reSymbol.MatchString(cb) {
			item.Callback = cb
		} else {
			v.add(IssueAt(p.Field("callback"), CodeSchemaViolation, "pattern", map[string]any{"got": raw}))
		}
	}
}

func (v *validator) validateAnalog(m map[string]any, p PathRef) *AnalogSpec {
	spec := &AnalogSpec{Divisor: 1}
	spec.Max = v.optIntField(m, p, "max")
	spec.Min = v.optIntField(m, p, "min")
	spec.Precision = v.optIntField(m, p, "precision")
	spec.Offset = v.optIntField(m, p, "offset")
	if spec.Max == nil && spec.Precision == nil {
		v.add(IssueAt(p, CodeSchemaViolation, "required_one_of", map[string]any{"fields": "max, precision"}))
	}
	if d := v.optIntField(m, p, "divisor"); d != nil {
		spec.Divisor = *d
	}
	if raw, present := m["unit"]; present {
		if unit, ok := asString(raw); ok {
			spec.Unit = unit
		} else {
			v.add(IssueAt(p.Field("unit"), CodeSchemaViolation, "invalid_type", map[string]any{"expected": "string"}))
		}
	}
	return spec
}

func (v *validator) validateLargeNumber(m map[string]any, p PathRef) *LargeNumberSpec {
	spec := &LargeNumberSpec{Length: 12}
	spec.DecimalPlaces = v.rangedIntField(m, p, "decimal-places", 0, 0, 9)
	spec.Length = v.rangedIntField(m, p, "length", 12, 1, 12)
	spec.Signed = v.boolField(m, p, "signed", false)
	return spec
}

func (v *validator) validateFloat(m map[string]any, p PathRef) *FloatSpec {
	return &FloatSpec{DecimalPlaces: v.rangedIntField(m, p, "decimal-places", 2, 0, 65535)}
}

func (v *validator) validateEnum(m map[string]any, p PathRef) *EnumSpec {
	raw, present := m["options"]
	list, ok := asList(raw)
	if !present || !ok || len(list) == 0 {
		v.add(IssueAt(p.Field("options"), CodeSchemaViolation, "min_items", map[string]any{"field": "options"}))
		return nil
	}
	spec := &EnumSpec{Options: make([]string, 0, len(list))}
	for i, o := range list {
		s, ok := asString(o)
		if !ok {
			v.add(IssueAt(p.Field("options").Index(i), CodeSchemaViolation, "invalid_type", map[string]any{"expected": "string"}))
			continue
		}
		spec.Options = append(spec.Options, s)
	}
	return spec
}

func (v *validator) validateScroll(m map[string]any, p PathRef) *ScrollSpec {
	spec := &ScrollSpec{}
	spec.ItemSize = v.rangedIntField(m, p, "item-size", -1, 1, 255)
	spec.ItemCount = v.rangedIntField(m, p, "items", -1, 1, 65535)
	if _, present := m["item-size"]; !present {
		v.add(IssueAt(p.Field("item-size"), CodeSchemaViolation, "required", map[string]any{"field": "item-size"}))
	}
	if _, present := m["items"]; !present {
		v.add(IssueAt(p.Field("items"), CodeSchemaViolation, "required", map[string]any{"field": "items"}))
	}
	ds, ok := asString(m["data-source"])
	if !ok || ds == "" {
		v.add(IssueAt(p.Field("data-source"), CodeSchemaViolation, "required", map[string]any{"field": "data-source"}))
		return spec
	}
	mode, _, ok := splitDataSource(ds)
	if !ok {
		v.add(IssueAt(p.Field("data-source"), CodeSchemaViolation, "pattern", map[string]any{"got": ds, "expected": "<mode>:<identifier>"}))
		return spec
	}
	if _, known := scrollModes[mode]; !known {
		v.add(IssueAt(p.Field("data-source"), CodeSchemaViolation, "invalid_enum", map[string]any{"got": mode}))
		return spec
	}
	spec.DataSource = ds
	return spec
}

func (v *validator) validateBoolean(m map[string]any, p PathRef, defaultResponse string) *BooleanSpec {
	spec := &BooleanSpec{Response: defaultResponse}
	if raw, present := m["response"]; present {
		resp, ok := asString(raw)
		if !ok || !booleanResponses[resp] {
			v.add(IssueAt(p.Field("response"), CodeSchemaViolation, "invalid_enum", map[string]any{"got": raw}))
		} else {
			spec.Response = resp
		}
	}
	return spec
}

func (v *validator) validateSubmenu(m map[string]any, p PathRef, id NodeID) *SubmenuSpec {
	spec := &SubmenuSpec{Auth: v.boolField(m, p, "auth", false)}
	items, ok := asList(m["items"])
	if !ok || len(items) == 0 {
		v.add(IssueAt(p.Field("items"), CodeSchemaViolation, "min_items", map[string]any{"field": "items"}))
		return spec
	}
	spec.Children = v.validateItems(items, p.Field("items"), id)
	return spec
}

// ---- field coercion helpers ----

func (v *validator) boolField(m map[string]any, p PathRef, key string, def bool) bool {
	raw, present := m[key]
	if !present {
		return def
	}
	b, ok := raw.(bool)
	if !ok {
		v.add(IssueAt(p.Field(key), CodeSchemaViolation, "invalid_type", map[string]any{"expected": "bool", "got": raw}))
		return def
	}
	return b
}

func (v *validator) optIntField(m map[string]any, p PathRef, key string) *int {
	raw, present := m[key]
	if !present {
		return nil
	}
	n, ok := asInt(raw)
	if !ok {
		v.add(IssueAt(p.Field(key), CodeSchemaViolation, "invalid_type", map[string]any{"expected": "integer", "got": raw}))
		return nil
	}
	return &n
}

func (v *validator) rangedIntField(m map[string]any, p PathRef, key string, def, min, max int) int {
	raw, present := m[key]
	if !present {
		return def
	}
	n, ok := asInt(raw)
	if !ok {
		v.add(IssueAt(p.Field(key), CodeSchemaViolation, "invalid_type", map[string]any{"expected": "integer", "got": raw}))
		return def
	}
	if n < min || n > max {
		v.add(IssueAt(p.Field(key), CodeSchemaViolation, "out_of_range", map[string]any{"min": min, "max": max, "got": n}))
		return def
	}
	return n
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// asInt accepts the integer representations produced by the YAML and JSON
// sources.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
