package menucc_test

import (
	"testing"

	menucc "github.com/menucc/menucc"
)

func TestValidateRejectsMissingName(t *testing.T) {
	d := doc(map[string]any{"type": "action", "name": "Reset"})
	delete(d, "name")
	iss := compileIssues(t, d, nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/name")
}

func TestValidateRejectsNonCanonicalUUID(t *testing.T) {
	for _, bad := range []string{
		"",
		"not-a-uuid",
		"0A1B2C3D4E5F60718293A4B5C6D7E8F9",       // no dashes
		"{0a1b2c3d-4e5f-4071-8293-a4b5c6d7e8f9}", // braced form
		"urn:uuid:0a1b2c3d-4e5f-4071-8293-a4b5c6d7e8f9",   // URN form
		"0a1b2c3d-4e5f-4071-8293-a4b5c6d7e8f9-deadbeef00", // trailing junk
	} {
		d := doc(map[string]any{"type": "action", "name": "Reset"})
		d["uuid"] = bad
		iss := compileIssues(t, d, nil)
		wantIssue(t, iss, menucc.CodeSchemaViolation, "/uuid")
	}
}

func TestValidateRejectsUnknownTopLevelKey(t *testing.T) {
	d := doc(map[string]any{"type": "action", "name": "Reset"})
	d["extra"] = 1
	iss := compileIssues(t, d, nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/extra")
}

func TestValidateRejectsEmptyItems(t *testing.T) {
	iss := compileIssues(t, doc(), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items")
}

func TestValidateRejectsUnknownType(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{"type": "dial", "name": "Gain"}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/type")
}

func TestValidateRejectsUnknownVariantField(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{
		"type": "boolean", "name": "Power", "options": []any{"A"},
	}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/options")
}

func TestValidateNameLengthBounds(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{"type": "action", "name": ""}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/name")

	iss = compileIssues(t, doc(map[string]any{"type": "action", "name": "This Name Is Twenty!"}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/name")

	// 19 characters is the ceiling, not past it.
	mustCompile(t, doc(map[string]any{"type": "action", "name": "Exactly 19 Charss!!"}), nil)
}

func TestValidateAnalogRequiresMaxOrPrecision(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{"type": "analog", "name": "Gain"}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0")
}

func TestValidateEnumRequiresOptions(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{"type": "enum", "name": "Mode"}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/options")

	iss = compileIssues(t, doc(map[string]any{"type": "enum", "name": "Mode", "options": []any{}}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/options")
}

func TestValidateSubmenuRequiresChildren(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{
		"type": "submenu", "name": "Settings", "items": []any{},
	}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/items")
}

func TestValidateScrollDataSourceShape(t *testing.T) {
	base := func(ds any) map[string]any {
		m := map[string]any{"type": "scroll-choice", "name": "Preset", "item-size": 10, "items": 4}
		if ds != nil {
			m["data-source"] = ds
		}
		return m
	}
	iss := compileIssues(t, doc(base(nil)), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/data-source")

	iss = compileIssues(t, doc(base("presetNames")), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/data-source")

	iss = compileIssues(t, doc(base("flash:presetNames")), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/data-source")
}

func TestValidateBooleanResponseEnum(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{
		"type": "boolean", "name": "Power", "response": "maybe",
	}), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/response")
}

func TestValidateBooleanAliasPicksResponse(t *testing.T) {
	res := mustCompile(t, doc(
		map[string]any{"type": "switch", "name": "Backlight"},
		map[string]any{"type": "yesno", "name": "Confirm"},
		map[string]any{"type": "boolean", "name": "Power"},
	), nil)
	if got := itemByIdent(t, res, "backlight").Boolean.Response; got != "on-off" {
		t.Fatalf("switch response = %q", got)
	}
	if got := itemByIdent(t, res, "confirm").Boolean.Response; got != "yes-no" {
		t.Fatalf("yesno response = %q", got)
	}
	if got := itemByIdent(t, res, "power").Boolean.Response; got != "true-false" {
		t.Fatalf("boolean response = %q", got)
	}
}

func TestValidateCollectsAcrossSiblings(t *testing.T) {
	iss := compileIssues(t, doc(
		map[string]any{"type": "dial", "name": "Gain"},
		map[string]any{"type": "enum", "name": "Mode"},
	), nil)
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/0/type")
	wantIssue(t, iss, menucc.CodeSchemaViolation, "/items/1/options")
}

func TestValidateFailFastStopsAtFirstIssue(t *testing.T) {
	_, err := menucc.Compile(doc(
		map[string]any{"type": "dial", "name": "Gain"},
		map[string]any{"type": "enum", "name": "Mode"},
	), nil, menucc.CompileOpt{FailFast: true, Capacity: 4096})
	iss, ok := menucc.AsIssues(err)
	if !ok {
		t.Fatalf("err = %v, want Issues", err)
	}
	if len(iss) != 1 {
		t.Fatalf("fail-fast collected %d issues, want 1", len(iss))
	}
}

func TestValidateMenuIDsFollowDeclarationOrder(t *testing.T) {
	res := mustCompile(t, doc(
		map[string]any{"type": "boolean", "name": "Power"},
		map[string]any{"type": "submenu", "name": "Settings", "items": []any{
			map[string]any{"type": "action", "name": "Reset"},
		}},
	), nil)
	if got := itemByIdent(t, res, "power").MenuID; got != 1 {
		t.Fatalf("power menu id = %d", got)
	}
	if got := itemByIdent(t, res, "settings").MenuID; got != 2 {
		t.Fatalf("settings menu id = %d", got)
	}
	if got := itemByIdent(t, res, "reset").MenuID; got != 3 {
		t.Fatalf("reset menu id = %d", got)
	}
}
