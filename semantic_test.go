package menucc_test

import (
	"testing"

	menucc "github.com/menucc/menucc"
)

func TestAnalyzeAnalogMinOffsetConflict(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{
		"type": "analog", "name": "Gain", "max": 10, "min": 1, "offset": 1,
	}), nil)
	wantIssue(t, iss, menucc.CodeSemanticConflict, "/items/0")
}

func TestAnalyzeAnalogMaxPrecisionConflict(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{
		"type": "analog", "name": "Gain", "max": 10, "precision": 100,
	}), nil)
	wantIssue(t, iss, menucc.CodeSemanticConflict, "/items/0")
}

func TestAnalyzeAnalogDerivation(t *testing.T) {
	res := mustCompile(t, doc(
		map[string]any{"type": "analog", "name": "Temp", "min": -10, "max": 50},
		map[string]any{"type": "analog", "name": "Raw", "precision": 100, "offset": 5},
		map[string]any{"type": "analog", "name": "Plain", "max": 255},
	), nil)

	temp := itemByIdent(t, res, "temp").Analog
	if temp.ResOffset != -10 || temp.ResRange != 60 {
		t.Fatalf("temp resolved to offset %d range %d", temp.ResOffset, temp.ResRange)
	}
	raw := itemByIdent(t, res, "raw").Analog
	if raw.ResOffset != 5 || raw.ResRange != 100 {
		t.Fatalf("raw resolved to offset %d range %d", raw.ResOffset, raw.ResRange)
	}
	plain := itemByIdent(t, res, "plain").Analog
	if plain.ResOffset != 0 || plain.ResRange != 255 {
		t.Fatalf("plain resolved to offset %d range %d", plain.ResOffset, plain.ResRange)
	}
}

func TestAnalyzeAnalogRangeUnrepresentable(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{
		"type": "analog", "name": "Gain", "min": 0, "max": 0,
	}), nil)
	wantIssue(t, iss, menucc.CodeSemanticConflict, "/items/0")

	iss = compileIssues(t, doc(map[string]any{
		"type": "analog", "name": "Gain", "min": 0, "max": 70000,
	}), nil)
	wantIssue(t, iss, menucc.CodeSemanticConflict, "/items/0")
}

func TestAnalyzeAnalogDivisor(t *testing.T) {
	// 2^a * 5^b divisors render exactly in decimal.
	for _, ok := range []int{1, 2, 4, 5, 8, 10, 100} {
		mustCompile(t, doc(map[string]any{
			"type": "analog", "name": "Volt", "max": 500, "divisor": ok,
		}), nil)
	}
	for _, bad := range []int{0, -1, 3, 7, 12} {
		iss := compileIssues(t, doc(map[string]any{
			"type": "analog", "name": "Volt", "max": 500, "divisor": bad,
		}), nil)
		wantIssue(t, iss, menucc.CodeSemanticConflict, "/items/0/divisor")
	}
}

func TestAnalyzePersistentOnNonPersistable(t *testing.T) {
	for i, item := range []map[string]any{
		{"type": "float", "name": "Reading", "persistent": true},
		{"type": "action", "name": "Reset", "persistent": true},
		{"type": "submenu", "name": "Settings", "persistent": true, "items": []any{
			map[string]any{"type": "action", "name": "Reset"},
		}},
	} {
		iss := compileIssues(t, doc(item), nil)
		if _, ok := findIssue(iss, menucc.CodeSemanticConflict); !ok {
			t.Fatalf("case %d: no semantic conflict in %v", i, iss)
		}
	}
}

func TestAnalyzeScrollModeSplit(t *testing.T) {
	res := mustCompile(t, doc(
		map[string]any{"type": "scroll-choice", "name": "Preset", "item-size": 10, "items": 4,
			"data-source": "ram:presetNames"},
		map[string]any{"type": "scroll-choice", "name": "Effect", "item-size": 8, "items": 3,
			"data-source": "custom-renderfn:renderEffect"},
	), nil)

	preset := itemByIdent(t, res, "preset").Scroll
	if preset.Mode != menucc.ScrollRAM || preset.Address != "presetNames" {
		t.Fatalf("preset resolved to %v %q", preset.Mode, preset.Address)
	}
	effect := itemByIdent(t, res, "effect").Scroll
	if effect.Mode != menucc.ScrollCustomRenderFn || effect.Address != "renderEffect" {
		t.Fatalf("effect resolved to %v %q", effect.Mode, effect.Address)
	}
}

func TestAnalyzeScrollRAMAddressMustBeSymbol(t *testing.T) {
	iss := compileIssues(t, doc(map[string]any{
		"type": "scroll-choice", "name": "Preset", "item-size": 10, "items": 4,
		"data-source": "ram:preset-names",
	}), nil)
	wantIssue(t, iss, menucc.CodeSemanticConflict, "/items/0/data-source")
}

func TestAnalyzeSlugFailure(t *testing.T) {
	// A name with no symbol characters cannot seed an identifier.
	iss := compileIssues(t, doc(map[string]any{"type": "action", "name": "!!!"}), nil)
	wantIssue(t, iss, menucc.CodeSemanticConflict, "/items/0/name")
}

func TestAnalyzeSeedDerivation(t *testing.T) {
	res := mustCompile(t, doc(
		map[string]any{"type": "action", "name": "Factory Reset"},
		map[string]any{"type": "action", "name": "Self Test", "id-suffix": "2nd"},
		map[string]any{"type": "action", "name": "Whatever", "id": "doThing"},
	), nil)
	if got := itemByIdent(t, res, "factoryreset").Seed; got != "factoryreset" {
		t.Fatalf("seed = %q", got)
	}
	if got := itemByIdent(t, res, "selftest2nd").Seed; got != "selftest2nd" {
		t.Fatalf("suffixed seed = %q", got)
	}
	if got := itemByIdent(t, res, "doThing").Seed; got != "doThing" {
		t.Fatalf("explicit id seed = %q", got)
	}
}
