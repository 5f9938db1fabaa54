package menucc_test

import (
	"testing"

	menucc "github.com/menucc/menucc"
	"github.com/menucc/menucc/eeprom"
)

const testUUID = "0a1b2c3d-4e5f-4071-8293-a4b5c6d7e8f9"

func doc(items ...any) map[string]any {
	return map[string]any{
		"name":  "Device Menu",
		"uuid":  testUUID,
		"items": items,
	}
}

func mustCompile(t *testing.T, d map[string]any, led *eeprom.Ledger) *menucc.Result {
	t.Helper()
	res, err := menucc.Compile(d, led, menucc.CompileOpt{Capacity: 4096})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return res
}

func compileIssues(t *testing.T, d map[string]any, led *eeprom.Ledger) menucc.Issues {
	t.Helper()
	_, err := menucc.Compile(d, led, menucc.CompileOpt{Capacity: 4096})
	if err == nil {
		t.Fatal("compile succeeded, want issues")
	}
	iss, ok := menucc.AsIssues(err)
	if !ok {
		t.Fatalf("err = %v, want Issues", err)
	}
	return iss
}

func findIssue(iss menucc.Issues, code string) (menucc.Issue, bool) {
	for _, it := range iss {
		if it.Code == code {
			return it, true
		}
	}
	return menucc.Issue{}, false
}

func wantIssue(t *testing.T, iss menucc.Issues, code, path string) menucc.Issue {
	t.Helper()
	for _, it := range iss {
		if it.Code == code && it.Path == path {
			return it
		}
	}
	t.Fatalf("no %s at %s in %v", code, path, iss)
	return menucc.Issue{}
}

func itemByIdent(t *testing.T, res *menucc.Result, ident string) *menucc.Item {
	t.Helper()
	var found *menucc.Item
	res.Tree.Walk(func(id menucc.NodeID, it *menucc.Item) bool {
		if it.Ident == ident {
			found = it
			return false
		}
		return true
	})
	if found == nil {
		t.Fatalf("no item with ident %q", ident)
	}
	return found
}
