package yamlsource_test

import (
	"testing"

	yamlsource "github.com/menucc/menucc/source/yaml"
)

func TestLoadNormalizesNestedMaps(t *testing.T) {
	doc, err := yamlsource.Load([]byte(`
name: Device Menu
uuid: 0a1b2c3d-4e5f-4071-8293-a4b5c6d7e8f9
items:
  - type: analog
    name: Temp
    min: -10
    max: 50
    persistent: true
  - type: submenu
    name: Settings
    items:
      - type: action
        name: Reset
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc["name"] != "Device Menu" {
		t.Fatalf("name = %v", doc["name"])
	}
	items, ok := doc["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("items = %T %v", doc["items"], doc["items"])
	}
	temp, ok := items[0].(map[string]any)
	if !ok {
		t.Fatalf("item 0 = %T", items[0])
	}
	if temp["min"] != -10 || temp["persistent"] != true {
		t.Fatalf("temp = %v", temp)
	}
	sub, ok := items[1].(map[string]any)
	if !ok {
		t.Fatalf("item 1 = %T", items[1])
	}
	nested, ok := sub["items"].([]any)
	if !ok || len(nested) != 1 {
		t.Fatalf("nested items = %T %v", sub["items"], sub["items"])
	}
	if _, ok := nested[0].(map[string]any); !ok {
		t.Fatalf("nested item = %T", nested[0])
	}
}

func TestLoadRejectsNonMappingRoot(t *testing.T) {
	if _, err := yamlsource.Load([]byte("- just\n- a\n- list\n")); err == nil {
		t.Fatal("expected an error for a sequence root")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	if _, err := yamlsource.Load([]byte(":\n  - {")); err == nil {
		t.Fatal("expected a parse error")
	}
}
