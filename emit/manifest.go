package emit

import (
	j "github.com/goccy/go-json"

	menucc "github.com/menucc/menucc"
)

// Manifest is the machine-readable form of the emission contract: every
// linked item with its resolved references and slot, the root identifier and
// the callback set. External tooling consumes it instead of scraping the
// generated C++.
type Manifest struct {
	Name      string             `json:"name"`
	UUID      string             `json:"uuid"`
	Root      string             `json:"root"`
	Items     []ManifestItem     `json:"items"`
	Callbacks []ManifestCallback `json:"callbacks,omitempty"`
}

// ManifestItem is one linked item in emission order.
type ManifestItem struct {
	Kind    string         `json:"kind"`
	Back    bool           `json:"back,omitempty"`
	Ident   string         `json:"ident"`
	Name    string         `json:"name"`
	Next    string         `json:"next,omitempty"`
	Child   string         `json:"child,omitempty"`
	BackRef string         `json:"backRef,omitempty"`
	Offset  *uint          `json:"offset,omitempty"`
	Size    *uint          `json:"size,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// ManifestCallback is one user callback symbol with its prototype shape.
type ManifestCallback struct {
	Kind   string `json:"kind"`
	Symbol string `json:"symbol"`
}

// BuildManifest projects a compile result onto the manifest model.
func BuildManifest(res *menucc.Result) *Manifest {
	m := &Manifest{
		Name: res.Tree.Name,
		UUID: res.Tree.UUID,
		Root: res.Linear.RootIdent,
	}
	for _, li := range res.Linear.Order {
		item := ManifestItem{
			Kind:    li.Kind.String(),
			Back:    li.Back,
			Ident:   li.Ident,
			Name:    li.Name,
			Next:    li.Next,
			Child:   li.Child,
			BackRef: li.BackRef,
		}
		if li.Slot != nil {
			offset, size := li.Slot.Offset, li.Slot.Size
			item.Offset, item.Size = &offset, &size
		}
		if !li.Back {
			item.Attrs = itemAttrs(res.Tree.Item(li.Node))
		}
		m.Items = append(m.Items, item)
	}
	for _, cb := range res.Linear.Callbacks {
		kind := "on_change"
		if cb.Kind == menucc.CallbackOnRender {
			kind = "on_render"
		}
		m.Callbacks = append(m.Callbacks, ManifestCallback{Kind: kind, Symbol: cb.Symbol})
	}
	return m
}

// MarshalManifest renders the manifest as indented JSON.
func MarshalManifest(res *menucc.Result) ([]byte, error) {
	return j.MarshalIndent(BuildManifest(res), "", "  ")
}

// itemAttrs collects the pass-through display and formatting attributes.
func itemAttrs(it *menucc.Item) map[string]any {
	attrs := map[string]any{}
	if it.ReadOnly {
		attrs["readOnly"] = true
	}
	if it.LocalOnly {
		attrs["localOnly"] = true
	}
	if !it.Visible {
		attrs["visible"] = false
	}
	if it.Callback != "" {
		attrs["callback"] = it.Callback
	}
	switch it.Kind {
	case menucc.KindAnalog:
		attrs["offset"] = it.Analog.ResOffset
		attrs["range"] = it.Analog.ResRange
		attrs["divisor"] = it.Analog.Divisor
		if it.Analog.Unit != "" {
			attrs["unit"] = it.Analog.Unit
		}
	case menucc.KindLargeNumber:
		attrs["length"] = it.LargeNumber.Length
		attrs["decimalPlaces"] = it.LargeNumber.DecimalPlaces
		attrs["signed"] = it.LargeNumber.Signed
	case menucc.KindFloat:
		attrs["decimalPlaces"] = it.Float.DecimalPlaces
	case menucc.KindEnum:
		attrs["options"] = it.Enum.Options
	case menucc.KindScroll:
		attrs["itemSize"] = it.Scroll.ItemSize
		attrs["itemCount"] = it.Scroll.ItemCount
		attrs["dataSource"] = it.Scroll.DataSource
	case menucc.KindBoolean:
		attrs["response"] = it.Boolean.Response
	case menucc.KindSubmenu:
		if it.Submenu.Auth {
			attrs["auth"] = true
		}
	case menucc.KindAction:
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
