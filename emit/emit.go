// Package emit turns a compiled menu into tcMenu C++ source. The linear
// order produced by the compiler already declares every referenced item
// first, so the generated translation unit needs no forward declarations
// beyond the header externs.
package emit

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	menucc "github.com/menucc/menucc"
	"github.com/menucc/menucc/eeprom"
)

// Options configures the emitter.
type Options struct {
	// InstanceName names the generated files and the menu instance.
	InstanceName string
	// PGMSpace adds PROGMEM qualifiers for AVR-style flash placement.
	PGMSpace bool
}

// Output holds the four generated files.
type Output struct {
	Source         []byte // <instance>_desc.cpp
	Header         []byte // <instance>.h
	CallbackHeader []byte // <instance>_callback.h
	ExtraHeader    []byte // <instance>_extra.h
}

const banner = `/**
 * Automatically managed by menucc.
 *
 * DO NOT manually edit this file. Changes made in this file will be overwritten
 * on next descriptor generation.
 */
`

var sourceTmpl = template.Must(template.New("source").Parse(banner + `
{{if .PGMSpace}}#include <Arduino.h>
{{end}}#include <tcMenu.h>
#include "{{.HeaderName}}"

const {{if .PGMSpace}}PROGMEM {{end}}ConnectorLocalInfo applicationInfo = { {{.AppName}}, {{.UUID}} };

{{.Items}}
void setupMenuDefaults() {
{{.Defaults}}}
`))

var headerTmpl = template.Must(template.New("header").Parse(banner + `
#pragma once
#include <tcMenu.h>

#include "{{.CallbackHeaderName}}"
#include "{{.ExtraHeaderName}}"

extern const ConnectorLocalInfo applicationInfo;

{{.Externs}}
constexpr MenuItem *getRootMenuItem() { return &{{.RootIdent}}; }

void setupMenuDefaults();
`))

var callbackTmpl = template.Must(template.New("callback").Parse(banner + `
#pragma once
#include <tcMenu.h>
#include <stdint.h>

{{.Prototypes}}`))

var extraTmpl = template.Must(template.New("extra").Parse(banner + `
#pragma once
#include <ScrollChoiceMenuItem.h>
#include <EditableLargeNumberMenuItem.h>
`))

// Generate renders the full output for a compile result.
func Generate(res *menucc.Result, opt Options) (*Output, error) {
	if opt.InstanceName == "" {
		return nil, fmt.Errorf("emit: instance name is required")
	}
	g := &generator{res: res, opt: opt}
	out := &Output{}
	var err error
	if out.Source, err = g.source(); err != nil {
		return nil, err
	}
	if out.Header, err = g.header(); err != nil {
		return nil, err
	}
	if out.CallbackHeader, err = g.callbackHeader(); err != nil {
		return nil, err
	}
	if out.ExtraHeader, err = render(extraTmpl, nil); err != nil {
		return nil, err
	}
	return out, nil
}

type generator struct {
	res *menucc.Result
	opt Options
}

func render(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *generator) source() ([]byte, error) {
	var items strings.Builder
	for _, li := range g.res.Linear.Order {
		g.renderItem(&items, li)
	}
	var defaults strings.Builder
	g.res.Tree.Walk(func(_ menucc.NodeID, it *menucc.Item) bool {
		if it.ReadOnly {
			fmt.Fprintf(&defaults, "    %s.setReadOnly(true);\n", it.Ident)
		}
		if it.LocalOnly {
			fmt.Fprintf(&defaults, "    %s.setLocalOnly(true);\n", it.Ident)
		}
		if !it.Visible {
			fmt.Fprintf(&defaults, "    %s.setVisible(false);\n", it.Ident)
		}
		return true
	})
	return render(sourceTmpl, map[string]any{
		"PGMSpace":   g.opt.PGMSpace,
		"HeaderName": g.opt.InstanceName + ".h",
		"AppName":    cppstr(g.res.Tree.Name),
		"UUID":       cppstr(g.res.Tree.UUID),
		"Items":      items.String(),
		"Defaults":   defaults.String(),
	})
}

func (g *generator) header() ([]byte, error) {
	var externs strings.Builder
	for _, li := range g.res.Linear.Order {
		fmt.Fprintf(&externs, "extern %s %s;\n", g.itemType(li), li.Ident)
	}
	return render(headerTmpl, map[string]any{
		"CallbackHeaderName": g.opt.InstanceName + "_callback.h",
		"ExtraHeaderName":    g.opt.InstanceName + "_extra.h",
		"Externs":            externs.String(),
		"RootIdent":          g.res.Linear.RootIdent,
	})
}

func (g *generator) callbackHeader() ([]byte, error) {
	var protos strings.Builder
	for _, cb := range g.res.Linear.Callbacks {
		switch cb.Kind {
		case menucc.CallbackOnChange:
			fmt.Fprintf(&protos, "void %s(int id);\n", cb.Symbol)
		case menucc.CallbackOnRender:
			fmt.Fprintf(&protos, "int %s(RuntimeMenuItem* item, uint8_t row, RenderFnMode mode, char* buffer, int bufferSize);\n", cb.Symbol)
		}
	}
	return render(callbackTmpl, map[string]any{"Prototypes": protos.String()})
}

// itemType maps a linked item onto its runtime C++ type.
func (g *generator) itemType(li menucc.LinkedItem) string {
	if li.Back {
		return "BackMenuItem"
	}
	switch li.Kind {
	case menucc.KindAnalog:
		return "AnalogMenuItem"
	case menucc.KindLargeNumber:
		return "EditableLargeNumberMenuItem"
	case menucc.KindFloat:
		return "FloatMenuItem"
	case menucc.KindEnum:
		return "EnumMenuItem"
	case menucc.KindScroll:
		return "ScrollChoiceMenuItem"
	case menucc.KindBoolean:
		return "BooleanMenuItem"
	case menucc.KindSubmenu:
		return "SubMenuItem"
	case menucc.KindAction:
		return "ActionMenuItem"
	}
	return "MenuItem"
}

func (g *generator) renderItem(w *strings.Builder, li menucc.LinkedItem) {
	if li.Back {
		g.renderBack(w, li)
		return
	}
	it := g.res.Tree.Item(li.Node)
	switch li.Kind {
	case menucc.KindAnalog:
		spec := it.Analog
		g.staticItem(w, li, it, "Analog", "Analog",
			[]string{itoa(spec.ResRange), callbackRef(it), itoa(spec.ResOffset), itoa(spec.Divisor), cppstr(spec.Unit)},
			[]string{"0"})
	case menucc.KindFloat:
		g.staticItem(w, li, it, "Float", "Float",
			[]string{itoa(it.Float.DecimalPlaces), callbackRef(it)}, nil)
	case menucc.KindEnum:
		g.renderEnum(w, li, it)
	case menucc.KindBoolean:
		g.staticItem(w, li, it, "Boolean", "Boolean",
			[]string{"1", callbackRef(it), namingSym(it.Boolean.Response)},
			[]string{"false"})
	case menucc.KindSubmenu:
		g.staticItem(w, li, it, "Sub", "Sub",
			[]string{"0", callbackRef(it)},
			[]string{"&" + li.BackRef})
	case menucc.KindAction:
		g.staticItem(w, li, it, "Any", "Action",
			[]string{"0", callbackRef(it)}, nil)
	case menucc.KindLargeNumber:
		g.renderLargeNumber(w, li, it)
	case menucc.KindScroll:
		g.renderScroll(w, li, it)
	}
}

// staticItem emits the MenuInfo/MenuItem pair shared by the flash-resident
// kinds: the info block carries (name, id, eeprom) plus variant fields, the
// item wires info, variant extras and the next reference.
func (g *generator) staticItem(w *strings.Builder, li menucc.LinkedItem, it *menucc.Item, infoPrefix, itemPrefix string, infoExtra, itemExtra []string) {
	info := append([]string{cppstr(it.Name), itoa(it.MenuID), offsetHex(li.Slot)}, infoExtra...)
	fmt.Fprintf(w, "const %s%sMenuInfo minfo_%s = { %s };\n",
		g.pgm(), infoPrefix, li.Ident, strings.Join(info, ", "))
	args := append([]string{"&minfo_" + li.Ident}, itemExtra...)
	args = append(args, nextRef(li))
	fmt.Fprintf(w, "%sMenuItem %s(%s);\n\n", itemPrefix, li.Ident, strings.Join(args, ", "))
}

func (g *generator) renderEnum(w *strings.Builder, li menucc.LinkedItem, it *menucc.Item) {
	table := "enumstr_" + li.Ident
	for i, opt := range it.Enum.Options {
		fmt.Fprintf(w, "const %schar %s_%d[] = %s;\n", g.pgm(), table, i, cppstr(opt))
	}
	refs := make([]string, len(it.Enum.Options))
	for i := range it.Enum.Options {
		refs[i] = fmt.Sprintf("%s_%d", table, i)
	}
	fmt.Fprintf(w, "const %schar * const %s[] = { %s };\n", g.pgm(), table, strings.Join(refs, ", "))
	g.staticItem(w, li, it, "Enum", "Enum",
		[]string{itoa(len(it.Enum.Options) - 1), callbackRef(it), table},
		[]string{"0"})
}

func (g *generator) renderLargeNumber(w *strings.Builder, li menucc.LinkedItem, it *menucc.Item) {
	fn := renderFn(li.Ident)
	fmt.Fprintf(w, "RENDERING_CALLBACK_NAME_INVOKE(%s, largeNumItemRenderFn, %s, %s, %s)\n",
		fn, cppstr(it.Name), offsetHex(li.Slot), callbackRef(it))
	spec := it.LargeNumber
	fmt.Fprintf(w, "EditableLargeNumberMenuItem %s(%s, %d, %d, %d, %t, %s);\n\n",
		li.Ident, fn, it.MenuID, spec.Length, spec.DecimalPlaces, spec.Signed, nextRef(li))
}

func (g *generator) renderScroll(w *strings.Builder, li menucc.LinkedItem, it *menucc.Item) {
	spec := it.Scroll
	switch {
	case spec.Mode.EEPROMBacked():
		fn := renderFn(li.Ident)
		seg, _ := g.res.Ledger.SpareSegment(spec.Address)
		fmt.Fprintf(w, "RENDERING_CALLBACK_NAME_INVOKE(%s, enumItemRenderFn, %s, %s, %s)\n",
			fn, cppstr(it.Name), offsetHex(li.Slot), callbackRef(it))
		fmt.Fprintf(w, "ScrollChoiceMenuItem %s(%d, %s, 0, %d, %d, %d, %s);\n\n",
			li.Ident, it.MenuID, fn, seg.Offset, spec.ItemSize, spec.ItemCount, nextRef(li))
	case spec.Mode == menucc.ScrollRAM || spec.Mode == menucc.ScrollArrayInRAM:
		fn := renderFn(li.Ident)
		fmt.Fprintf(w, "extern const char * %s;\n", spec.Address)
		fmt.Fprintf(w, "RENDERING_CALLBACK_NAME_INVOKE(%s, enumItemRenderFn, %s, %s, %s)\n",
			fn, cppstr(it.Name), offsetHex(li.Slot), callbackRef(it))
		fmt.Fprintf(w, "ScrollChoiceMenuItem %s(%d, %s, 0, %s, %d, %d, %s);\n\n",
			li.Ident, it.MenuID, fn, spec.Address, spec.ItemSize, spec.ItemCount, nextRef(li))
	default: // custom render callback
		fmt.Fprintf(w, "ScrollChoiceMenuItem %s(%d, %s, 0, %d, %s);\n\n",
			li.Ident, it.MenuID, spec.Address, spec.ItemCount, nextRef(li))
	}
}

func (g *generator) renderBack(w *strings.Builder, li menucc.LinkedItem) {
	fn := renderFn(li.Ident)
	fmt.Fprintf(w, "RENDERING_CALLBACK_NAME_INVOKE(%s, backSubItemRenderFn, %s, 0xffff, NO_CALLBACK)\n",
		fn, cppstr(li.Name))
	fmt.Fprintf(w, "BackMenuItem %s(%s, %s);\n\n", li.Ident, fn, nextRef(li))
}

func (g *generator) pgm() string {
	if g.opt.PGMSpace {
		return "PROGMEM "
	}
	return ""
}

func renderFn(ident string) string { return "fn_" + ident + "_rtcall" }

func nextRef(li menucc.LinkedItem) string {
	if li.Next == "" {
		return "nullptr"
	}
	return "&" + li.Next
}

func callbackRef(it *menucc.Item) string {
	if it.Callback == "" {
		return "NO_CALLBACK"
	}
	return it.Callback
}

// offsetHex renders the EEPROM location, 0xffff for non-persistent items.
func offsetHex(slot *eeprom.Slot) string {
	if slot == nil {
		return "0xffff"
	}
	return fmt.Sprintf("0x%04x", slot.Offset)
}

func namingSym(response string) string {
	switch response {
	case "on-off":
		return "NAMING_ON_OFF"
	case "yes-no":
		return "NAMING_YES_NO"
	default:
		return "NAMING_TRUE_FALSE"
	}
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }

func cppstr(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
