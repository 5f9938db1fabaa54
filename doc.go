// Package menucc compiles a declarative menu descriptor into a fully linked,
// emission-ready menu structure for the tcMenu embedded runtime.
//
// The compiler is a single-pass batch transformation:
//
//	raw tree -> validated tree -> analyzed tree -> (identifiers, EEPROM slots)
//	         -> linear emission order
//
// It provides:
//
//   - A stable error model via Issues (JSON Pointer path, code, message)
//   - A closed item model over the eight menu item kinds with exhaustive dispatch
//   - Deterministic, collision-resolved identifier allocation
//   - Append-only EEPROM slot allocation that never moves a previously
//     assigned offset (see the eeprom package)
//   - Linearization into an order that needs no forward declarations downstream
//
// Design policy:
//   - Keep the public model and pipeline in the root package.
//   - Place descriptor loading under source/, ledger persistence under eeprom/,
//     C++ emission under emit/, and the CLI under cmd/menucc.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	doc, err := yamlsource.Load(descBytes)
//	led, err := eeprom.LoadYAML(mapBytes)
//	res, err := menucc.Compile(doc, led, menucc.CompileOpt{})
//	out, err := emit.Generate(res, emit.Options{InstanceName: "frontpanel"})
package menucc
