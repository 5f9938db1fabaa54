package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	menucc "github.com/menucc/menucc"
	"github.com/menucc/menucc/eeprom"
	"github.com/menucc/menucc/emit"
	jsonsource "github.com/menucc/menucc/source/json"
	yamlsource "github.com/menucc/menucc/source/yaml"
)

const (
	descSuffix = ".tcmdesc.yaml"
	mapSuffix  = ".tcmmap.yaml"
)

func main() {
	fs := flag.NewFlagSet("menucc", flag.ExitOnError)
	var (
		mapPath    = fs.String("e", "", "override EEPROM mapping file location (defaults to <descriptor basename>.tcmmap.yaml; a .db suffix selects the SQLite store)")
		capacity   = fs.Uint("c", 0, "EEPROM capacity (only used when initializing the mapping file)")
		outputDir  = fs.String("o", "", "output directory (defaults to <descriptor dirname>/gen)")
		sourceDir  = fs.String("s", ".", "C++ source directory inside the output directory")
		includeDir = fs.String("i", ".", "include directory inside the output directory")
		pgmspace   = fs.Bool("p", false, "enable pgmspace support for some Arduino platforms (e.g. avr8 and esp8266)")
		manifest   = fs.Bool("json-manifest", false, "also write a JSON emission manifest")
	)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:\n  menucc [flags] <descriptor.tcmdesc.yaml>")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	descPath := fs.Arg(0)

	if err := run(descPath, *mapPath, *capacity, *outputDir, *sourceDir, *includeDir, *pgmspace, *manifest); err != nil {
		if iss, ok := menucc.AsIssues(err); ok {
			for _, it := range iss {
				fmt.Fprintf(os.Stderr, "error: %s at %s: %s\n", it.Code, it.Path, it.Message)
			}
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(descPath, mapPath string, capacity uint, outputDir, sourceDir, includeDir string, pgmspace, manifest bool) error {
	descDir, descBase := filepath.Split(descPath)
	instance := instanceName(descBase)
	if outputDir == "" {
		outputDir = filepath.Join(descDir, "gen")
	}
	if mapPath == "" {
		mapPath = filepath.Join(descDir, instance+mapSuffix)
	}

	descBytes, err := os.ReadFile(descPath)
	if err != nil {
		return err
	}
	doc, err := loadDescriptor(descPath, descBytes)
	if err != nil {
		return err
	}

	store, led, err := loadLedger(mapPath, capacity)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	res, err := menucc.Compile(doc, led, menucc.CompileOpt{Capacity: capacity})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s at %s: %s\n", w.Code, w.Path, w.Message)
	}

	out, err := emit.Generate(res, emit.Options{InstanceName: instance, PGMSpace: pgmspace})
	if err != nil {
		return err
	}
	srcDir := filepath.Join(outputDir, sourceDir)
	incDir := filepath.Join(outputDir, includeDir)
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(incDir, 0o755); err != nil {
		return err
	}
	files := map[string][]byte{
		filepath.Join(srcDir, instance+"_desc.cpp"):   out.Source,
		filepath.Join(incDir, instance+".h"):          out.Header,
		filepath.Join(incDir, instance+"_callback.h"): out.CallbackHeader,
		filepath.Join(incDir, instance+"_extra.h"):    out.ExtraHeader,
	}
	if manifest {
		data, err := emit.MarshalManifest(res)
		if err != nil {
			return err
		}
		files[filepath.Join(outputDir, instance+"_manifest.json")] = data
	}
	for path, data := range files {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}

	// Persist the ledger only after everything else succeeded; a crash
	// mid-run must never leave a partially updated map observable.
	res.Ledger.DescriptorDigest = eeprom.Digest(descBytes)
	return saveLedger(store, mapPath, res.Ledger)
}

func instanceName(base string) string {
	if len(base) > len(descSuffix) && strings.HasSuffix(base, descSuffix) {
		return base[:len(base)-len(descSuffix)]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func loadDescriptor(path string, data []byte) (map[string]any, error) {
	if filepath.Ext(path) == ".json" {
		return jsonsource.Load(data)
	}
	return yamlsource.Load(data)
}

// loadLedger returns (store, ledger). A nil ledger means "not initialized":
// Compile seeds a fresh one, which requires -c.
func loadLedger(mapPath string, capacity uint) (*eeprom.SQLiteStore, *eeprom.Ledger, error) {
	if filepath.Ext(mapPath) == ".db" {
		store, err := eeprom.OpenSQLite(mapPath)
		if err != nil {
			return nil, nil, err
		}
		led, ok, err := store.Load()
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		if !ok {
			if capacity == 0 {
				store.Close()
				return nil, nil, fmt.Errorf("-c capacity must be specified when initializing the mapping file")
			}
			return store, nil, nil
		}
		if capacity != 0 && capacity != led.Capacity {
			fmt.Fprintln(os.Stderr, "warning: ignoring -c and using the capacity recorded in the mapping file")
		}
		return store, led, nil
	}

	data, err := os.ReadFile(mapPath)
	if os.IsNotExist(err) {
		if capacity == 0 {
			return nil, nil, fmt.Errorf("-c capacity must be specified when initializing the mapping file")
		}
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	led, err := eeprom.LoadYAML(data)
	if err != nil {
		return nil, nil, err
	}
	if capacity != 0 && capacity != led.Capacity {
		fmt.Fprintln(os.Stderr, "warning: ignoring -c and using the capacity recorded in the mapping file")
	}
	return nil, led, nil
}

// saveLedger writes through the SQLite store when one is open, otherwise
// write-to-temp-then-rename so a crash never exposes a half-written map.
func saveLedger(store *eeprom.SQLiteStore, mapPath string, led *eeprom.Ledger) error {
	if store != nil {
		return store.Save(led)
	}
	data, err := eeprom.SaveYAML(led)
	if err != nil {
		return err
	}
	tmp := mapPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, mapPath)
}
