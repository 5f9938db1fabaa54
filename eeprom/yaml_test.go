package eeprom_test

import (
	"errors"
	"testing"

	"github.com/menucc/menucc/eeprom"
)

func TestYAMLRoundTrip(t *testing.T) {
	led := eeprom.New(4096, 96)
	led, _, err := eeprom.Allocate(led, []eeprom.Request{
		{Identity: "power", Size: 1},
		{Identity: "temp", Size: 2},
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	led.Spare["names"] = eeprom.Slot{Offset: 3900, Size: 60}
	led.DescriptorDigest = eeprom.Digest([]byte("name: x\n"))

	data, err := eeprom.SaveYAML(led)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := eeprom.LoadYAML(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.Capacity != led.Capacity || back.VarstoreBar != led.VarstoreBar || back.AutoIndex != led.AutoIndex {
		t.Fatalf("header drift: %+v vs %+v", back, led)
	}
	if back.DescriptorDigest != led.DescriptorDigest {
		t.Fatalf("digest drift: %q vs %q", back.DescriptorDigest, led.DescriptorDigest)
	}
	for name, want := range led.Vars {
		if got := back.Vars[name]; got != want {
			t.Fatalf("var %s = %+v, want %+v", name, got, want)
		}
	}
	if got := back.Spare["names"]; got != (eeprom.Slot{Offset: 3900, Size: 60}) {
		t.Fatalf("spare segment = %+v", got)
	}
}

func TestSaveYAMLIsDeterministic(t *testing.T) {
	led := eeprom.New(4096, 0)
	led, _, err := eeprom.Allocate(led, []eeprom.Request{
		{Identity: "c", Size: 1},
		{Identity: "a", Size: 1},
		{Identity: "b", Size: 1},
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	first, err := eeprom.SaveYAML(led)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := eeprom.SaveYAML(led)
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("output differs across runs:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestLoadYAMLRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not yaml":          ":\n  - {",
		"unknown field":     "capacity: 16\nauto-index: 0\nbogus: 1\n",
		"missing capacity":  "auto-index: 0\n",
		"negative offset":   "capacity: 16\nauto-index: 4\nvars:\n  a: {offset: -1, size: 1}\n",
		"missing size":      "capacity: 16\nauto-index: 4\nvars:\n  a: {offset: 0}\n",
		"zero size":         "capacity: 16\nauto-index: 4\nvars:\n  a: {offset: 0, size: 0}\n",
		"past auto-index":   "capacity: 16\nauto-index: 1\nvars:\n  a: {offset: 0, size: 2}\n",
		"bar past capacity": "capacity: 16\nvarstore-bar: 32\nauto-index: 0\n",
		"overlapping slots": "capacity: 16\nauto-index: 4\nvars:\n  a: {offset: 0, size: 2}\n  b: {offset: 1, size: 2}\n",
	}
	for name, src := range cases {
		_, err := eeprom.LoadYAML([]byte(src))
		var ce *eeprom.CorruptError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: err = %v, want CorruptError", name, err)
		}
	}
}

func TestLoadYAMLDefaultsVarstoreBarToCapacity(t *testing.T) {
	led, err := eeprom.LoadYAML([]byte("capacity: 128\nauto-index: 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if led.VarstoreBar != 128 {
		t.Fatalf("varstore-bar = %d, want capacity", led.VarstoreBar)
	}
}
