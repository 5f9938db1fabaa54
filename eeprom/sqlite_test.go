package eeprom_test

import (
	"path/filepath"
	"testing"

	"github.com/menucc/menucc/eeprom"
)

func openTestStore(t *testing.T) *eeprom.SQLiteStore {
	t.Helper()
	store, err := eeprom.OpenSQLite(filepath.Join(t.TempDir(), "menu.tcmmap.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteLoadUninitialized(t *testing.T) {
	store := openTestStore(t)
	led, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || led != nil {
		t.Fatalf("fresh database reported a ledger: ok=%v led=%+v", ok, led)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := openTestStore(t)

	led := eeprom.New(2048, 48)
	led, _, err := eeprom.Allocate(led, []eeprom.Request{
		{Identity: "power", Size: 1},
		{Identity: "temp", Size: 2},
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	led.Spare["names"] = eeprom.Slot{Offset: 2000, Size: 48}
	led.DescriptorDigest = eeprom.Digest([]byte("name: x\n"))

	if err := store.Save(led); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("saved ledger not found")
	}
	if back.Capacity != led.Capacity || back.VarstoreBar != led.VarstoreBar || back.AutoIndex != led.AutoIndex {
		t.Fatalf("header drift: %+v vs %+v", back, led)
	}
	if back.DescriptorDigest != led.DescriptorDigest {
		t.Fatalf("digest drift: %q", back.DescriptorDigest)
	}
	for name, want := range led.Vars {
		if got := back.Vars[name]; got != want {
			t.Fatalf("var %s = %+v, want %+v", name, got, want)
		}
	}
	if got := back.Spare["names"]; got != (eeprom.Slot{Offset: 2000, Size: 48}) {
		t.Fatalf("spare segment = %+v", got)
	}
}

func TestSQLiteSaveIsUpsert(t *testing.T) {
	store := openTestStore(t)

	led := eeprom.New(2048, 0)
	led, _, err := eeprom.Allocate(led, []eeprom.Request{{Identity: "power", Size: 1}})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := store.Save(led); err != nil {
		t.Fatalf("save: %v", err)
	}

	led, _, err = eeprom.Allocate(led, []eeprom.Request{
		{Identity: "power", Size: 1},
		{Identity: "temp", Size: 2},
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := store.Save(led); err != nil {
		t.Fatalf("second save: %v", err)
	}

	back, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got := back.Vars["power"]; got != (eeprom.Slot{Offset: 0, Size: 1}) {
		t.Fatalf("power = %+v", got)
	}
	if got := back.Vars["temp"]; got != (eeprom.Slot{Offset: 1, Size: 2}) {
		t.Fatalf("temp = %+v", got)
	}
}
