package eeprom

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the ledger in a SQLite database (*.tcmmap.db) for
// setups where the map is shared through a database instead of a committed
// YAML file. The load/compute/store contract is the same as the YAML codec.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a ledger database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS slots (
			name   TEXT PRIMARY KEY,
			offset INTEGER NOT NULL,
			size   INTEGER NOT NULL,
			spare  INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate ledger database: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load reads the persisted ledger. ok is false when the database has never
// been initialized, in which case the caller creates a fresh ledger.
func (s *SQLiteStore) Load() (led *Ledger, ok bool, err error) {
	meta := map[string]string{}
	rows, err := s.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, false, fmt.Errorf("read ledger meta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, false, fmt.Errorf("read ledger meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("read ledger meta: %w", err)
	}
	if len(meta) == 0 {
		return nil, false, nil
	}

	led = &Ledger{Vars: map[string]Slot{}, Spare: map[string]Slot{}}
	if led.Capacity, err = metaUint(meta, "capacity"); err != nil {
		return nil, false, err
	}
	if led.VarstoreBar, err = metaUint(meta, "varstore_bar"); err != nil {
		return nil, false, err
	}
	if led.AutoIndex, err = metaUint(meta, "auto_index"); err != nil {
		return nil, false, err
	}
	led.DescriptorDigest = meta["descriptor_sha256"]

	srows, err := s.db.Query(`SELECT name, offset, size, spare FROM slots`)
	if err != nil {
		return nil, false, fmt.Errorf("read ledger slots: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var name string
		var offset, size int64
		var spare bool
		if err := srows.Scan(&name, &offset, &size, &spare); err != nil {
			return nil, false, fmt.Errorf("read ledger slots: %w", err)
		}
		if offset < 0 || size < 0 {
			return nil, false, &CorruptError{Reason: fmt.Sprintf("slot %s has a negative field", name)}
		}
		slot := Slot{Offset: uint(offset), Size: uint(size)}
		if spare {
			led.Spare[name] = slot
		} else {
			led.Vars[name] = slot
		}
	}
	if err := srows.Err(); err != nil {
		return nil, false, fmt.Errorf("read ledger slots: %w", err)
	}
	if err := led.Validate(); err != nil {
		return nil, false, err
	}
	return led, true, nil
}

func metaUint(meta map[string]string, key string) (uint, error) {
	raw, ok := meta[key]
	if !ok {
		return 0, &CorruptError{Reason: "missing meta key " + key}
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, &CorruptError{Reason: fmt.Sprintf("meta key %s: %v", key, err)}
	}
	return uint(v), nil
}

// Save writes the ledger in one transaction. Rows are only ever upserted,
// matching the append-only ledger contract.
func (s *SQLiteStore) Save(led *Ledger) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	defer tx.Rollback()

	put := func(key, value string) error {
		_, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
		return err
	}
	if err := put("capacity", strconv.FormatUint(uint64(led.Capacity), 10)); err != nil {
		return fmt.Errorf("save ledger meta: %w", err)
	}
	if err := put("varstore_bar", strconv.FormatUint(uint64(led.VarstoreBar), 10)); err != nil {
		return fmt.Errorf("save ledger meta: %w", err)
	}
	if err := put("auto_index", strconv.FormatUint(uint64(led.AutoIndex), 10)); err != nil {
		return fmt.Errorf("save ledger meta: %w", err)
	}
	if led.DescriptorDigest != "" {
		if err := put("descriptor_sha256", led.DescriptorDigest); err != nil {
			return fmt.Errorf("save ledger meta: %w", err)
		}
	}

	upsert := func(name string, slot Slot, spare bool) error {
		_, err := tx.Exec(`INSERT INTO slots (name, offset, size, spare) VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET offset = excluded.offset, size = excluded.size, spare = excluded.spare`,
			name, int64(slot.Offset), int64(slot.Size), spare)
		return err
	}
	for name, slot := range led.Vars {
		if err := upsert(name, slot, false); err != nil {
			return fmt.Errorf("save ledger slot %s: %w", name, err)
		}
	}
	for name, slot := range led.Spare {
		if err := upsert(name, slot, true); err != nil {
			return fmt.Errorf("save ledger slot %s: %w", name, err)
		}
	}
	return tx.Commit()
}
