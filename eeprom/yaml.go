package eeprom

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// The on-disk map format (*.tcmmap.yaml) mirrors the classic tcmmap layout:
//
//	capacity: 4096
//	varstore-bar: 4096
//	auto-index: 5
//	descriptor-sha256: <hex>
//	vars:
//	  _reserved: {offset: 0, size: 2}
//	  power: {offset: 2, size: 1}
//	spare-segments:
//	  names: {offset: 3900, size: 120}

type yamlSlot struct {
	Offset *int `yaml:"offset"`
	Size   *int `yaml:"size"`
}

type yamlLedger struct {
	Capacity    *int                `yaml:"capacity"`
	VarstoreBar *int                `yaml:"varstore-bar"`
	AutoIndex   *int                `yaml:"auto-index"`
	Digest      string              `yaml:"descriptor-sha256"`
	Vars        map[string]yamlSlot `yaml:"vars"`
	Spare       map[string]yamlSlot `yaml:"spare-segments"`
}

// LoadYAML parses a persisted ledger. Any malformed entry yields a
// CorruptError; callers must abort the run without writing output.
func LoadYAML(data []byte) (*Ledger, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var w yamlLedger
	if err := dec.Decode(&w); err != nil {
		return nil, &CorruptError{Reason: err.Error()}
	}
	if w.Capacity == nil || w.AutoIndex == nil {
		return nil, &CorruptError{Reason: "capacity and auto-index are required"}
	}
	led := &Ledger{
		Capacity:         uintField("capacity", *w.Capacity),
		AutoIndex:        uintField("auto-index", *w.AutoIndex),
		Vars:             map[string]Slot{},
		Spare:            map[string]Slot{},
		DescriptorDigest: w.Digest,
	}
	if *w.Capacity < 0 || *w.AutoIndex < 0 {
		return nil, &CorruptError{Reason: "negative capacity or auto-index"}
	}
	if w.VarstoreBar != nil {
		if *w.VarstoreBar < 0 {
			return nil, &CorruptError{Reason: "negative varstore-bar"}
		}
		led.VarstoreBar = uint(*w.VarstoreBar)
	} else {
		led.VarstoreBar = led.Capacity
	}
	for name, s := range w.Vars {
		slot, err := slotField("vars", name, s)
		if err != nil {
			return nil, err
		}
		led.Vars[name] = slot
	}
	for name, s := range w.Spare {
		slot, err := slotField("spare-segments", name, s)
		if err != nil {
			return nil, err
		}
		led.Spare[name] = slot
	}
	if err := led.Validate(); err != nil {
		return nil, err
	}
	return led, nil
}

func uintField(_ string, v int) uint { return uint(v) }

func slotField(section, name string, s yamlSlot) (Slot, error) {
	if s.Offset == nil || s.Size == nil {
		return Slot{}, &CorruptError{Reason: fmt.Sprintf("%s entry %s is missing offset or size", section, name)}
	}
	if *s.Offset < 0 || *s.Size < 0 {
		return Slot{}, &CorruptError{Reason: fmt.Sprintf("%s entry %s has a negative field", section, name)}
	}
	return Slot{Offset: uint(*s.Offset), Size: uint(*s.Size)}, nil
}

// SaveYAML renders the ledger deterministically: vars ordered by offset,
// spare segments by name. Deterministic output keeps map files diffable in
// version control.
func SaveYAML(l *Ledger) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	putScalar(doc, "capacity", strconv.FormatUint(uint64(l.Capacity), 10), "!!int")
	putScalar(doc, "varstore-bar", strconv.FormatUint(uint64(l.VarstoreBar), 10), "!!int")
	putScalar(doc, "auto-index", strconv.FormatUint(uint64(l.AutoIndex), 10), "!!int")
	if l.DescriptorDigest != "" {
		putScalar(doc, "descriptor-sha256", l.DescriptorDigest, "!!str")
	}
	doc.Content = append(doc.Content, keyNode("vars"), slotsNode(l.Vars, byOffset))
	if len(l.Spare) > 0 {
		doc.Content = append(doc.Content, keyNode("spare-segments"), slotsNode(l.Spare, byName))
	}
	return yaml.Marshal(doc)
}

// Digest returns the hex SHA-256 of descriptor bytes, the fingerprint stored
// in the map file for unchanged-since-last-run detection.
func Digest(descriptor []byte) string {
	sum := sha256.Sum256(descriptor)
	return hex.EncodeToString(sum[:])
}

type slotOrder int

const (
	byOffset slotOrder = iota
	byName
)

func slotsNode(m map[string]Slot, order slotOrder) *yaml.Node {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if order == byOffset && m[names[i]].Offset != m[names[j]].Offset {
			return m[names[i]].Offset < m[names[j]].Offset
		}
		return names[i] < names[j]
	})
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range names {
		s := m[name]
		entry := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
		putScalar(entry, "offset", strconv.FormatUint(uint64(s.Offset), 10), "!!int")
		putScalar(entry, "size", strconv.FormatUint(uint64(s.Size), 10), "!!int")
		node.Content = append(node.Content, keyNode(name), entry)
	}
	return node
}

func keyNode(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

func putScalar(m *yaml.Node, key, value, tag string) {
	m.Content = append(m.Content, keyNode(key), &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value})
}
