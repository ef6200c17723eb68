// Package labels holds the Russian display vocabulary of the catalog.
//
// The table is loaded once at start and shared by pointer; nothing in it can
// be changed after Load returns.
package labels

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed labels.yaml
var embedded []byte

// Category names a vocabulary inside the table.
type Category string

const (
	Kinds          Category = "kinds"
	Sizes          Category = "sizes"
	Schools        Category = "schools"
	ArmorTypes     Category = "armor_types"
	MovementTypes  Category = "movement_types"
	ComponentTypes Category = "component_types"
	CurrencyUnits  Category = "currency_units"
	WeightClasses  Category = "weight_classes"
)

var categories = []Category{Kinds, Sizes, Schools, ArmorTypes, MovementTypes, ComponentTypes, CurrencyUnits, WeightClasses}

type document struct {
	Kinds            map[string]string `yaml:"kinds"`
	Sizes            map[string]string `yaml:"sizes"`
	Schools          map[string]string `yaml:"schools"`
	ArmorTypes       map[string]string `yaml:"armor_types"`
	MovementTypes    map[string]string `yaml:"movement_types"`
	ComponentTypes   map[string]string `yaml:"component_types"`
	CurrencyUnits    map[string]string `yaml:"currency_units"`
	CurrencyRates    map[string]int    `yaml:"currency_rates"`
	WeightClasses    map[string]string `yaml:"weight_classes"`
	CantripLabel     string            `yaml:"cantrip_label"`
	LevelLabelFormat string            `yaml:"level_label_format"`
	EffectKeywords   []string          `yaml:"effect_keywords"`
}

// Table is the immutable label table.
type Table struct {
	vocab          map[Category]map[string]string
	rates          map[string]int
	cantrip        string
	levelFormat    string
	effectKeywords []string
}

// Load parses the table from path, or from the built-in document when path is empty.
func Load(path string) (*Table, error) {
	raw := embedded
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read labels file: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

// Default returns the built-in table. It panics only if the embedded document is broken.
func Default() *Table {
	t, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return t
}

func Parse(raw []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}

	t := &Table{
		vocab: map[Category]map[string]string{
			Kinds:          doc.Kinds,
			Sizes:          doc.Sizes,
			Schools:        doc.Schools,
			ArmorTypes:     doc.ArmorTypes,
			MovementTypes:  doc.MovementTypes,
			ComponentTypes: doc.ComponentTypes,
			CurrencyUnits:  doc.CurrencyUnits,
			WeightClasses:  doc.WeightClasses,
		},
		rates:       doc.CurrencyRates,
		cantrip:     doc.CantripLabel,
		levelFormat: doc.LevelLabelFormat,
	}
	for _, w := range doc.EffectKeywords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			t.effectKeywords = append(t.effectKeywords, w)
		}
	}

	for _, c := range categories {
		if len(t.vocab[c]) == 0 {
			return nil, fmt.Errorf("labels: category %q is empty", c)
		}
	}
	for unit := range doc.CurrencyUnits {
		if t.rates[unit] <= 0 {
			return nil, fmt.Errorf("labels: currency %q has no positive rate", unit)
		}
	}
	if t.levelFormat == "" {
		return nil, errors.New("labels: level_label_format is required")
	}
	return t, nil
}

// Label returns the display label for code, or code itself when unknown.
func (t *Table) Label(c Category, code string) string {
	if l, ok := t.vocab[c][code]; ok {
		return l
	}
	return code
}

// Has reports whether code belongs to the vocabulary.
func (t *Table) Has(c Category, code string) bool {
	_, ok := t.vocab[c][code]
	return ok
}

// Codes lists the vocabulary codes in sorted order.
func (t *Table) Codes(c Category) []string {
	out := make([]string, 0, len(t.vocab[c]))
	for code := range t.vocab[c] {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Vocabulary returns a copy of one category.
func (t *Table) Vocabulary(c Category) map[string]string {
	out := make(map[string]string, len(t.vocab[c]))
	for k, v := range t.vocab[c] {
		out[k] = v
	}
	return out
}

// CopperRate is the value of one coin of unit in copper pieces, 0 if unknown.
func (t *Table) CopperRate(unit string) int {
	return t.rates[unit]
}

// EffectKeywords returns the spell effect vocabulary, lower-cased.
func (t *Table) EffectKeywords() []string {
	return append([]string(nil), t.effectKeywords...)
}

// LevelLabel renders a spell level: cantrips get their own name.
func (t *Table) LevelLabel(level int) string {
	if level == 0 && t.cantrip != "" {
		return t.cantrip
	}
	return fmt.Sprintf(t.levelFormat, level)
}

// Snapshot is the whole table in a JSON-friendly shape.
func (t *Table) Snapshot() map[string]any {
	out := make(map[string]any, len(categories)+1)
	for _, c := range categories {
		out[string(c)] = t.Vocabulary(c)
	}
	out["effect_keywords"] = t.EffectKeywords()
	return out
}
