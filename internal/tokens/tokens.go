// Package tokens provides the attribute-name resolvers injected into the
// entity parser. Entity blocks reference common keys by a numeric index into
// a game-specific token table; literal keys are case-folded so legacy and
// mixed-case spellings normalize to the same attribute name.
package tokens

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/zonemanifest/internal/mapents"
)

var _ mapents.TokenResolver = Literal

// Literal resolves a key written as text by case-folding it.
//
// Postcondition: Literal(Literal(s)) == Literal(s).
func Literal(ref string) string {
	return cases.Fold().String(ref)
}

// Placeholder is the name given to a numeric reference missing from a Table.
func Placeholder(id uint64) string {
	return fmt.Sprintf("unknown_token_%d", id)
}

// Table resolves numeric token references through a fixed index → name map.
type Table struct {
	names map[uint64]string
}

type tableFile struct {
	Tokens map[uint64]string `yaml:"tokens"`
}

// NewTable constructs a Table from an index → name map. Names are folded
// with Literal so table lookups and literal keys agree.
//
// Postcondition: returns a non-nil Table.
func NewTable(names map[uint64]string) *Table {
	t := &Table{names: make(map[uint64]string, len(names))}
	for id, name := range names {
		t.names[id] = Literal(name)
	}
	return t
}

// LoadTableFromBytes parses a YAML token table of the form
//
//	tokens:
//	  1: classname
//	  2: model
//
// Postcondition: returns a non-nil Table or a non-nil error.
func LoadTableFromBytes(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing token table: %w", err)
	}
	return NewTable(f.Tokens), nil
}

// LoadTable reads a YAML token table from path.
//
// Precondition: path must name a readable file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token table %s: %w", path, err)
	}
	t, err := LoadTableFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Len returns the number of known tokens.
func (t *Table) Len() int { return len(t.names) }

// Resolve maps a numeric reference through the table, returning Placeholder
// for unknown indices. Non-numeric references resolve as Literal.
func (t *Table) Resolve(ref string) string {
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return Literal(ref)
	}
	if name, ok := t.names[id]; ok {
		return name
	}
	return Placeholder(id)
}
