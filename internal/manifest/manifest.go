// Package manifest models the sectioned asset list consumed by the zone
// builder and renders it to the builder's CSV format.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Header is the first line of every generated manifest.
const Header = "// Generated by zonemanifest"

// MissingPrefix marks an entry whose backing file was required but absent.
const MissingPrefix = "#"

// Entry is one asset the zone builder must bundle.
type Entry struct {
	// Type is the asset type tag, e.g. "xmodel" or "rawfile".
	Type string
	// Name is the asset path or identifier.
	Name string
	// Present is false when the asset was expected on disk but not found.
	Present bool
}

// Line renders the entry as "type,name", prefixed by MissingPrefix when the
// entry is not present.
func (e Entry) Line() string {
	line := e.Type + "," + e.Name
	if !e.Present {
		return MissingPrefix + line
	}
	return line
}

// Section is an ordered group of entries with an optional comment header.
type Section struct {
	// Comment is rendered as "// <Comment>" before the entries; empty means
	// no header line.
	Comment string
	Entries []Entry
}

// Add appends a present entry.
func (s *Section) Add(typ, name string) {
	s.Entries = append(s.Entries, Entry{Type: typ, Name: name, Present: true})
}

// AddChecked appends an entry whose presence was determined by the caller.
func (s *Section) AddChecked(typ, name string, present bool) {
	s.Entries = append(s.Entries, Entry{Type: typ, Name: name, Present: present})
}

// Empty reports whether the section has no entries.
func (s Section) Empty() bool { return len(s.Entries) == 0 }

// Manifest is the ordered list of non-empty sections.
type Manifest struct {
	Sections []Section
}

// Assemble builds a Manifest from sections in the given order, dropping
// empty sections together with their comment.
//
// Postcondition: every section of the result is non-empty.
func Assemble(sections ...Section) *Manifest {
	m := &Manifest{}
	for _, s := range sections {
		if s.Empty() {
			continue
		}
		m.Sections = append(m.Sections, s)
	}
	return m
}

// Entries returns every entry across all sections in manifest order.
func (m *Manifest) Entries() []Entry {
	var out []Entry
	for _, s := range m.Sections {
		out = append(out, s.Entries...)
	}
	return out
}

// Missing returns the entries marked not present.
func (m *Manifest) Missing() []Entry {
	var out []Entry
	for _, e := range m.Entries() {
		if !e.Present {
			out = append(out, e)
		}
	}
	return out
}

// WriteTo renders the manifest: the header line and a blank line, then each
// section's comment, its entry lines, and one blank separator line.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	cw.line(Header)
	cw.line("")
	for _, s := range m.Sections {
		if s.Comment != "" {
			cw.line("// " + s.Comment)
		}
		for _, e := range s.Entries {
			cw.line(e.Line())
		}
		cw.line("")
	}
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// String returns the rendered manifest text.
func (m *Manifest) String() string {
	var b strings.Builder
	_, _ = m.WriteTo(&b)
	return b.String()
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) line(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s + "\n")
	c.n += int64(n)
	c.err = err
}

// Persist writes the rendered manifest to name on fsys in a single write,
// creating parent directories as needed.
//
// Precondition: fsys must be non-nil and name must be a slash-separated path.
// Postcondition: name holds the complete manifest, or an error is returned.
func Persist(fsys afero.Fs, name string, m *Manifest) error {
	dir := path.Dir(name)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating manifest directory %s: %w", dir, err)
	}
	if err := afero.WriteFile(fsys, name, []byte(m.String()), 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", name, err)
	}
	return nil
}
