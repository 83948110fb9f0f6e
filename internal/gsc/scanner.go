// Package gsc extracts asset references from map script source with two
// fixed patterns. It is deliberately not a parser for the script language.
package gsc

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"

	"github.com/spf13/afero"

	"github.com/cory-johannsen/zonemanifest/internal/orderedset"
)

// Rule extracts the first capture group of every match of its pattern.
type Rule struct {
	// Name identifies the rule in logs.
	Name    string
	pattern *regexp.Regexp
}

// SoundAliases matches createfx assignments like
// ent.v["soundalias"] = "emt_fire_crackle".
var SoundAliases = Rule{
	Name:    "soundalias",
	pattern: regexp.MustCompile(`(?i)\w+\.v\[\s*"soundalias"\s*\]\s*=\s*"([\w\s]+?)"`),
}

// Effects matches loadfx("path/to/effect"); calls.
var Effects = Rule{
	Name:    "loadfx",
	pattern: regexp.MustCompile(`(?i)loadfx\s*\(\s*"([^"]+)"\s*\);`),
}

// Scan returns every distinct captured reference in text, in order of first
// occurrence. Scan has no side effects.
//
// Postcondition: returns an empty, non-nil slice when nothing matches.
func (r Rule) Scan(text string) []string {
	refs := orderedset.New[string]()
	for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
		refs.Add(m[1])
	}
	return refs.Values()
}

// ScanFile reads path from fsys and scans it. A missing file is reported as
// found == false with a nil error.
//
// Precondition: fsys must be non-nil.
// Postcondition: err is non-nil only for read failures other than absence.
func (r Rule) ScanFile(fsys afero.Fs, path string) (refs []string, found bool, err error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading script %s: %w", path, err)
	}
	return r.Scan(string(data)), true, nil
}
