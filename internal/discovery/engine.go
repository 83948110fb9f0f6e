// Package discovery decides which assets of a map belong in its manifest.
// It runs an ordered list of independent rules over the map's working tree
// and parsed entities; rule order is section order.
package discovery

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/cory-johannsen/zonemanifest/internal/manifest"
	"github.com/cory-johannsen/zonemanifest/internal/mapents"
)

// Context is the read-only input shared by all rules of one run.
type Context struct {
	// Fs is rooted at the map directory.
	Fs     afero.Fs
	Layout Layout
	Store  *mapents.Store
}

// Rule contributes zero or more manifest sections.
//
// Apply must not fail for absent optional inputs; a non-nil error means an
// unexpected filesystem failure.
type Rule interface {
	Name() string
	Apply(c *Context) ([]manifest.Section, error)
}

// Engine applies rules in order.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine constructs an Engine.
//
// Precondition: logger must be non-nil.
// Postcondition: returns a non-nil Engine that applies rules in the given order.
func NewEngine(rules []Rule, logger *zap.Logger) *Engine {
	return &Engine{rules: rules, logger: logger}
}

// Discover applies every rule to c and concatenates their sections.
//
// Precondition: c.Fs and c.Store must be non-nil.
// Postcondition: sections are returned in rule order, or the first rule error.
func (e *Engine) Discover(ctx context.Context, c *Context) ([]manifest.Section, error) {
	var out []manifest.Section
	for _, r := range e.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sections, err := r.Apply(c)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name(), err)
		}

		n := 0
		for _, s := range sections {
			for _, entry := range s.Entries {
				n++
				if !entry.Present {
					e.logger.Warn("required asset missing",
						zap.String("type", entry.Type),
						zap.String("name", entry.Name),
					)
					continue
				}
				e.logger.Debug("adding asset",
					zap.String("type", entry.Type),
					zap.String("name", entry.Name),
				)
			}
		}
		if n > 0 {
			e.logger.Info("rule applied",
				zap.String("rule", r.Name()),
				zap.Int("entries", n),
			)
		}
		out = append(out, sections...)
	}
	return out, nil
}
