// Package generator runs one manifest resolution for a map: it checks the
// fatal inputs, parses the entity block, applies the discovery rules and
// writes the assembled manifest once, in full.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/cory-johannsen/zonemanifest/internal/discovery"
	"github.com/cory-johannsen/zonemanifest/internal/manifest"
	"github.com/cory-johannsen/zonemanifest/internal/mapents"
	"github.com/cory-johannsen/zonemanifest/internal/observability"
)

// ErrInputMissing is wrapped when the map directory or its entity-data file
// does not exist. Nothing is written in that case.
var ErrInputMissing = errors.New("required input missing")

// RulesFunc builds the discovery pipeline for a map layout.
type RulesFunc func(discovery.Layout) []discovery.Rule

// Options configures a Generator.
type Options struct {
	// Source holds one directory per map.
	Source afero.Fs
	// Output receives "<map>.csv" manifests.
	Output afero.Fs
	// Resolve maps entity-data key references to attribute names.
	Resolve mapents.TokenResolver
	// Singleplayer selects singleplayer build conventions.
	Singleplayer bool
	// Rules overrides discovery.DefaultRules when non-nil.
	Rules RulesFunc
	Logger *zap.Logger
}

// Generator resolves map manifests.
type Generator struct {
	opts Options
}

// Result summarises one generated manifest.
type Result struct {
	Map      string
	Path     string
	Sections int
	Entries  int
	Missing  int
	Manifest *manifest.Manifest
}

// New constructs a Generator.
//
// Precondition: opts.Source, opts.Output, opts.Resolve and opts.Logger must be non-nil.
// Postcondition: returns a non-nil Generator.
func New(opts Options) *Generator {
	if opts.Rules == nil {
		opts.Rules = discovery.DefaultRules
	}
	return &Generator{opts: opts}
}

// Render resolves the manifest of mapName without writing it.
//
// Postcondition: returns a non-nil Result with an empty Path, or an error
// wrapping ErrInputMissing or mapents.ErrMalformedEntityBlock.
func (g *Generator) Render(ctx context.Context, mapName string) (*Result, error) {
	logger := observability.RunLogger(g.opts.Logger, mapName)

	ok, err := afero.DirExists(g.opts.Source, mapName)
	if err != nil {
		return nil, fmt.Errorf("map %q: checking map directory: %w", mapName, err)
	}
	if !ok {
		return nil, fmt.Errorf("map %q: map directory %s: %w", mapName, mapName, ErrInputMissing)
	}

	mapFs := afero.NewBasePathFs(g.opts.Source, mapName)
	layout := discovery.NewLayout(mapName, g.opts.Singleplayer)

	entsPath := layout.EntityFile()
	data, err := afero.ReadFile(mapFs, entsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("map %q: entity file %s: %w", mapName, path.Join(mapName, entsPath), ErrInputMissing)
		}
		return nil, fmt.Errorf("map %q: reading entity file %s: %w", mapName, entsPath, err)
	}

	logger.Info("parsing entities", zap.String("path", entsPath))
	store, err := mapents.Parse(data, g.opts.Resolve)
	if err != nil {
		return nil, fmt.Errorf("map %q: %s: %w", mapName, entsPath, err)
	}
	logger.Info("entities parsed", zap.Int("count", store.Len()))

	engine := discovery.NewEngine(g.opts.Rules(layout), logger)
	sections, err := engine.Discover(ctx, &discovery.Context{
		Fs:     mapFs,
		Layout: layout,
		Store:  store,
	})
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", mapName, err)
	}

	m := manifest.Assemble(sections...)
	return &Result{
		Map:      mapName,
		Sections: len(m.Sections),
		Entries:  len(m.Entries()),
		Missing:  len(m.Missing()),
		Manifest: m,
	}, nil
}

// Run resolves the manifest of mapName and persists it to "<map>.csv" on
// the output filesystem.
//
// Postcondition: on success the manifest file exists in full; on error no
// file has been written.
func (g *Generator) Run(ctx context.Context, mapName string) (*Result, error) {
	res, err := g.Render(ctx, mapName)
	if err != nil {
		return nil, err
	}
	res.Path = discovery.NewLayout(mapName, g.opts.Singleplayer).ManifestName()
	if err := manifest.Persist(g.opts.Output, res.Path, res.Manifest); err != nil {
		return nil, fmt.Errorf("map %q: %w", mapName, err)
	}
	g.opts.Logger.Info("manifest saved",
		zap.String("map", mapName),
		zap.String("path", res.Path),
		zap.Int("entries", res.Entries),
		zap.Int("missing", res.Missing),
	)
	return res, nil
}

// RunAll runs each map in order, stopping at the first failure.
//
// Postcondition: returns one Result per map processed before any error.
func (g *Generator) RunAll(ctx context.Context, maps []string) ([]*Result, error) {
	results := make([]*Result, 0, len(maps))
	for _, m := range maps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := g.Run(ctx, m)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
