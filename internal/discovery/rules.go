package discovery

import (
	"fmt"
	"path"
	"strings"

	"github.com/cory-johannsen/zonemanifest/internal/gsc"
	"github.com/cory-johannsen/zonemanifest/internal/manifest"
	"github.com/cory-johannsen/zonemanifest/internal/orderedset"
)

// netConstStringTags are the categories of multiplayer net constant strings.
var netConstStringTags = []string{
	"mdl", "mat", "rmb", "veh", "vfx", "loc", "snd", "sbx",
	"snl", "shk", "mnu", "tag", "hic", "nps", "mic", "sel",
	"wep", "att", "hnt", "anm", "fxt", "acl", "lui", "lsr",
}

// NetConstStrings emits one net constant string table per category for
// multiplayer builds. Its entries are never existence-checked.
type NetConstStrings struct{}

func (NetConstStrings) Name() string { return "netconststrings" }

func (NetConstStrings) Apply(c *Context) ([]manifest.Section, error) {
	if c.Layout.Singleplayer {
		return nil, nil
	}
	s := manifest.Section{Comment: "netconststrings"}
	for _, tag := range netConstStringTags {
		s.Add("netconststrings", fmt.Sprintf("ncs_%s_level", tag))
	}
	return []manifest.Section{s}, nil
}

// ScriptModels emits every distinct non-empty model of entities with the
// given classname, in first-seen order.
type ScriptModels struct {
	Classname string
}

func (ScriptModels) Name() string { return "models" }

func (r ScriptModels) Apply(c *Context) ([]manifest.Section, error) {
	models := orderedset.New[string]()
	for _, ent := range c.Store.ByClass(r.Classname) {
		if model := ent.Get("model"); model != "" {
			models.Add(model)
		}
	}
	s := manifest.Section{Comment: "models"}
	for _, model := range models.Values() {
		s.Add("xmodel", model)
	}
	return []manifest.Section{s}, nil
}

// ScriptReferences scans an optional script for asset references. An absent
// script contributes nothing.
type ScriptReferences struct {
	Path    string
	Rule    gsc.Rule
	Type    string
	Comment string
}

func (r ScriptReferences) Name() string { return r.Rule.Name + ":" + r.Path }

func (r ScriptReferences) Apply(c *Context) ([]manifest.Section, error) {
	refs, found, err := r.Rule.ScanFile(c.Fs, r.Path)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	s := manifest.Section{Comment: r.Comment}
	for _, ref := range refs {
		s.Add(r.Type, ref)
	}
	return []manifest.Section{s}, nil
}

// ConditionalFile adds a single asset only when Path exists. It never
// produces a missing entry.
type ConditionalFile struct {
	Path    string
	Type    string
	Asset   string
	Comment string
}

func (r ConditionalFile) Name() string { return "conditional:" + r.Path }

func (r ConditionalFile) Apply(c *Context) ([]manifest.Section, error) {
	ok, err := fileExists(c.Fs, r.Path)
	if err != nil || !ok {
		return nil, err
	}
	s := manifest.Section{Comment: r.Comment}
	s.Add(r.Type, r.Asset)
	return []manifest.Section{s}, nil
}

// DirectoryScan adds every file directly inside Dir that ends in Ext. Names
// are the map-relative path, or the bare file stem when NameOnly is set.
type DirectoryScan struct {
	Type     string
	Dir      string
	Ext      string
	Comment  string
	NameOnly bool
}

func (r DirectoryScan) Name() string { return "directory:" + r.Dir }

func (r DirectoryScan) Apply(c *Context) ([]manifest.Section, error) {
	ok, err := dirExists(c.Fs, r.Dir)
	if err != nil || !ok {
		return nil, err
	}
	files, err := listFiles(c.Fs, r.Dir, r.Ext)
	if err != nil {
		return nil, err
	}
	s := manifest.Section{Comment: r.Comment}
	for _, f := range files {
		if r.NameOnly {
			s.Add(r.Type, strings.TrimSuffix(path.Base(f), r.Ext))
			continue
		}
		s.Add(r.Type, f)
	}
	return []manifest.Section{s}, nil
}

// Script is one entry of RequiredScripts.
type Script struct {
	Path string
	// Required scripts are emitted as missing when absent; optional ones
	// are skipped.
	Required bool
}

// RequiredScripts emits the map's script files as rawfiles.
type RequiredScripts struct {
	Scripts []Script
}

func (RequiredScripts) Name() string { return "gsc" }

func (r RequiredScripts) Apply(c *Context) ([]manifest.Section, error) {
	s := manifest.Section{Comment: "gsc"}
	for _, script := range r.Scripts {
		ok, err := fileExists(c.Fs, script.Path)
		if err != nil {
			return nil, err
		}
		if !ok && !script.Required {
			continue
		}
		s.AddChecked("rawfile", script.Path, ok)
	}
	return []manifest.Section{s}, nil
}

// MapAsset pairs a map-level asset type with the extension of the compiled
// sidecar file that backs it.
type MapAsset struct {
	Type string
	Ext  string
}

// MapAssets emits the compiled map-level assets, all named after the map
// geometry. An asset whose sidecar file is absent is emitted as missing.
type MapAssets struct {
	Assets []MapAsset
}

func (MapAssets) Name() string { return "map assets" }

func (r MapAssets) Apply(c *Context) ([]manifest.Section, error) {
	geometry := c.Layout.Geometry()
	s := manifest.Section{Comment: "map assets"}
	for _, a := range r.Assets {
		ok, err := fileExists(c.Fs, geometry+a.Ext)
		if err != nil {
			return nil, err
		}
		s.AddChecked(a.Type, geometry, ok)
	}
	return []manifest.Section{s}, nil
}

// DefaultRules returns the discovery pipeline for l in manifest order.
//
// Postcondition: the returned rules are independent and may be applied in
// isolation.
func DefaultRules(l Layout) []Rule {
	return []Rule{
		NetConstStrings{},
		ScriptModels{Classname: "script_model"},
		ScriptReferences{Path: l.CreateFx("_fx"), Rule: gsc.SoundAliases, Type: "sound", Comment: "sounds"},
		ScriptReferences{Path: l.CreateFx("_sound"), Rule: gsc.SoundAliases, Type: "sound", Comment: "sounds"},
		ScriptReferences{Path: l.Script("_fx"), Rule: gsc.Effects, Type: "fx", Comment: "effects"},
		ConditionalFile{
			Path:    "materials/compass_map_" + l.Map + ".json",
			Type:    "material",
			Asset:   "compass_map_" + l.Map,
			Comment: "compass",
		},
		DirectoryScan{Type: "stringtable", Dir: "maps/createart", Ext: ".csv", Comment: "lightsets"},
		DirectoryScan{Type: "clut", Dir: "clut", Ext: ".clut", Comment: "color lookup tables", NameOnly: true},
		DirectoryScan{Type: "rawfile", Dir: "vision", Ext: ".vision", Comment: "visions"},
		DirectoryScan{Type: "rawfile", Dir: "sun", Ext: ".sun", Comment: "sun"},
		RequiredScripts{Scripts: []Script{
			{Path: l.Script(""), Required: true},
			{Path: l.Script("_fx"), Required: true},
			{Path: l.CreateFx("_fx"), Required: true},
			{Path: l.CreateFx("_sound")},
			{Path: l.Script("_precache")},
			{Path: l.Script("_lighting")},
			{Path: l.Script("_aud")},
			{Path: l.CreateArt("_art"), Required: true},
			{Path: l.CreateArt("_fog"), Required: true},
			{Path: l.CreateArt("_fog_hdr"), Required: true},
		}},
		MapAssets{Assets: []MapAsset{
			{Type: "com_map", Ext: ".commap"},
			{Type: "fx_map", Ext: ".fxmap"},
			{Type: "gfx_map", Ext: ".gfxmap"},
			{Type: "map_ents", Ext: ".ents"},
			{Type: "glass_map", Ext: ".glassmap"},
			{Type: "phys_worldmap", Ext: ".physmap"},
			{Type: "aipaths", Ext: ".aipaths"},
			{Type: l.CollisionType(), Ext: ".colmap"},
		}},
	}
}
