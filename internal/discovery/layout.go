package discovery

import (
	"path"
	"strings"
)

// geometryExt is the extension of the compiled map geometry every map-level
// asset is named after.
const geometryExt = ".d3dbsp"

// Layout derives the conventional asset paths of one map. All paths are
// slash-separated and relative to the map's root directory.
type Layout struct {
	// Map is the map's base name, e.g. "mp_test".
	Map string
	// Singleplayer selects singleplayer build conventions.
	Singleplayer bool
}

// NewLayout constructs a Layout.
//
// Precondition: mapName must be non-empty.
func NewLayout(mapName string, singleplayer bool) Layout {
	return Layout{Map: mapName, Singleplayer: singleplayer}
}

// Prefix is the script and geometry directory: "maps/mp" for map names
// starting with "mp_", "maps" otherwise.
func (l Layout) Prefix() string {
	if strings.HasPrefix(l.Map, "mp_") {
		return "maps/mp"
	}
	return "maps"
}

// Geometry is the name shared by every compiled map-level asset.
func (l Layout) Geometry() string {
	return path.Join(l.Prefix(), l.Map+geometryExt)
}

// EntityFile is the entity-data block of the map.
func (l Layout) EntityFile() string {
	return l.Geometry() + ".ents"
}

// Script returns "<prefix>/<map><suffix>.gsc".
func (l Layout) Script(suffix string) string {
	return path.Join(l.Prefix(), l.Map+suffix+".gsc")
}

// CreateFx returns "maps/createfx/<map><suffix>.gsc".
func (l Layout) CreateFx(suffix string) string {
	return path.Join("maps/createfx", l.Map+suffix+".gsc")
}

// CreateArt returns "maps/createart/<map><suffix>.gsc".
func (l Layout) CreateArt(suffix string) string {
	return path.Join("maps/createart", l.Map+suffix+".gsc")
}

// CollisionType is the clip map asset type of the build flavour.
func (l Layout) CollisionType() string {
	if l.Singleplayer {
		return "col_map_sp"
	}
	return "col_map_mp"
}

// ManifestName is the manifest file name, "<map>.csv".
func (l Layout) ManifestName() string {
	return l.Map + ".csv"
}
