package grid

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WallsGeoJSON returns the blocked cells intersecting q as polygon features.
// Each feature carries its cell indices in the "x" and "y" properties.
func (g *Grid) WallsGeoJSON(q orb.Bound) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range g.WallsIn(q) {
		quad, ok := g.CellQuad(c[0], c[1])
		if !ok {
			continue
		}
		f := geojson.NewFeature(quad.ToPolygon())
		f.Properties["x"] = c[0]
		f.Properties["y"] = c[1]
		fc.Append(f)
	}
	return fc
}

// PathFeature wraps a path as a GeoJSON LineString feature.
func PathFeature(path orb.LineString, solver string) *geojson.Feature {
	f := geojson.NewFeature(path)
	f.Properties["solver"] = solver
	return f
}
