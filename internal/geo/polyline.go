package geo

import (
	"fmt"

	"github.com/riadevigo/buoyplanner/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Point converts a position into a 2D simplefeatures point (X=lng, Y=lat).
func Point(p core.Position) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.Lng, Y: p.Lat},
		Type: geom.DimXY,
	})
}

// LineString converts an ordered path into a simplefeatures line string.
func LineString(path []core.Position) (geom.LineString, error) {
	if len(path) < 2 {
		return geom.LineString{}, fmt.Errorf("polyline must have at least 2 points, got %d", len(path))
	}

	flatCoords := make([]float64, 0, len(path)*2)
	for i, p := range path {
		if !p.Valid() {
			return geom.LineString{}, fmt.Errorf("coordinate %d is out of range: %s", i, p)
		}
		flatCoords = append(flatCoords, p.Lng, p.Lat)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// PositionFromPoint converts a 2D point back into a position.
func PositionFromPoint(pt geom.Point) (core.Position, bool) {
	xy, ok := pt.XY()
	if !ok {
		return core.Position{}, false
	}
	return core.Position{Lat: xy.Y, Lng: xy.X}, true
}
