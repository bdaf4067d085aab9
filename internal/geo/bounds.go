package geo

import (
	"math"

	"github.com/riadevigo/buoyplanner/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Web Mercator tiles are 256px; this is the EPSG:3857 resolution at zoom 0.
const mercatorResolution = 156543.03392804097

// maxMercatorLat is where EPSG:3857 stops being defined.
const maxMercatorLat = 85.05112878

var (
	toMercator = wgs84.EPSG().Transform(4326, 3857)
	toWGS84    = wgs84.EPSG().Transform(3857, 4326)
)

// Bounds is a lat/lng rectangle, typically the visible part of a map.
type Bounds struct {
	SouthWest core.Position
	NorthEast core.Position
}

// Envelope returns the bounds as a simplefeatures envelope in lng/lat order.
func (b Bounds) Envelope() geom.Envelope {
	return geom.NewEnvelope(
		geom.XY{X: b.SouthWest.Lng, Y: b.SouthWest.Lat},
		geom.XY{X: b.NorthEast.Lng, Y: b.NorthEast.Lat},
	)
}

// Contains reports whether p lies inside the bounds, edges included.
func (b Bounds) Contains(p core.Position) bool {
	return b.Envelope().Contains(geom.XY{X: p.Lng, Y: p.Lat})
}

// Center returns the midpoint of the rectangle in degrees.
func (b Bounds) Center() core.Position {
	return core.Position{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// Viewport computes the bounds shown by a Web Mercator map of the given pixel
// size centred on center at a fractional zoom level.
func Viewport(center core.Position, zoom float64, widthPx, heightPx int) Bounds {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, center.Lat))
	cx, cy, _ := toMercator(center.Lng, lat, 0)

	res := mercatorResolution / math.Pow(2, zoom)
	halfW := float64(widthPx) / 2 * res
	halfH := float64(heightPx) / 2 * res

	minLng, minLat, _ := toWGS84(cx-halfW, cy-halfH, 0)
	maxLng, maxLat, _ := toWGS84(cx+halfW, cy+halfH, 0)

	return Bounds{
		SouthWest: core.Position{Lat: math.Max(minLat, -90), Lng: math.Max(minLng, -180)},
		NorthEast: core.Position{Lat: math.Min(maxLat, 90), Lng: math.Min(maxLng, 180)},
	}
}
