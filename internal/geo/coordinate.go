package geo

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/riadevigo/buoyplanner/pkg/core"
)

// ErrInvalidCoordinate is returned when degrees/minutes input is out of range or not numeric
var ErrInvalidCoordinate = errors.New("invalid coordinate input")

// ToDecimal converts a DD° MM.MMM' triple to signed decimal degrees.
// S and W produce negative values.
func ToDecimal(degrees int, minutes float64, h core.Hemisphere) (float64, error) {
	if !h.Valid() {
		return 0, fmt.Errorf("%w: unknown hemisphere %q", ErrInvalidCoordinate, h)
	}
	limit := 180
	if h.IsLatitude() {
		limit = 90
	}
	if degrees < 0 || degrees > limit {
		return 0, fmt.Errorf("%w: degrees %d outside [0,%d]", ErrInvalidCoordinate, degrees, limit)
	}
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 || minutes >= 60 {
		return 0, fmt.Errorf("%w: minutes %v outside [0,60)", ErrInvalidCoordinate, minutes)
	}

	value := float64(degrees) + minutes/60
	if value > float64(limit) {
		return 0, fmt.Errorf("%w: %d° %v' exceeds %d°", ErrInvalidCoordinate, degrees, minutes, limit)
	}
	if h.Negative() {
		value = -value
	}
	return value, nil
}

// ToDegreesMinutes splits decimal degrees into degrees, minutes and hemisphere.
// Values >= 0 map to N (latitude) or E (longitude). Negative zero counts as
// zero, so 0° 0' S and 0° 0' W come back as N and E.
func ToDegreesMinutes(value float64, isLatitude bool) core.DegreesMinutes {
	abs := math.Abs(value)
	deg := math.Floor(abs)

	var h core.Hemisphere
	switch {
	case isLatitude && value >= 0:
		h = core.North
	case isLatitude:
		h = core.South
	case value >= 0:
		h = core.East
	default:
		h = core.West
	}

	return core.DegreesMinutes{
		Degrees:    int(deg),
		Minutes:    (abs - deg) * 60,
		Hemisphere: h,
	}
}

// Rounded returns dm with minutes rounded to the given number of decimals for
// display, carrying 60' into the next degree.
func Rounded(dm core.DegreesMinutes, places int) core.DegreesMinutes {
	scale := math.Pow(10, float64(places))
	dm.Minutes = math.Round(dm.Minutes*scale) / scale
	if dm.Minutes >= 60 {
		dm.Minutes = 0
		dm.Degrees++
	}
	return dm
}

// FormatDM renders decimal degrees as "DD° MM.MMM' H".
func FormatDM(value float64, isLatitude bool) string {
	dm := Rounded(ToDegreesMinutes(value, isLatitude), 3)
	return fmt.Sprintf("%d° %.3f' %s", dm.Degrees, dm.Minutes, dm.Hemisphere)
}

// FormatPosition renders both axes of a position in DM form.
func FormatPosition(p core.Position) string {
	return FormatDM(p.Lat, true) + ", " + FormatDM(p.Lng, false)
}

// ParseDM parses raw degrees, minutes and hemisphere strings as typed into the
// marker form and converts them to decimal degrees.
func ParseDM(degrees, minutes, hemisphere string, isLatitude bool) (float64, error) {
	deg, err := strconv.Atoi(strings.TrimSpace(degrees))
	if err != nil {
		return 0, fmt.Errorf("%w: degrees %q is not a whole number", ErrInvalidCoordinate, degrees)
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(minutes), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: minutes %q is not a number", ErrInvalidCoordinate, minutes)
	}
	h := core.Hemisphere(strings.ToUpper(strings.TrimSpace(hemisphere)))
	if h.Valid() && h.IsLatitude() != isLatitude {
		return 0, fmt.Errorf("%w: hemisphere %q on the wrong axis", ErrInvalidCoordinate, hemisphere)
	}
	return ToDecimal(deg, min, h)
}

// GeoURI builds an RFC 5870 geo: URI for a position, with an optional label
// query understood by most mobile map apps.
func GeoURI(p core.Position, label string) string {
	uri := fmt.Sprintf("geo:%.6f,%.6f", p.Lat, p.Lng)
	if label != "" {
		uri += fmt.Sprintf("?q=%.6f,%.6f(%s)", p.Lat, p.Lng, url.QueryEscape(label))
	}
	return uri
}
