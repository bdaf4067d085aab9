package waypoint

import (
	"fmt"
	"strings"

	"github.com/riadevigo/buoyplanner/internal/geo"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// FormInput is the raw text of the new waypoint form. Coordinates are
// entered as whole degrees plus decimal minutes.
type FormInput struct {
	Name string

	LatDegrees    string
	LatMinutes    string
	LatHemisphere string

	LngDegrees    string
	LngMinutes    string
	LngHemisphere string

	Description string
}

// NewFormInput returns an empty form with the Ría de Vigo hemispheres preselected.
func NewFormInput() FormInput {
	return FormInput{
		LatHemisphere: string(core.North),
		LngHemisphere: string(core.West),
	}
}

// Draft converts the form into a draft. A rejected form yields no draft.
func (f FormInput) Draft() (Draft, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return Draft{}, fmt.Errorf("%w: name is required", ErrInvalidDraft)
	}

	lat, err := geo.ParseDM(f.LatDegrees, f.LatMinutes, f.LatHemisphere, true)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: latitude: %w", ErrInvalidDraft, err)
	}
	lng, err := geo.ParseDM(f.LngDegrees, f.LngMinutes, f.LngHemisphere, false)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: longitude: %w", ErrInvalidDraft, err)
	}

	return Draft{
		Name:        name,
		Position:    core.Position{Lat: lat, Lng: lng},
		Description: strings.TrimSpace(f.Description),
	}, nil
}

// Reset clears the form after a successful submit, keeping the hemispheres.
func (f FormInput) Reset() FormInput {
	return FormInput{
		LatHemisphere: f.LatHemisphere,
		LngHemisphere: f.LngHemisphere,
	}
}
