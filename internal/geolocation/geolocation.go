// Package geolocation provides the position sources behind the tracker.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riadevigo/buoyplanner/internal/api"
	"github.com/riadevigo/buoyplanner/internal/config"
	"github.com/riadevigo/buoyplanner/internal/tracker"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// Provider names accepted in configuration.
const (
	ProviderStatic   = "static"
	ProviderIP       = "ip"
	ProviderDisabled = "disabled"
)

// Static always reports the same fix.
type Static struct {
	Position core.Position
	Accuracy float64
	Now      func() time.Time
}

// Locate returns the configured position stamped with the current time.
func (s Static) Locate(ctx context.Context) (core.Fix, error) {
	if err := ctx.Err(); err != nil {
		return core.Fix{}, tracker.Classify(err)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return core.Fix{Position: s.Position, Accuracy: s.Accuracy, At: now()}, nil
}

// Disabled refuses every request, like a device where location access was denied.
type Disabled struct{}

func (Disabled) Locate(context.Context) (core.Fix, error) {
	return core.Fix{}, &tracker.GeolocationError{Reason: tracker.ReasonPermissionDenied}
}

// IP places the caller by public address. The service reports no accuracy,
// so a fixed radius is used.
type IP struct {
	Client   *api.Client
	Accuracy float64
	Timeout  time.Duration
}

// Locate performs one lookup. It does not retry.
func (p IP) Locate(ctx context.Context) (core.Fix, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	loc, err := p.Client.Lookup(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		return core.Fix{}, &tracker.GeolocationError{Reason: tracker.ReasonTimeout, Err: err}
	case errors.Is(err, api.ErrLookupFailed):
		return core.Fix{}, &tracker.GeolocationError{Reason: tracker.ReasonPositionUnavailable, Err: err}
	default:
		return core.Fix{}, &tracker.GeolocationError{Reason: tracker.ReasonUnknown, Err: err}
	}

	return core.Fix{
		Position: core.Position{Lat: loc.Lat, Lng: loc.Lon},
		Accuracy: p.Accuracy,
		At:       time.Now(),
	}, nil
}

// FromConfig builds the provider named in cfg.
func FromConfig(cfg config.GeolocationConfig) (tracker.Geolocator, error) {
	switch cfg.Provider {
	case ProviderStatic, "":
		pos := core.Position{Lat: cfg.StaticLat, Lng: cfg.StaticLng}
		if !pos.Valid() {
			return nil, fmt.Errorf("static position out of range: %s", pos)
		}
		return Static{Position: pos, Accuracy: cfg.StaticAccuracy}, nil
	case ProviderIP:
		return IP{
			Client:   api.New(cfg.Endpoint, cfg.APIKey, cfg.Timeout),
			Accuracy: cfg.IPAccuracy,
			Timeout:  cfg.Timeout,
		}, nil
	case ProviderDisabled:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported geolocation provider: %s", cfg.Provider)
	}
}
