package tracker

import (
	"errors"
	"fmt"

	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// OverlayPair is the accuracy circle and label of the current fix. At most
// one pair is on the map at a time.
type OverlayPair struct {
	Circle surface.Handle
	Label  surface.Handle
}

// Active reports whether the pair is on the map.
func (p *OverlayPair) Active() bool {
	return p.Circle != 0 || p.Label != 0
}

// Clear removes both overlays.
func (p *OverlayPair) Clear(s surface.Surface) error {
	var errs []error
	if p.Circle != 0 {
		if err := s.Remove(p.Circle); err != nil {
			errs = append(errs, fmt.Errorf("removing accuracy circle: %w", err))
		}
		p.Circle = 0
	}
	if p.Label != 0 {
		if err := s.Remove(p.Label); err != nil {
			errs = append(errs, fmt.Errorf("removing label: %w", err))
		}
		p.Label = 0
	}
	return errors.Join(errs...)
}

// Replace removes the previous pair and draws a new one around fix. The
// circle radius is half the reported accuracy.
func (p *OverlayPair) Replace(s surface.Surface, fix core.Fix, text string, circle surface.CircleStyle, label surface.TooltipStyle) error {
	clearErr := p.Clear(s)

	c, err := s.AddCircle(fix.Position, fix.Accuracy/2, circle)
	if err != nil {
		return errors.Join(clearErr, fmt.Errorf("adding accuracy circle: %w", err))
	}
	l, err := s.AddTooltip(fix.Position, text, label)
	if err != nil {
		errs := []error{clearErr, fmt.Errorf("adding label: %w", err)}
		if rmErr := s.Remove(c); rmErr != nil {
			errs = append(errs, fmt.Errorf("removing accuracy circle after failed label: %w", rmErr))
		}
		return errors.Join(errs...)
	}

	p.Circle, p.Label = c, l
	return clearErr
}
