package main

import (
	"fmt"

	"github.com/riadevigo/buoyplanner/internal/geo"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// cmdShare writes a QR code of the waypoint's geo: URI so it can be opened in
// a phone's map app.
func (a *app) cmdShare(name, file string) error {
	w, ok := a.waypoints.FindByName(name)
	if !ok {
		return fmt.Errorf("no waypoint named %q", name)
	}

	uri := geo.GeoURI(w.Position, w.Name)
	if err := qrcode.WriteFile(uri, qrcode.Medium, qrSize, file); err != nil {
		return fmt.Errorf("writing QR code: %w", err)
	}

	Logger.Info("Waypoint shared", "name", w.Name, "file", file)
	fmt.Printf("%s\t%s\n", uri, file)
	return nil
}
