package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/riadevigo/buoyplanner/internal/config"
	"github.com/riadevigo/buoyplanner/internal/dispatcher"
	"github.com/riadevigo/buoyplanner/internal/geolocation"
	"github.com/riadevigo/buoyplanner/internal/logging"
	"github.com/riadevigo/buoyplanner/internal/route"
	"github.com/riadevigo/buoyplanner/internal/storage"
	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/riadevigo/buoyplanner/internal/surface/headless"
	"github.com/riadevigo/buoyplanner/internal/view"
	"github.com/riadevigo/buoyplanner/internal/waypoint"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// app is the composition root: one loop, one collection, one view.
type app struct {
	loop      *dispatcher.Dispatcher
	store     storage.Backend
	waypoints *waypoint.Collection
	view      *view.MapView
	surface   *headless.Surface
	mapCfg    config.MapConfig
}

func newApp(ctx context.Context) (*app, error) {
	loop, err := dispatcher.New(logging.NewDispatcherLogger(StoreLogger))
	if err != nil {
		return nil, fmt.Errorf("creating event loop: %w", err)
	}

	storeCfg := config.GetStorageConfig()
	store, err := storage.NewBackend(storeCfg, StoreLogger)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("initializing %s storage: %w", storeCfg.Type, err)
	}

	waypoints, err := waypoint.NewCollection(store, Logger.With("component", "waypoints"))
	if err != nil {
		store.Close()
		return nil, err
	}
	if storeCfg.Seed && waypoints.Len() == 0 {
		if err := waypoint.SeedCollection(waypoints); err != nil {
			store.Close()
			return nil, fmt.Errorf("seeding waypoints: %w", err)
		}
	}

	locator, err := geolocation.FromConfig(config.GetGeolocationConfig())
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &app{
		loop:      loop,
		store:     store,
		waypoints: waypoints,
		mapCfg:    config.GetMapConfig(),
	}
	loop.Start(ctx)

	routeCfg := config.GetRouteConfig()
	trackerCfg := config.GetTrackerConfig()
	defs := route.DefaultDefinitions()
	for id, names := range routeCfg.Definitions {
		defs[core.RouteID(id)] = names
	}

	vcfg := view.Config{
		Definitions:   defs,
		FallbackStart: routeCfg.FallbackStart,
		LiveLabel:     trackerCfg.Label,
		SelectZoom:    a.mapCfg.SelectZoom,
		MinFocusZoom:  trackerCfg.MinFocusZoom,
		StepDelay:     config.GetAnimationConfig().StepDelay,
		Styles:        surface.DefaultStyles(),
	}

	a.surface = headless.New(headless.Config{
		Center: core.Position{Lat: a.mapCfg.CenterLat, Lng: a.mapCfg.CenterLng},
		Zoom:   a.mapCfg.Zoom,
		Width:  a.mapCfg.Width,
		Height: a.mapCfg.Height,
	})

	var attachErr error
	err = loop.Do(ctx, func() {
		a.view = view.New(loop, waypoints, locator, vcfg, Logger.With("component", "view"))
		attachErr = a.view.AttachSurface(a.surface)
	})
	if err == nil {
		err = attachErr
	}
	if err != nil {
		a.close()
		return nil, fmt.Errorf("attaching map: %w", err)
	}

	a.register()
	Logger.Info("Planner ready", "waypoints", waypoints.Len(), "storage", storeCfg.Type)
	return a, nil
}

// close tears the view down on the loop, then stops the loop and the store.
func (a *app) close() {
	ctx := context.Background()
	if a.view != nil {
		if err := a.loop.Do(ctx, func() {
			if err := a.view.Close(); err != nil {
				Logger.Warn("View close reported errors", "error", err)
			}
		}); err != nil && !errors.Is(err, dispatcher.ErrStopped) {
			Logger.Warn("Could not close view", "error", err)
		}
	}
	a.loop.Stop()
	<-a.loop.Done()

	if err := a.store.Close(); err != nil {
		Logger.Warn("Storage close failed", "error", err)
	}
}
