package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/riadevigo/buoyplanner/internal/assistant"
	"github.com/riadevigo/buoyplanner/internal/config"
	"github.com/riadevigo/buoyplanner/internal/dispatcher"
	"github.com/riadevigo/buoyplanner/internal/geo"
	"github.com/riadevigo/buoyplanner/internal/logging"
	"github.com/riadevigo/buoyplanner/internal/route"
	"github.com/riadevigo/buoyplanner/internal/timeline"
	"github.com/riadevigo/buoyplanner/internal/tracker"
	"github.com/riadevigo/buoyplanner/internal/waypoint"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

var errUsage = errors.New("wrong number of arguments")

// progress is a snapshot of the animation taken on the loop.
type progress struct {
	State timeline.State
	Drawn int
}

// register exposes the view operations as loop commands so every view
// access happens on the loop goroutine.
func (a *app) register() {
	a.loop.Register("route.select", func(e dispatcher.Event) (any, error) {
		if err := a.view.SelectRoute(core.RouteID(e.Args[0])); err != nil {
			return nil, err
		}
		return a.view.Resolved(), nil
	}, dispatcher.Logged())

	a.loop.Register("route.catalog", func(dispatcher.Event) (any, error) {
		return a.view.Catalog(), nil
	})

	a.loop.Register("route.visible", func(dispatcher.Event) (any, error) {
		return a.view.Visible(), nil
	})

	a.loop.Register("animation.progress", func(dispatcher.Event) (any, error) {
		p := progress{State: a.view.Engine().State()}
		if s := a.view.Engine().Session(); s != nil {
			p.Drawn = s.Drawn()
		}
		return p, nil
	})

	a.loop.Register("tracker.start", func(dispatcher.Event) (any, error) {
		return a.view.LiveStart(), nil
	})
}

func (a *app) dispatch(ctx context.Context, command string, args ...string) (any, error) {
	return a.loop.Dispatch(ctx, dispatcher.Event{Command: command, Args: args})
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "routes":
		return a.cmdRoutes(ctx)
	case "resolve":
		if len(args) != 1 {
			return errUsage
		}
		return a.cmdResolve(ctx, args[0])
	case "animate":
		if len(args) != 1 {
			return errUsage
		}
		return a.cmdAnimate(ctx, args[0])
	case "locate":
		return a.cmdLocate(ctx)
	case "convert":
		if len(args) != 3 {
			return errUsage
		}
		return cmdConvert(args[0], args[1], args[2])
	case "list":
		if len(args) > 1 {
			return errUsage
		}
		return a.cmdList(ctx, args)
	case "add":
		if len(args) < 7 {
			return errUsage
		}
		return a.cmdAdd(args)
	case "share":
		if len(args) != 2 {
			return errUsage
		}
		return a.cmdShare(args[0], args[1])
	case "ask":
		if len(args) == 0 {
			return errUsage
		}
		return a.cmdAsk(ctx, strings.Join(args, " "))
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) cmdRoutes(ctx context.Context) error {
	res, err := a.dispatch(ctx, "route.catalog")
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOURSE")
	for _, e := range res.([]route.Entry) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Label, e.Sub)
	}
	return tw.Flush()
}

func (a *app) cmdResolve(ctx context.Context, id string) error {
	res, err := a.dispatch(ctx, "route.select", id)
	if err != nil {
		return err
	}
	r := res.(*route.Resolved)
	names := make([]string, 0, len(r.Positions))
	if r.HasStart {
		names = append(names, "start")
	}
	for _, wp := range r.Waypoints {
		names = append(names, wp.Name)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPOINT\tPOSITION")
	for i, p := range r.Positions {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, names[i], geo.FormatPosition(p))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !r.Animatable() && r.RouteID != core.RouteAll {
		fmt.Println("course has fewer than two points; nothing to animate")
	}
	return nil
}

func (a *app) cmdAnimate(ctx context.Context, id string) error {
	res, err := a.dispatch(ctx, "route.select", id)
	if err != nil {
		return err
	}
	r := res.(*route.Resolved)
	if !r.Animatable() {
		return fmt.Errorf("route %s has %d points; nothing to animate", id, len(r.Positions))
	}

	ctx = logging.WithSession(ctx, logging.Session{Route: id, ID: uuid.NewString()})

	stepDelay := config.GetAnimationConfig().StepDelay
	if stepDelay <= 0 {
		stepDelay = timeline.DefaultStepDelay
	}
	Logger.InfoContext(ctx, "Animation started", "segments", len(r.Positions)-1, "stepDelay", stepDelay)
	deadline := time.Now().Add(time.Duration(len(r.Positions))*stepDelay + 2*time.Second)
	ticker := time.NewTicker(stepDelay / 4)
	defer ticker.Stop()

	for {
		res, err := a.dispatch(ctx, "animation.progress")
		if err != nil {
			return err
		}
		p := res.(progress)
		if p.State != timeline.StateScheduling {
			Logger.InfoContext(ctx, "Animation finished", "segments", p.Drawn, "state", p.State)
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("animation of %s did not finish (%d segments drawn)", id, p.Drawn)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	out, err := a.surface.GeoJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(out))
	return err
}

func (a *app) cmdLocate(ctx context.Context) error {
	timeout := config.GetGeolocationConfig().Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		ch  <-chan tracker.Result
		err error
	)
	if doErr := a.loop.Do(ctx, func() { ch, err = a.view.Locate(lctx) }); doErr != nil {
		return doErr
	}
	if err != nil {
		return err
	}

	var result tracker.Result
	select {
	case result = <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}
	if result.Err != nil {
		return result.Err
	}

	fmt.Printf("%s\t%s\t±%.0f m\n", result.Fix.Position, geo.FormatPosition(result.Fix.Position), result.Fix.Accuracy)
	return nil
}

func cmdConvert(degrees, minutes, hemisphere string) error {
	h := core.Hemisphere(strings.ToUpper(hemisphere))
	if !h.Valid() {
		return fmt.Errorf("%w: hemisphere %q", geo.ErrInvalidCoordinate, hemisphere)
	}
	v, err := geo.ParseDM(degrees, minutes, hemisphere, h.IsLatitude())
	if err != nil {
		return err
	}
	fmt.Printf("%.5f\t%s\n", v, geo.FormatDM(v, h.IsLatitude()))
	return nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	if len(args) == 1 {
		if _, err := a.dispatch(ctx, "route.select", args[0]); err != nil {
			return err
		}
	}
	res, err := a.dispatch(ctx, "route.visible")
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPOSITION\tDESCRIPTION")
	for _, wp := range res.([]core.Waypoint) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", wp.Name, geo.FormatPosition(wp.Position), wp.Description)
	}
	return tw.Flush()
}

func (a *app) cmdAdd(args []string) error {
	f := waypoint.NewFormInput()
	f.Name = args[0]
	f.LatDegrees, f.LatMinutes, f.LatHemisphere = args[1], args[2], args[3]
	f.LngDegrees, f.LngMinutes, f.LngHemisphere = args[4], args[5], args[6]
	f.Description = strings.Join(args[7:], " ")

	d, err := f.Draft()
	if err != nil {
		return err
	}
	w, err := a.waypoints.Create(d)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\t%s\n", w.ID, w.Name, geo.FormatPosition(w.Position))
	return nil
}

func (a *app) cmdAsk(ctx context.Context, question string) error {
	asst, err := assistant.NewFromConfig(ctx, config.GetAssistantConfig(), Logger.With("component", "assistant"))
	if err != nil {
		return err
	}

	conv := assistant.NewConversation(asst, func() *core.Position {
		res, err := a.dispatch(ctx, "tracker.start")
		if err != nil {
			return nil
		}
		return res.(*core.Position)
	})

	m, err := conv.Send(ctx, question)
	fmt.Println(m.Text)
	if err != nil {
		return err
	}
	for _, l := range m.Links {
		fmt.Printf("  - %s <%s>\n", l.Title, l.URI)
	}
	return nil
}
