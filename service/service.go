// Package service assembles the recognizer from configuration and runs it
// until cancelled.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/edgewake/trace2wake/commands"
	"github.com/edgewake/trace2wake/config"
	"github.com/edgewake/trace2wake/gesture"
	"github.com/edgewake/trace2wake/input"
	"github.com/edgewake/trace2wake/power"
	"github.com/edgewake/trace2wake/screen"
	"github.com/edgewake/trace2wake/server"
	"github.com/edgewake/trace2wake/utils"
)

// Options replaces the devices opened from configuration, mostly for tests.
type Options struct {
	// Touch is the event source. When nil the configured input is opened.
	Touch input.EventSource
	// Surface reports the touch surface size for the "auto" preset.
	Surface config.SurfaceFunc
	// Sink receives power key events. When nil a device is opened from
	// the power config; failure leaves the trigger without a sink.
	Sink power.Sink
}

// Service owns the engine, the tracker and everything feeding them.
type Service struct {
	cfg config.Config

	engine  *gesture.Engine
	tracker *gesture.Tracker
	trigger *power.Trigger
	history *power.History
	reader  *input.Reader
	rpc     *server.Server

	hooks *ShutdownHook
}

// New opens the configured devices and builds the recognizer. On error every
// opened device is closed again.
func New(cfg config.Config, opts Options) (svc *Service, err error) {
	s := &Service{cfg: cfg, hooks: NewShutdownHook()}
	defer func() {
		if err != nil {
			_ = s.hooks.Shutdown()
		}
	}()

	touch, surface := opts.Touch, opts.Surface
	if touch == nil {
		dev, openErr := input.Open(cfg.General.Input)
		if openErr != nil {
			return nil, openErr
		}
		touch = dev
		defer func() {
			if err != nil {
				_ = dev.Close()
			}
		}()
		if surface == nil {
			surface = func() (int, int, error) { return input.SurfaceSize(dev) }
		}
	}

	geom, err := cfg.Geometry.ResolveGeometry(surface)
	if err != nil {
		return nil, err
	}
	utils.WithField("preset", cfg.Geometry.Preset).Infof("Geometry: halfWidth=%d maxHeight=%d radii=%d..%d yIntercept=%d",
		geom.HalfWidth, geom.MaxHeight, geom.LowerRadius, geom.UpperRadius, geom.YIntercept)

	s.history, err = power.NewHistory(power.DefaultHistorySize)
	if err != nil {
		return nil, err
	}

	sink := opts.Sink
	if sink == nil {
		sink = s.openSink()
	}
	s.trigger = power.NewTrigger(sink, cfg.Hold(), s.history)

	s.engine, err = gesture.NewEngine(geom, s.trigger, cfg.StartupMode())
	if err != nil {
		return nil, err
	}
	s.engine.SetSuspended(cfg.Screen.InitialSuspended)

	s.tracker = gesture.NewTracker(s.engine)
	s.reader = input.NewReader(touch, s.tracker)

	if cfg.Server.Enabled {
		s.rpc = server.New(s, cfg.Server.CORS)
	}
	return s, nil
}

// openSink returns nil when no power device can be opened; the trigger then
// ignores wake requests.
func (s *Service) openSink() power.Sink {
	var (
		dev interface {
			power.Sink
			io.Closer
		}
		err error
	)

	if s.cfg.Power.Device != "" {
		dev, err = power.OpenDeviceSink(s.cfg.Power.Device)
	} else {
		dev, err = power.NewUinputSink(s.cfg.Power.UinputName)
	}
	if err != nil {
		utils.Warn("Power device unavailable: %v", err)
		return nil
	}

	s.hooks.Register("power device", dev.Close)
	return dev
}

// Engine exposes the recognizer for in-process callers.
func (s *Service) Engine() *gesture.Engine {
	return s.engine
}

// Run blocks until ctx is cancelled, the touch source fails or a client
// requests shutdown. Devices are closed before it returns.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(s.tracker.Run(gctx))
	})

	g.Go(func() error {
		return ignoreCanceled(s.reader.Run(gctx))
	})

	if s.rpc != nil {
		g.Go(func() error {
			return s.rpc.Serve(gctx, s.cfg.Server.Listen)
		})
		g.Go(func() error {
			select {
			case <-s.rpc.ShutdownRequested():
				cancel()
			case <-gctx.Done():
			}
			return nil
		})
	}

	if s.cfg.Screen.Source == config.ScreenDBus {
		watcher, err := screen.NewWatcher(s.engine)
		if err != nil {
			utils.Warn("Screen state will only change over RPC: %v", err)
		} else {
			g.Go(func() error {
				return ignoreCanceled(watcher.Run(gctx))
			})
		}
	}

	utils.Info("trace2wake %s running, mode %s", commands.Version, s.engine.Mode())
	err := g.Wait()

	s.trigger.Wait()
	if hookErr := s.hooks.Shutdown(); hookErr != nil {
		err = errors.Join(err, hookErr)
	}
	if err != nil {
		return fmt.Errorf("trace2wake stopped: %w", err)
	}
	utils.Info("trace2wake stopped")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Mode returns the current mode.
func (s *Service) Mode() gesture.Mode {
	return s.engine.Mode()
}

func (s *Service) SetMode(mode gesture.Mode) error {
	return s.engine.SetMode(mode)
}

func (s *Service) Suspended() bool {
	return s.engine.Suspended()
}

func (s *Service) SetSuspended(suspended bool) {
	s.engine.SetSuspended(suspended)
}

// ResetSession goes through the tracker so the engine's session is only
// touched by its consumer goroutine.
func (s *Service) ResetSession() {
	s.tracker.Reset()
}

func (s *Service) Stats() server.Stats {
	session := s.engine.Snapshot()
	return server.Stats{
		State:     session.State(),
		Session:   session,
		Mode:      server.NewModeResult(s.engine.Mode()),
		Suspended: s.engine.Suspended(),
		PowerBusy: s.trigger.Busy(),
		Engine:    s.engine.Stats(),
		Tracker:   s.tracker.Stats(),
		Reader:    s.reader.Stats(),
	}
}

func (s *Service) PressHistory() []power.Press {
	return s.history.Recent()
}

func (s *Service) Version() string {
	return commands.Version
}
