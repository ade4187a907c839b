// Package app assembles the tilt simulation from a config and drives its frame
// loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/tiltbox/internal/config"
	"github.com/zeusync/tiltbox/internal/core/events/bus"
	"github.com/zeusync/tiltbox/internal/core/observability/log"
	"github.com/zeusync/tiltbox/internal/core/sensor"
	"github.com/zeusync/tiltbox/internal/core/system"
	"github.com/zeusync/tiltbox/internal/core/systems/movement"
	"github.com/zeusync/tiltbox/internal/core/systems/telemetry"
	"github.com/zeusync/tiltbox/internal/core/systems/tilt"
	"github.com/zeusync/tiltbox/internal/core/world"
)

var ErrAlreadyRunning = errors.New("app: already running")

// App owns the device, the plate world and the systems that connect them.
type App struct {
	cfg    *config.Config
	logger log.Log
	bus    bus.EventBus

	device  *sensor.Device
	world   *world.World
	manager system.Manager
	source  sensor.Source

	tilt      *tilt.System
	movement  *movement.System
	telemetry *telemetry.System

	running atomic.Bool
	frames  atomic.Uint64
}

// New builds the simulation described by cfg. The sensor source is created but
// only started by Run.
func New(cfg *config.Config, logger log.Log, b bus.EventBus) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, err := newSource(cfg.Sensor)
	if err != nil {
		return nil, err
	}
	return build(cfg, logger, b, src)
}

// NewWithSource is New with an explicit sensor source, which may be nil.
func NewWithSource(cfg *config.Config, logger log.Log, b bus.EventBus, src sensor.Source) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(cfg, logger, b, src)
}

func build(cfg *config.Config, logger log.Log, b bus.EventBus, src sensor.Source) (*App, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if b == nil {
		b = bus.New()
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		bus:     b,
		source:  src,
		manager: system.NewManager(logger),
	}

	a.device = sensor.NewDevice(
		sensor.WithZeroMotionAxes(cfg.Sensor.AcceptZeroMotion),
		sensor.WithLogger(logger.With(log.String("component", "device"))),
	)
	if err := a.device.Attach(b); err != nil {
		return nil, fmt.Errorf("attach device: %w", err)
	}

	w, err := world.New(world.Config{
		HalfExtent:  cfg.Plate.HalfExtent,
		WallHeight:  cfg.Plate.WallHeight,
		Friction:    cfg.Plate.Friction,
		Restitution: cfg.Plate.Restitution,
		FixedStep:   cfg.Plate.FixedStep,
	})
	if err != nil {
		return nil, err
	}
	a.world = w

	a.movement = movement.NewSystem(logger)
	if err := a.populate(); err != nil {
		return nil, err
	}

	syncer, err := tilt.NewSynchronizer(tilt.Config{
		MaxStep:  cfg.MaxStepAngle,
		Baseline: config.Vec(cfg.GravityBaseline),
	}, w, w, w, logger.With(log.String("system", tilt.SystemName)))
	if err != nil {
		return nil, err
	}
	a.tilt = tilt.NewSystem(syncer, a.device)
	a.telemetry = telemetry.NewSystem(cfg.TelemetryEvery, a.tilt, w, b, logger)

	for _, s := range []system.System{a.tilt, a.movement, world.NewStepSystem(w), a.telemetry} {
		if err := a.manager.RegisterSystem(s); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// populate places the configured dice and movers.
func (a *App) populate() error {
	boxes := world.NewBoxFactory(a.world).WithPrefix("dice")
	for _, d := range a.cfg.Dice {
		if _, err := boxes.WithMass(d.Mass).WithSize(d.Size).MakeNamed(d.Name, config.Vec(d.Position)); err != nil {
			return fmt.Errorf("place dice: %w", err)
		}
	}

	movers := world.NewBoxFactory(a.world).WithPrefix("mover").WithMass(0)
	for _, m := range a.cfg.Movers {
		body, err := movers.WithSize(m.Size).MakeNamed(m.Name, config.Vec(m.Position))
		if err != nil {
			return fmt.Errorf("place mover: %w", err)
		}
		e := movement.NewEntity(body.Name(), body, movement.NewComponent(m.MaxSpeed, m.MaxAcceleration))
		e.ApplyAcceleration(config.Vec(m.Direction))
		if err := a.movement.Add(e); err != nil {
			return err
		}
	}
	return nil
}

func newSource(cfg config.SensorConfig) (sensor.Source, error) {
	switch cfg.Source {
	case config.SourceNone:
		return nil, nil
	case config.SourceSynthetic:
		return sensor.NewSynthetic(sensor.SyntheticConfig{
			Interval:    cfg.SampleInterval,
			Amplitude:   cfg.Amplitude,
			GlitchEvery: cfg.GlitchEvery,
		}), nil
	case config.SourceReplay:
		trace, err := sensor.LoadTrace(cfg.TracePath)
		if err != nil {
			return nil, err
		}
		if cfg.SampleInterval > 0 && trace.Interval == 0 {
			trace.Interval = cfg.SampleInterval
		}
		return sensor.NewReplay(trace), nil
	default:
		return nil, fmt.Errorf("%w: %q", sensor.ErrUnknownSource, cfg.Source)
	}
}

// Step runs one frame of dt.
func (a *App) Step(dt time.Duration) error {
	if err := a.manager.Update(dt); err != nil {
		return fmt.Errorf("frame %d: %w", a.frames.Load()+1, err)
	}
	a.frames.Add(1)
	return nil
}

// Run pumps the sensor source and runs the frame loop until ctx is done, the
// configured frame count is reached or a frame fails.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stop := context.WithCancel(gctx)
	defer stop()

	if a.source != nil {
		g.Go(func() error {
			return sensor.Pump(loopCtx, a.source, a.bus, a.logger)
		})
	}
	g.Go(func() error {
		defer stop()
		return a.loop(loopCtx)
	})

	a.logger.Info("simulation started",
		log.Int("frame_rate", a.cfg.FrameRate),
		log.Int("max_frames", a.cfg.MaxFrames),
		log.Int("bodies", a.world.Stats().Bodies),
	)
	err := g.Wait()
	a.logger.Info("simulation stopped", log.Uint64("frames", a.frames.Load()), log.Uint64("digest", a.world.Digest()))
	return err
}

func (a *App) loop(ctx context.Context) error {
	dt := a.cfg.FrameDuration()
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.Step(dt); err != nil {
				return err
			}
			if a.cfg.MaxFrames > 0 && a.frames.Load() >= uint64(a.cfg.MaxFrames) {
				return nil
			}
		}
	}
}

func (a *App) Device() *sensor.Device        { return a.device }
func (a *App) World() *world.World           { return a.world }
func (a *App) Manager() system.Manager       { return a.manager }
func (a *App) Bus() bus.EventBus             { return a.bus }
func (a *App) Movers() []*movement.Entity    { return a.movement.Entities() }
func (a *App) Telemetry() telemetry.Snapshot { return a.telemetry.Last() }
func (a *App) LastFrame() tilt.FrameResult   { return a.tilt.Last() }
func (a *App) Frames() uint64                { return a.frames.Load() }
