package sensor

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/zeusync/tiltbox/internal/core/events/bus"
	"github.com/zeusync/tiltbox/internal/core/observability/log"
)

// Source yields device readings. Next blocks until the next reading is due and
// returns io.EOF once the source is exhausted.
type Source interface {
	Name() string
	Next(ctx context.Context) (Reading, error)
}

// Pump publishes readings from src onto b until the source ends or ctx is done.
// Handler failures are logged and do not stop the pump.
func Pump(ctx context.Context, src Source, b bus.EventBus, logger log.Log) error {
	logger = logger.With(log.String("source", src.Name()))
	logger.Info("sensor source started")

	published := 0
	for {
		r, err := src.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			logger.Info("sensor source exhausted", log.Int("readings", published))
			return nil
		case ctx.Err() != nil:
			logger.Debug("sensor source stopped", log.Int("readings", published))
			return nil
		case err != nil:
			return err
		}

		if r.Orientation != nil {
			if perr := b.Publish(bus.NewEvent(EventOrientation, src.Name(), *r.Orientation)); perr != nil {
				logger.Warn("orientation delivery failed", log.Error(perr))
			}
		}
		if r.Motion != nil {
			if perr := b.Publish(bus.NewEvent(EventMotion, src.Name(), *r.Motion)); perr != nil {
				logger.Warn("motion delivery failed", log.Error(perr))
			}
		}
		published++
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
