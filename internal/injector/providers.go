package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/tiltbox/internal/config"
	"github.com/zeusync/tiltbox/internal/core/events/bus"
	"github.com/zeusync/tiltbox/internal/core/observability/log"
)

var ProviderSet = wire.NewSet(ProvideLogger, bus.New)

// ProvideLogger builds the process logger at the configured level. The cleanup
// flushes buffered entries.
func ProvideLogger(cfg *config.Config) (log.Log, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	l := log.New(level)
	return l, func() { _ = l.Sync() }, nil
}
