//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/core/host"
	"github.com/driftsync/driftsync/internal/core/observability/log"
)

func InjectLogger(cfg config.Config) *log.Logger {
	wire.Build(ProvideLevel, log.New)
	return nil
}

func InjectHost(cfg config.Config, lg *log.Logger) *host.Host {
	wire.Build(ProvideRoom, ProvideOptions, host.New)
	return nil
}
