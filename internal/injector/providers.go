package injector

import (
	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/core/host"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/room"
)

func ProvideLevel(cfg config.Config) log.Level {
	return log.ParseLevel(cfg.LogLevel)
}

func ProvideRoom() *room.Basic {
	return room.NewBasic()
}

func ProvideOptions(cfg config.Config, r *room.Basic, lg *log.Logger) host.Options {
	return host.Options{
		Room:      r,
		SendEvery: room.Tick(cfg.SendEvery),
		Logger:    lg,
	}
}
