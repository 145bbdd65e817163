package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/core/host"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/room"
	"github.com/driftsync/driftsync/internal/core/transport"
	"github.com/driftsync/driftsync/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "server error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	lg := log.New(log.ParseLevel(cfg.LogLevel))

	listener, err := listen(cfg, lg)
	if err != nil {
		return err
	}

	h := host.New(host.Options{
		Room:      room.NewBasic(),
		SendEvery: room.Tick(cfg.SendEvery),
		StartTick: 0,
		Logger:    lg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg.Info("server starting",
		log.String("addr", listener.Addr()),
		log.String("transport", cfg.Transport))

	return server.New(cfg, h, listener, lg).Run(ctx)
}

func listen(cfg config.Config, lg *log.Logger) (transport.Listener, error) {
	switch cfg.Transport {
	case "quic":
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load tls keypair: %w", err)
		}
		tlsConf := &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{"driftsync"},
		}
		return transport.ListenQUIC(cfg.Addr(), tlsConf, lg)
	default:
		return transport.ListenWebSocket(cfg.Addr(), cfg.WriteTimeout, lg)
	}
}
