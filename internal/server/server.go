package server

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/core/host"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/peer"
	"github.com/driftsync/driftsync/internal/core/transport"
)

// Server drives a Host at a fixed tick rate and feeds it accepted
// connections. All host mutations happen on the tick goroutine, which is
// what gives the core its single-threaded contract: admissions, removals
// and Update are serialized through one select loop.
type Server struct {
	cfg      config.Config
	host     *host.Host
	listener transport.Listener
	lg       log.Log

	joins chan transport.Connection
	drops chan string
}

func New(cfg config.Config, h *host.Host, listener transport.Listener, lg log.Log) *Server {
	if lg == nil {
		lg = log.Provide()
	}
	s := &Server{
		cfg:      cfg,
		host:     h,
		listener: listener,
		lg:       lg,
		joins:    make(chan transport.Connection, 16),
		drops:    make(chan string, 64),
	}
	h.Subscribe(&reaper{server: s})
	return s
}

// Run blocks until ctx is cancelled or a loop fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return s.listener.Close()
	})

	g.Go(func() error {
		return s.acceptLoop(ctx)
	})

	g.Go(func() error {
		return s.tickLoop(ctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrListenerDown) {
				return nil
			}
			return err
		}
		select {
		case s.joins <- conn:
		case <-ctx.Done():
			_ = conn.Close()
			return nil
		}
	}
}

func (s *Server) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()

	s.lg.Info("tick loop started",
		log.Int("tick_rate", s.cfg.TickRate),
		log.Uint32("send_every", s.cfg.SendEvery))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case conn := <-s.joins:
			s.host.AddPeer(conn)
		case id := <-s.drops:
			s.host.RemovePeerID(id)
		case <-ticker.C:
			s.host.Update()
		}
	}
}

// reaper removes peers whose connections died. PeerError fires on the tick
// goroutine, so the drop is queued rather than applied mid-update.
type reaper struct {
	host.NopHooks
	server *Server
}

func (r *reaper) PeerError(p *peer.Peer, err error) {
	if !errors.Is(err, transport.ErrClosed) {
		return
	}
	select {
	case r.server.drops <- p.Conn().ID():
	default:
		// Queue full: the same error fires again next tick.
	}
}
