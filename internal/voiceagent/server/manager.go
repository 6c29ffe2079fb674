package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/voxpeer/pkg/log"
)

// Server is a long-running listener stopped by cancelling ctx.
type Server interface {
	Start(ctx context.Context) error
}

// Manager manages the lifecycle of the agent's servers.
type Manager struct {
	servers []Server
}

func NewManager(servers ...Server) *Manager {
	return &Manager{servers: servers}
}

// Start launches all servers in parallel and waits for termination. The
// first failure stops the others.
func (m *Manager) Start(ctx context.Context) error {
	if len(m.servers) == 0 {
		<-ctx.Done()
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range m.servers {
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	log.Info("All servers starting...", "count", len(m.servers))
	return g.Wait()
}
