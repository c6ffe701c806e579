package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/internal/config"
	"github.com/sirrobot01/streamgate/internal/logger"
	"github.com/sirrobot01/streamgate/pkg/debrid/realdebrid"
	"github.com/sirrobot01/streamgate/pkg/debrid/resolver"
	"github.com/sirrobot01/streamgate/pkg/debrid/stream"
	"github.com/sirrobot01/streamgate/pkg/debrid/types"
	"golang.org/x/sync/errgroup"
)

// Engine holds the configured provider clients and hands out stream
// generators backed by them. Clients are long-lived; streams borrow a
// client and return it on Close.
type Engine struct {
	mu      sync.RWMutex
	clients map[string]types.Client
	order   []string
	logger  zerolog.Logger
}

func New(cfg *config.Config) (*Engine, error) {
	e := &Engine{
		clients: make(map[string]types.Client),
		logger:  logger.New("engine"),
	}
	for _, dc := range cfg.Debrids {
		client, err := createClient(dc)
		if err != nil {
			return nil, err
		}
		// OAuth token bundles are exchanged for a bearer token up front
		if rd, ok := client.(*realdebrid.RealDebrid); ok {
			if err := rd.RefreshAccessToken(context.Background()); err != nil {
				return nil, fmt.Errorf("refreshing %s token: %w", dc.Name, err)
			}
		}
		e.clients[dc.Name] = client
		e.order = append(e.order, dc.Name)
		e.logger.Info().Msgf("Registered debrid provider: %s", dc.Name)
	}
	if len(e.clients) == 0 {
		return nil, fmt.Errorf("no debrid providers configured")
	}
	return e, nil
}

func createClient(dc config.Debrid) (types.Client, error) {
	switch dc.Name {
	case "realdebrid":
		return realdebrid.New(dc), nil
	default:
		return nil, fmt.Errorf("unknown debrid provider: %s", dc.Name)
	}
}

// Client returns the provider client registered under name, or the
// first configured one when name is empty.
func (e *Engine) Client(name string) (types.Client, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if name == "" {
		name = e.order[0]
	}
	client, ok := e.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown debrid provider: %s", name)
	}
	return client, nil
}

func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

// Generator builds a stream generator for the named provider using its
// configured polling budget.
func (e *Engine) Generator(name string) (*stream.Generator, error) {
	client, err := e.Client(name)
	if err != nil {
		return nil, err
	}
	cfg := e.providerConfig(name)
	r := resolver.New(client, cfg.MaxPollRetries, cfg.GetPollInterval())
	return stream.NewGenerator(r, func() {
		client.Close()
	}), nil
}

func (e *Engine) providerConfig(name string) config.Debrid {
	cfg := config.Get()
	for _, dc := range cfg.Debrids {
		if dc.Name == name || name == "" {
			return dc
		}
	}
	return config.Debrid{}
}

// PruneEnded deletes torrents that reached a terminal failure status
// from every configured provider account. Deletions run with bounded
// concurrency per provider.
func (e *Engine) PruneEnded(ctx context.Context) error {
	e.mu.RLock()
	clients := make([]types.Client, 0, len(e.clients))
	for _, c := range e.clients {
		clients = append(clients, c)
	}
	e.mu.RUnlock()

	for _, client := range clients {
		torrents, err := client.GetTorrents(ctx)
		if err != nil {
			return err
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(3)
		for _, t := range torrents {
			if !types.IsTerminalFailure(t.Status) {
				continue
			}
			t := t
			g.Go(func() error {
				e.logger.Info().Msgf("Pruning %s torrent %s (%s)", client.GetName(), t.Id, t.Status)
				return client.DeleteTorrent(gctx, t.Id)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases all registered provider clients.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.clients {
		c.Close()
	}
}
