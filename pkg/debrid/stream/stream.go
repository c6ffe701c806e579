package stream

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/pkg/debrid/resolver"
	"github.com/sirrobot01/streamgate/pkg/debrid/types"
)

// Request is one batch of candidate torrents to resolve into stream
// links. Candidates are tried in order; ones that fail with a provider
// error are skipped, anything else aborts the stream.
type Request struct {
	Torrents []string
	Season   int
	Episode  int
	MaxLinks int
}

// Result carries either a resolved link or the error that stopped the
// stream. At most one Result per stream has Err set, and it is the last.
type Result struct {
	Link *types.StreamLink
	Err  error
}

// Stream is a lazily-evaluated sequence of resolved links. Links are
// produced one at a time as the consumer reads from Results; nothing is
// resolved ahead of demand. Close releases the worker and the
// underlying provider client.
type Stream struct {
	Id      string
	results chan Result

	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
	release   func()
}

func (s *Stream) Results() <-chan Result {
	return s.results
}

// Close cancels resolution and releases the provider client. Safe to
// call multiple times and concurrently with reads.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		if s.release != nil {
			s.release()
		}
	})
}

// Generator produces Streams backed by a Resolver.
type Generator struct {
	resolver *resolver.Resolver
	logger   zerolog.Logger

	// release is invoked when a stream is closed; the engine uses it to
	// return the provider client to its pool.
	release func()
}

func NewGenerator(r *resolver.Resolver, release func()) *Generator {
	return &Generator{
		resolver: r,
		logger:   r.Client().GetLogger(),
		release:  release,
	}
}

// Generate starts resolving req's torrents in the background. The
// returned stream yields at most req.MaxLinks links (unlimited when
// zero or negative). Candidates failing with a ProviderError are
// logged and skipped; any other error ends the stream and is delivered
// as the final result.
func (g *Generator) Generate(ctx context.Context, req Request) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		Id:      uuid.NewString(),
		results: make(chan Result),
		cancel:  cancel,
		done:    make(chan struct{}),
		release: g.release,
	}
	go g.run(ctx, req, s)
	return s
}

func (g *Generator) run(ctx context.Context, req Request, s *Stream) {
	defer close(s.done)
	defer close(s.results)

	produced := 0
	for _, torrent := range req.Torrents {
		if ctx.Err() != nil {
			return
		}
		if req.MaxLinks > 0 && produced >= req.MaxLinks {
			return
		}
		link, err := g.resolver.Resolve(ctx, torrent, req.Season, req.Episode)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if perr, ok := types.AsProviderError(err); ok {
				g.logger.Debug().Str("torrent", torrent).Str("kind", string(perr.Kind)).Msg("Skipping candidate")
				continue
			}
			select {
			case s.results <- Result{Err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case s.results <- Result{Link: link}:
			produced++
		case <-ctx.Done():
			return
		}
	}
}
