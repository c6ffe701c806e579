package streamgate

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirrobot01/streamgate/internal/config"
	"github.com/sirrobot01/streamgate/internal/logger"
	"github.com/sirrobot01/streamgate/pkg/debrid/engine"
	"github.com/sirrobot01/streamgate/pkg/server"
	"github.com/sirrobot01/streamgate/pkg/version"
)

// Start wires the debrid engine and the HTTP server together and runs
// until the context is cancelled or a component fails.
func Start(ctx context.Context) error {
	cfg := config.Get()
	_log := logger.Default()

	_log.Info().Msgf("Version: %s", version.GetInfo().String())
	_log.Debug().Msgf("Config Loaded: %s", cfg.JsonFile())
	_log.Info().Msgf("Default Log Level: %s", cfg.LogLevel)

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	srv := server.New(eng)

	var wg sync.WaitGroup
	errChan := make(chan error, 1)

	safeGo := func(f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					_log.Error().
						Interface("panic", r).
						Str("stack", string(stack)).
						Msg("Recovered from panic in goroutine")
					errChan <- fmt.Errorf("panic: %v", r)
				}
			}()
			if err := f(); err != nil {
				errChan <- err
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	safeGo(func() error {
		return srv.Start(ctx)
	})

	go func() {
		wg.Wait()
		close(errChan)
	}()

	select {
	case err := <-errChan:
		cancel()
		return err
	case <-ctx.Done():
		return nil
	}
}
