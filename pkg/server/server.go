package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/internal/config"
	"github.com/sirrobot01/streamgate/internal/logger"
	"github.com/sirrobot01/streamgate/pkg/debrid/engine"
	"github.com/sirrobot01/streamgate/pkg/search"
	"github.com/sirrobot01/streamgate/pkg/version"
)

type Server struct {
	router  *chi.Mux
	engine  *engine.Engine
	jackett *search.Jackett
	logger  zerolog.Logger
}

func New(eng *engine.Engine) *Server {
	l := logger.New("http")
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s := &Server{
		router: r,
		engine: eng,
		logger: l,
	}
	cfg := config.Get()
	if cfg.Jackett.Host != "" {
		s.jackett = search.NewJackett(&cfg.Jackett)
	}

	r.Post("/api/stream", s.handleStream)
	r.Get("/api/search", s.handleSearch)
	r.Post("/api/auth/device", s.handleDeviceCode)
	r.Post("/api/auth/token", s.handleToken)
	r.Get("/api/accounts", s.handleAccounts)
	r.Post("/api/prune", s.handlePrune)
	r.Get("/internal/version", s.handleVersion)
	r.Get("/logs", s.getLogs)
	r.Get("/stats", s.getStats)

	return s
}

func (s *Server) Start(ctx context.Context) error {
	cfg := config.Get()

	port := fmt.Sprintf(":%s", cfg.Server.Port)
	s.logger.Info().Msgf("Server started on %s", port)
	srv := &http.Server{
		Addr:    port,
		Handler: s.router,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Info().Msgf("Error starting server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	s.logger.Info().Msg("Shutting down gracefully...")
	return srv.Shutdown(context.Background())
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(version.GetInfo()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode version")
	}
}

func (s *Server) getLogs(w http.ResponseWriter, r *http.Request) {
	logFile := logger.GetLogPath()

	file, err := os.Open(logFile)
	if err != nil {
		http.Error(w, "Error reading log file", http.StatusInternalServerError)
		return
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			s.logger.Error().Err(err).Msg("Error closing log file")
		}
	}(file)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=application.log")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err = io.Copy(w, file); err != nil {
		s.logger.Error().Err(err).Msg("Error streaming log file")
	}
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := map[string]interface{}{
		"heap_alloc_mb":  fmt.Sprintf("%.2fMB", float64(memStats.HeapAlloc)/1024/1024),
		"total_alloc_mb": fmt.Sprintf("%.2fMB", float64(memStats.TotalAlloc)/1024/1024),
		"sys_mb":         fmt.Sprintf("%.2fMB", float64(memStats.Sys)/1024/1024),
		"gc_cycles":      memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
		"num_cpu":        runtime.NumCPU(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode stats")
	}
}
