// Package server exposes the error manager's action table and metrics over
// HTTP.
//
// Ownership boundary:
// - route wiring and request middleware
//
// - read-only status views of the action registry
//
// The server never mutates the registry; bindings change only through the
// dispatcher.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/emctl/internal/action"
	"github.com/danmuck/emctl/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// StatusSource is the part of dispatch.Dispatcher the status routes read.
type StatusSource interface {
	Registry() *action.Registry
	RecoveryAvailable() bool
}

type Server struct {
	BootID   string
	Addr     string
	Appeared time.Time

	source StatusSource
	router *gin.Engine
	log    zerolog.Logger
}

// EntryView is the JSON form of one action table row.
type EntryView struct {
	Fault    string `json:"fault"`
	Category string `json:"category"`
	Action   string `json:"action"`
	Handler  string `json:"handler,omitempty"`
}

func New(bootID, addr string, source StatusSource, logger zerolog.Logger) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger, "/metrics"))
	r.Use(observability.RequestMetricsMiddleware())
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		BootID:   bootID,
		Addr:     addr,
		Appeared: time.Now(),
		source:   source,
		router:   r,
		log:      logger.With().Str("component", "server").Logger(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"boot_id": s.BootID,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"boot_id":            s.BootID,
			"recovery_available": s.source.RecoveryAvailable(),
			"entries":            Entries(s.source.Registry()),
		})
	})
}

// Entries renders the registry in ascending id order.
func Entries(r *action.Registry) []EntryView {
	entries := r.Entries()
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		v := EntryView{
			Fault:    e.ID.String(),
			Category: e.ID.Category().String(),
			Action:   e.Kind().String(),
		}
		if custom, ok := e.Action.(action.Custom); ok {
			v.Handler = custom.Name
		}
		out = append(out, v)
	}
	return out
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.router, ReadHeaderTimeout: readHeaderTimeout}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.Addr).Msg("serving status")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("status server stopped")
	return nil
}
