// Package server wires the HTTP surface of the service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/qiwen/shopguide/assist"
	"github.com/qiwen/shopguide/internal/profile"
	"github.com/qiwen/shopguide/metrics"
	apiv1 "github.com/qiwen/shopguide/server/router/api/v1"
	"github.com/qiwen/shopguide/server/router/frontend"
	"github.com/qiwen/shopguide/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	collector  *metrics.Collector
}

// NewServer creates the echo server with API, metrics and frontend routes.
func NewServer(_ context.Context, profile *profile.Profile, store *store.Store, dispatcher *assist.Dispatcher, collector *metrics.Collector) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	// Infrastructure failures surface as a plain 500; callers never see
	// internal error detail.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		he, ok := err.(*echo.HTTPError)
		if !ok {
			slog.Error("request failed", "path", c.Path(), "error", err)
			he = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
		if err := c.JSON(he.Code, map[string]any{"message": he.Message}); err != nil {
			slog.Error("failed to write error response", "error", err)
		}
	}

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
		collector:  collector,
	}

	apiV1Service := apiv1.NewAPIV1Service(profile, dispatcher, collector)
	apiV1Service.Register(e)

	e.GET("/healthz", s.healthzHandler)
	e.GET("/metrics", echo.WrapHandler(collector.Handler()))

	frontend.NewFrontendService(profile).Serve(e)

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	if s.Profile.UNIXSock != "" {
		// Remove stale socket file before binding.
		_ = os.Remove(s.Profile.UNIXSock)
		listener, err := net.Listen("unix", s.Profile.UNIXSock)
		if err != nil {
			return errors.Wrapf(err, "failed to listen on unix socket %s", s.Profile.UNIXSock)
		}
		s.echoServer.Listener = listener
		return s.echoServer.Start("")
	}
	return s.echoServer.Start(fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port))
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}

func (s *Server) healthzHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "record store unreachable")
	}
	return c.String(http.StatusOK, "ok")
}
