// Package v1 exposes the assist API.
package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/qiwen/shopguide/assist"
	"github.com/qiwen/shopguide/internal/profile"
	"github.com/qiwen/shopguide/metrics"
)

// maxConcurrentStreams bounds in-flight generation streams; further
// requests wait on the semaphore until one finishes.
const maxConcurrentStreams = 32

type APIV1Service struct {
	Profile    *profile.Profile
	Dispatcher *assist.Dispatcher

	collector       *metrics.Collector
	streamSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, dispatcher *assist.Dispatcher, collector *metrics.Collector) *APIV1Service {
	return &APIV1Service{
		Profile:         profile,
		Dispatcher:      dispatcher,
		collector:       collector,
		streamSemaphore: semaphore.NewWeighted(maxConcurrentStreams),
	}
}

// Register mounts the assist routes. The bare /script path is kept for
// clients of the original deployment.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.POST("/api/v1/script", s.scriptHandler)
	e.POST("/script", s.scriptHandler)
}

type scriptRequest struct {
	Mode    string `json:"mode"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// scriptHandler answers one assist request with a chunked text/plain body.
// Every recoverable failure is delivered inside the body; only
// infrastructure failures produce an error status.
func (s *APIV1Service) scriptHandler(c echo.Context) error {
	var req scriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	ctx := c.Request().Context()
	requestID := uuid.NewString()
	started := time.Now()

	if err := s.streamSemaphore.Acquire(ctx, 1); err != nil {
		// Caller went away while waiting for a stream slot.
		return nil
	}
	defer s.streamSemaphore.Release(1)

	slog.Info("assist request",
		"request_id", requestID,
		"mode", req.Mode,
	)

	stream, err := s.Dispatcher.Dispatch(ctx, assist.Request{
		Mode:    req.Mode,
		Code:    req.Code,
		Message: req.Message,
	})
	if err != nil {
		slog.Error("assist request failed", "request_id", requestID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")
	resp.WriteHeader(http.StatusOK)

	chunkCount := 0
	for chunk := range stream {
		if _, err := resp.Write([]byte(chunk.Content)); err != nil {
			// Caller disconnected mid-stream; the request context is
			// cancelled and the adapter stops pulling from the backend.
			slog.Warn("assist response write failed",
				"request_id", requestID,
				"chunks", chunkCount,
				"error", err,
			)
			return nil
		}
		resp.Flush()
		chunkCount++
	}

	s.collector.AddStreamChunks(chunkCount)
	s.collector.ObserveRequestDuration(req.Mode, time.Since(started))

	slog.Info("assist request completed",
		"request_id", requestID,
		"mode", req.Mode,
		"chunks", chunkCount,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}
