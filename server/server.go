package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"

	"github.com/lifelens-io/lifelens/pkg/errors"
	"github.com/lifelens-io/lifelens/pkg/log"
)

// Handler assembles the routed container with the request log filter.
func (s *RestServer) Handler() http.Handler {
	container := restful.NewContainer()
	container.Filter(LogFilter)
	container.Add(s.CreateWebService())
	return container
}

// Serve blocks listening on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *RestServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.WithStack(srv.Shutdown(shutdownCtx))
	case err := <-errCh:
		return errors.WithStack(err)
	}
}

// LogFilter logs every request with a generated request ID, echoed back in
// the X-Request-Id header.
func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestID := uuid.NewString()
	resp.Header().Set("X-Request-Id", requestID)
	start := time.Now()
	chain.ProcessFilter(req, resp)
	slog.Info("http request",
		"request_id", requestID,
		"method", req.Request.Method,
		"path", req.Request.URL.Path,
		"status", resp.StatusCode(),
		"duration_ms", time.Since(start).Milliseconds())
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps typed errors to status codes: caller mistakes are 400,
// everything else is 500.
func writeError(resp *restful.Response, err error) {
	status := http.StatusInternalServerError
	var valErr *errors.ValidationError
	var trainErr *errors.TrainingError
	if errors.As(err, &valErr) || errors.As(err, &trainErr) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", log.ErrAttr(err))
	}
	if writeErr := resp.WriteHeaderAndEntity(status, ErrorResponse{Error: err.Error()}); writeErr != nil {
		slog.Error("write error response", log.ErrAttr(writeErr))
	}
}

func writeJSON(resp *restful.Response, entity interface{}) {
	if err := resp.WriteEntity(entity); err != nil {
		slog.Error("write response", log.ErrAttr(err))
	}
}
