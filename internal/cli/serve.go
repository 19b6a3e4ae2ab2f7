package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/releasestats/pkg/errors"
	"github.com/matzehuels/releasestats/pkg/pipeline"
	"github.com/matzehuels/releasestats/pkg/report"
)

const defaultAddr = ":8080"

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve release download reports over HTTP",
		Long: `Serves reports computed on request:

  GET /healthz
  GET /repos/{owner}/{repo}/stats          CSV
  GET /repos/{owner}/{repo}/stats.{format} csv, json or table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, closeRunner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer closeRunner()
			return serve(ctx, addr, newRouter(runner, c.opts.minDays), loggerFromContext(ctx))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

// serve runs the server until ctx is cancelled.
func serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// newRouter builds the HTTP routes around runner.
func newRouter(runner *pipeline.Runner, minDays float64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(runner.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	h := statsHandler{runner: runner, minDays: minDays}
	r.Get("/repos/{owner}/{repo}/stats", h.serve)
	r.Get("/repos/{owner}/{repo}/stats.{format}", h.serve)

	return r
}

var contentTypes = map[string]string{
	report.FormatCSV:   "text/csv; charset=utf-8",
	report.FormatJSON:  "application/json",
	report.FormatTable: "text/plain; charset=utf-8",
}

type statsHandler struct {
	runner  *pipeline.Runner
	minDays float64
}

func (h statsHandler) serve(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format == "" {
		format = report.FormatCSV
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Owner:   chi.URLParam(r, "owner"),
		Repo:    chi.URLParam(r, "repo"),
		MinDays: h.minDays,
	}
	result, err := h.runner.Collect(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	if format == report.FormatCSV {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", report.Filename(opts.Repo, format)))
	}
	if err := report.Write(w, format, result.Records); err != nil {
		h.runner.Logger.Warn("write response", "err", err)
	}
}

// writeError maps error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeUnauthorized, apperrors.ErrCodeParse:
		status = http.StatusBadGateway
	}
	http.Error(w, apperrors.UserMessage(err), status)
}

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Millisecond),
				"id", middleware.GetReqID(r.Context()))
		})
	}
}
