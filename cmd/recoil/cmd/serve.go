package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/recoilapp/recoil"
	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the sync passes over HTTP",
	Long: `Serve starts a small HTTP server with endpoints that trigger the
sync, reload, and enrich passes, plus a health check. With --auto, a
background loop also runs sync on the configured interval.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := buildClient()
		if err != nil {
			return err
		}
		client.OnPassComplete(func(res *recoil.Result) {
			logging.Info().Str("result", res.String()).Msg("Pass finished")
		})

		auto, _ := cmd.Flags().GetBool("auto")
		if auto {
			if err := client.AutoUpdatesOn(); err != nil {
				return err
			}
			defer func() { _ = client.AutoUpdatesOff() }()
		}

		addr, _ := cmd.Flags().GetString("addr")
		srv := &http.Server{
			Addr:              addr,
			Handler:           newRouter(client),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		logging.Info().Str("addr", addr).Bool("auto", auto).Msg("HTTP server listening")

		select {
		case <-cmd.Context().Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}

// newRouter builds the pass-triggering HTTP API.
func newRouter(client recoil.Client) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/sync", passHandler(client.Sync))
	r.Post("/enrich", passHandler(client.Enrich))
	r.Post("/reload", passHandler(client.Reload))
	return r
}

// passHandler runs a pass synchronously and reports its result. An
// already-running pass maps to 409 rather than queueing.
func passHandler(run func(ctx context.Context, opts ...recoil.SyncOption) (*recoil.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts []recoil.SyncOption
		if r.URL.Query().Get("dry_run") == "true" {
			opts = append(opts, recoil.WithDryRun(true))
		}
		res, err := run(r.Context(), opts...)
		switch {
		case errors.IsSyncInProgress(err):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case err != nil:
			logging.Error().Err(err).Msg("Pass failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusOK, res)
		}
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Bool("auto", false, "run scheduled sync passes while serving")
	rootCmd.AddCommand(serveCmd)
}
