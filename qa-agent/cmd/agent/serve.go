package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/api"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the query, stats and MCP endpoints over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := a.buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			var stats api.Stats
			if rt.queryLog != nil {
				stats = rt.queryLog
			}
			srv := api.NewServer(rt.engine, stats, a.cfg.RequestTimeout, a.log)
			go api.TrackChunks(ctx, rt.vectors, 30*time.Second, a.log)

			server := &http.Server{
				Addr:              a.cfg.ListenAddr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.WithField("addr", a.cfg.ListenAddr).Info("Agent server starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.log.Info("Shutting down gracefully...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			a.log.Info("Server exited")
			return nil
		},
	}
}
