package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tkahng/chopsticks/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve hot-seat matches over websockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			// nolint:errcheck
			defer s.Close()

			gs, err := server.New(server.Config{
				Gateway:        s,
				Logger:         a.logger,
				MaxSessions:    a.cfg.MaxSessions,
				SessionTimeout: a.cfg.SessionTimeout,
				AllowedOrigins: a.cfg.AllowedOrigins,
			})
			if err != nil {
				return err
			}
			gs.Start(ctx)

			// nolint:exhaustruct
			httpServer := &http.Server{
				Addr:              a.cfg.Addr,
				Handler:           gs.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("server starting", slog.String("addr", a.cfg.Addr), slog.String("store", a.cfg.Store))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				// Wait for interrupt signal or a failed listener
				<-gctx.Done()
				a.logger.Info("shutting down server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("http server shutdown error", slog.Any("error", err))
				}
				return nil
			})

			err = g.Wait()
			gs.Stop()
			if err != nil {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&a.cfg.Addr, "addr", a.cfg.Addr, "Listen address (env: CHOPSTICKS_ADDR)")
	return cmd
}
