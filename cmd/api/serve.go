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

	"vet-clinic/internal/router"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el servidor HTTP",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := loadApp()
		if err != nil {
			fatal("Invalid configuration", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := rt.openStore(ctx, autoMigrate)
		if err != nil {
			fatal("Failed to open storage", err)
		}
		defer store.Close()

		srv := &http.Server{
			Addr: rt.cfg.Addr(),
			Handler: router.NewRouter(router.Options{
				Store:    store,
				Logger:   rt.log,
				Location: rt.loc,
			}),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			rt.log.Info("starting server", map[string]any{
				"addr":     srv.Addr,
				"driver":   rt.cfg.Storage.Driver,
				"timezone": rt.loc.String(),
			})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				fatal("Server error", err)
			}
		case <-ctx.Done():
		}

		rt.log.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.log.Error("shutdown failed", map[string]any{"error": err.Error()})
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Crear el schema de postgres al arrancar")
	rootCmd.AddCommand(serveCmd)
}
