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

	"github.com/tbecker/twinboard/internal/stub"
)

func newStubdCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "stubd",
		Short: "Serve a local stand-in for the process twin backend",
		Long: `stubd serves the full backend surface on localhost: topology,
suggestions, what-if evaluation, assignment sync, and the chat and
training websockets. Useful for demos and offline development.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStubd(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	return cmd
}

func runStubd(addr string) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           stub.New(log).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("stubd listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("stubd stopped")
	return nil
}
