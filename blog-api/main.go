package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "blog-api",
		Short:        "Blog API - users, posts and likes over HTTP",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(newServeCommand(&configPath))
	cmd.AddCommand(newInitDBCommand(&configPath))

	return cmd
}

func newServeCommand(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Create the schema if needed and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = normalizePort(port)
			}
			closeLog, err := initLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen address, overrides PORT (default :9001)")

	return cmd
}

func newInitDBCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the user, post and like tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			closeLog, err := initLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			db, err := connectDB(cfg.Database)
			if err != nil {
				return err
			}
			defer closeDB(db)
			return initDB(db)
		},
	}
}

func serve(ctx context.Context, cfg Config) error {
	db, err := connectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := initDB(db); err != nil {
		logger.WithError(err).Error("Failed to initialize database")
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api, err := NewAPI(db, cfg, registry)
	if err != nil {
		return err
	}
	if closer, ok := api.feed.(io.Closer); ok {
		defer closer.Close()
	}

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Port).Info(fmt.Sprintf("Server starting on http://localhost%s", cfg.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
