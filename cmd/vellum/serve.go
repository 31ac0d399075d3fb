package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	vellum "github.com/vellum-ws/vellum"
	"github.com/vellum-ws/vellum/db"
	"github.com/vellum-ws/vellum/graph"
	"github.com/vellum-ws/vellum/hooks"
)

func serveCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(*configDir)
		},
	}
}

func serve(configDir string) error {
	app, err := vellum.New(vellum.WithConfigDir(configDir))
	if err != nil {
		return fmt.Errorf("creating app : %w", err)
	}

	dbConn, err := db.New(databasePath(configDir, app.Config.DatabaseFile))
	if err != nil {
		return fmt.Errorf("opening database : %w", err)
	}
	if err := app.WithOptions(vellum.WithRepo(db.NewRepo(dbConn))); err != nil {
		return err
	}

	runner, err := hooks.NewRunner(app)
	if err != nil {
		return fmt.Errorf("loading hooks : %w", err)
	}
	if err := app.WithOptions(vellum.WithHooks(runner)); err != nil {
		return err
	}

	if app.Config.NATSURL != "" {
		conn, err := nats.Connect(app.Config.NATSURL,
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return fmt.Errorf("connecting to nats %s : %w", app.Config.NATSURL, err)
		}
		defer conn.Drain()
		if err := app.WithOptions(vellum.WithGraph(graph.NewClient(conn, "vellum"))); err != nil {
			return err
		}
	}

	listener, err := app.GetListener(app.Config.Address, app.Config.Port)
	if err != nil {
		return fmt.Errorf("opening listener : %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Serve(listener)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving : %w", err)
		}
	case <-signals:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down : %w", err)
		}
	}
	return app.Close()
}

// databasePath resolves the configured database file against the config dir
// unless it is already absolute.
func databasePath(configDir, databaseFile string) string {
	if filepath.IsAbs(databaseFile) {
		return databaseFile
	}
	return filepath.Join(configDir, databaseFile)
}
