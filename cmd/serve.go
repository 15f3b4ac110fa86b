package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Facegate API server.
The server accepts face uploads for asynchronous admission, answers
synchronous recognition queries, and manages the per-domain corpora.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	if len(app.cfg.Clients) == 0 {
		fmt.Println("Warning: CLIENTS_TOKENS is empty, no client can authenticate")
	}

	server := web.NewServer(app.cfg, mustGetInt(cmd, "port"), mustGetString(cmd, "host"), web.Deps{
		Runner:     app.runner,
		Matcher:    app.engine,
		Aggregator: app.aggregator,
		Reconciler: app.reconciler,
		Names:      app.names,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		fmt.Printf("Received %s, shutting down...\n", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
