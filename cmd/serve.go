package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marcus/modalkit/internal/config"
	"github.com/marcus/modalkit/internal/serve"
	"github.com/marcus/modalkit/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored dialog definitions over HTTP",
	Long: `Start an HTTP server that hands stored dialog definitions to
remote-source dialogs (modalkit fetch, or any client reading the same JSON).

Endpoints:
  GET    /health              liveness
  GET    /dialogs[?q=]        list definitions, fuzzy-filtered by name
  GET    /dialogs/{name}      {"content": {...}, "html": "..."}
  GET    /v1/dialogs/{name}   definition in the API envelope
  PUT    /v1/dialogs/{name}   create or replace (token required if set)
  DELETE /v1/dialogs/{name}   delete (token required if set)

The address is written to .modalkit/serve-port so modalkit fetch can find
the server without configuration.`,
	GroupID: "system",
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "Listen address host:port (default from config, port 0 = auto-assign)")
	serveCmd.Flags().String("token", "", "Bearer token required for writes (optional)")
	serveCmd.Flags().String("cors", "", "Allowed CORS origin (optional, e.g. http://localhost:3000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := getBaseDir()
	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.StorePath(dir))
	if err != nil {
		return err
	}
	defer st.Close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Addr
	}
	token, _ := cmd.Flags().GetString("token")
	cors, _ := cmd.Flags().GetString("cors")

	out := cmd.ErrOrStderr()
	srv := serve.NewServer(st, dir, serve.ServeConfig{
		Addr:       addr,
		Token:      token,
		CORSOrigin: cors,
		OnListen: func(url string) {
			fmt.Fprintf(out, "modalkit serve listening on %s\n", url)
			fmt.Fprintf(out, "  base dir:   %s\n", dir)
			fmt.Fprintf(out, "  store:      %s\n", cfg.StorePath(dir))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	fmt.Fprintln(out, "modalkit serve stopped")
	return nil
}
