package cmd

import (
	"context"
	"errors"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/modalkit/internal/debuglog"
	"github.com/marcus/modalkit/internal/serve"
	"github.com/marcus/modalkit/pkg/modal"
)

var errNoServer = errors.New("no content server: set MODALKIT_SERVER, \"server\" in .modalkit/config.json, or run modalkit serve")

var fetchCmd = &cobra.Command{
	Use:   "fetch <url|name>",
	Short: "Show a dialog whose content comes from a server",
	Long: `Fetch a dialog definition over HTTP and show it.

A full URL is fetched as is. A bare name is looked up on the configured
server (MODALKIT_SERVER) or, failing that, on a modalkit serve instance
running for this directory.

The response is JSON: {"content": {...options...}, "html": "..."}. A failed
request shows a translated error dialog instead. A URL query parameter whose
name starts with the configured debug prefix (default "modal_") turns on
debug logging.`,
	GroupID: "dialogs",
	Args:    cobra.ExactArgs(1),
	RunE:    runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	target, err := resolveFetchURL(args[0], s.cfg.Server, getBaseDir())
	if err != nil {
		return err
	}
	if debuglog.QueryEnables(target, s.cfg.DebugPrefix) {
		s.enableDebug()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	modal.Fetch(ctx, s.env, target)
	return s.run()
}

// resolveFetchURL turns a dialog name into a content URL.
func resolveFetchURL(arg, server, dir string) (string, error) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "://") {
		return arg, nil
	}
	if server == "" {
		found, ok := serve.Discover(dir)
		if !ok {
			return "", errNoServer
		}
		server = found
	}
	return strings.TrimRight(server, "/") + "/dialogs/" + url.PathEscape(arg), nil
}
