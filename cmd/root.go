package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/modalkit/internal/suggest"
	"github.com/marcus/modalkit/internal/workdir"
)

var (
	version string
	baseDir string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "modalkit",
	Short: "Modal dialogs for the terminal",
	Long: `modalkit - draggable, dockable modal dialogs for terminal programs.

Show dialogs from flags or YAML definitions, ask for confirmation from
scripts, fetch dialog content from a server, and serve stored definitions
to other programs. When stdout is not a terminal the first frame is printed
instead of starting the interactive UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// unknownCommandHint replaces cobra's suggestions
	DisableSuggestions: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := unknownCommandHint(os.Args[1:]); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)

	rootCmd.AddGroup(
		&cobra.Group{ID: "dialogs", Title: "Dialogs:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	rootCmd.PersistentFlags().String("lang", "", "Language for built-in strings (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to .modalkit/debug.log")
	rootCmd.PersistentFlags().StringP("dir", "C", "", "Run as if started in this directory")
}

func initBaseDir() {
	if dir, _ := rootCmd.PersistentFlags().GetString("dir"); dir != "" {
		baseDir = workdir.ResolveBaseDir(dir)
		return
	}
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
	baseDir = workdir.ResolveBaseDir(wd)
}

// getBaseDir returns the base directory for the project
func getBaseDir() string {
	return baseDir
}

// firstNonFlagArg returns the first argument that is not a flag.
func firstNonFlagArg(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

// unknownCommandHint suggests a command when args start with a typo.
func unknownCommandHint(args []string) string {
	name := firstNonFlagArg(args)
	if name == "" {
		return ""
	}
	var names []string
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return ""
		}
		if c.IsAvailableCommand() {
			names = append(names, c.Name())
		}
	}
	if near := suggest.Option(name, names); len(near) > 0 {
		return "did you mean " + strings.Join(near, ", ") + "?"
	}
	return ""
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
