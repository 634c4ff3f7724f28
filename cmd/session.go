package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/modalkit/internal/config"
	"github.com/marcus/modalkit/internal/debuglog"
	"github.com/marcus/modalkit/pkg/modal"
	"github.com/marcus/modalkit/pkg/ui"
)

const (
	headlessWidth  = 80
	headlessHeight = 24
)

// session hosts the dialogs of one command run: interactively inside a
// bubbletea program, or headless, printing a single frame.
type session struct {
	cfg         *config.Config
	doc         *ui.Document
	app         *ui.App
	loop        *ui.ManualLoop
	env         modal.Env
	interactive bool
	out         io.Writer
	logFile     *os.File
}

// newSession loads config and builds the document. Interactive mode needs
// stdout to be a terminal.
func newSession(cmd *cobra.Command) (*session, error) {
	dir := getBaseDir()
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lang, _ := cmd.Flags().GetString("lang"); lang != "" {
		cfg.Lang = lang
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}

	s := &session{cfg: cfg, out: cmd.OutOrStdout()}
	s.interactive = isTerminal(s.out)

	width, height := headlessWidth, headlessHeight
	if s.interactive {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
	}
	s.doc = ui.NewDocument(width, height, nil, ui.Capabilities{Drag: s.interactive})

	reg := modal.NewRegistry()
	if s.interactive {
		s.app = ui.NewApp(s.doc, func() bool { return reg.Count() == 0 })
	} else {
		s.loop = ui.NewManualLoop()
		s.doc.SetLoop(s.loop)
	}

	s.env = modal.Env{
		Doc:      s.doc,
		Registry: reg,
		Log:      debuglog.New(nil, false),
		Media:    modal.NewHTTPMediaLoader(&http.Client{Timeout: 10 * time.Second}),
		Source:   modal.HTTPSource{Client: &http.Client{Timeout: 15 * time.Second}},
		Lang:     cfg.Lang,
	}
	if cfg.Debug {
		s.enableDebug()
	}
	return s, nil
}

// enableDebug points the dialog log at .modalkit/debug.log; the terminal
// belongs to the UI. Call it before creating dialogs.
func (s *session) enableDebug() {
	if s.logFile != nil {
		return
	}
	path := filepath.Join(getBaseDir(), ".modalkit", "debug.log")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	s.logFile = f
	s.env.Log = debuglog.New(f, true)
}

// withDefaults fills theme and speed from config unless opts sets them.
func (s *session) withDefaults(opts map[string]any) map[string]any {
	out := make(map[string]any, len(opts)+2)
	if s.cfg.Theme != "" {
		out["theme"] = s.cfg.Theme
	}
	if s.cfg.Speed != "" {
		out["speed"] = s.cfg.Speed
	}
	for k, v := range opts {
		out[k] = v
	}
	return out
}

// run drives the session until every dialog is closed, or prints the first
// frame when headless.
func (s *session) run() error {
	defer s.close()
	if !s.interactive {
		s.loop.RunAll()
		_, err := fmt.Fprintln(s.out, s.doc.View(nil))
		return err
	}
	if s.env.Registry.Count() == 0 {
		return nil
	}
	p := tea.NewProgram(s.app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (s *session) close() {
	if s.logFile != nil {
		s.logFile.Close()
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
