package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/modalkit/internal/store"
	"github.com/marcus/modalkit/pkg/eventbus"
	"github.com/marcus/modalkit/pkg/modal"
)

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a dialog",
	Long: `Show a dialog built from a stored definition, a YAML file and flags.

Options merge in this order, later wins: the stored definition named by
[name], the --file definition, the named flags, then --set. When a button
is pressed its value is printed to stdout.

Examples:
  modalkit show --title Report --content "<p>All checks passed.</p>" -b OK
  modalkit show -f welcome.yaml --set snap=true --set width=60
  modalkit show about`,
	GroupID: "dialogs",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	addOptionFlags(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	opts := map[string]any{}
	if len(args) == 1 {
		st, err := store.Open(s.cfg.StorePath(getBaseDir()))
		if err != nil {
			return err
		}
		def, err := st.Get(args[0])
		st.Close()
		if err != nil {
			return err
		}
		opts = definitionOptions(def)
	}
	flagOpts, err := optionsFromFlags(cmd)
	if err != nil {
		return err
	}
	for k, v := range flagOpts {
		opts[k] = v
	}
	if err := checkOptions(opts); err != nil {
		return err
	}

	d := modal.Quick(s.env, s.withDefaults(opts))
	var chosen string
	d.AddListener(modal.EventUserAction, func(e *eventbus.Event) bool {
		chosen, _ = e.Params.(string)
		return true
	})

	if err := s.run(); err != nil {
		return err
	}
	if chosen != "" {
		fmt.Fprintln(cmd.OutOrStdout(), chosen)
	}
	return nil
}
