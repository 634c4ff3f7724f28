package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/modalkit/pkg/eventbus"
	"github.com/marcus/modalkit/pkg/modal"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm [question]",
	Short: "Ask for confirmation and report the answer as the exit status",
	Long: `Show a confirmation dialog. Exits 0 when the first button is chosen
and 1 for any other button or when the dialog is dismissed, so it can be
used in shell conditionals:

  modalkit confirm "Delete 3 files?" && rm -f *.tmp

Without a question the translated "Are you sure?" is asked. Buttons
default to the translated Yes and Cancel.`,
	GroupID: "dialogs",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runConfirm,
}

func init() {
	rootCmd.AddCommand(confirmCmd)
	confirmCmd.Flags().StringP("title", "t", "", "Dialog title")
	confirmCmd.Flags().StringSlice("labels", nil, "Button labels, first is the affirmative (e.g. Delete,Keep)")
	confirmCmd.Flags().Bool("print", false, "Print the chosen value to stdout")
}

func runConfirm(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	labels, _ := cmd.Flags().GetStringSlice("labels")
	question := ""
	if len(args) == 1 {
		question = args[0]
	}

	d := modal.Confirm(s.env, title, question, labels...)
	affirmative := strings.ToLower(d.Options().Buttons[0].Label)
	chosen := ""
	d.AddListener(modal.EventConfirmSelected, func(e *eventbus.Event) bool {
		chosen, _ = e.Params.(string)
		return true
	})

	if err := s.run(); err != nil {
		return err
	}
	if !s.interactive {
		return nil
	}
	if p, _ := cmd.Flags().GetBool("print"); p && chosen != "" {
		fmt.Fprintln(cmd.OutOrStdout(), chosen)
	}
	if chosen != affirmative {
		return &exitError{code: 1}
	}
	return nil
}
