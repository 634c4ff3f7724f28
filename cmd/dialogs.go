package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marcus/modalkit/internal/config"
	"github.com/marcus/modalkit/internal/store"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var dialogsCmd = &cobra.Command{
	Use:     "dialogs",
	Aliases: []string{"d"},
	Short:   "Manage stored dialog definitions",
	GroupID: "dialogs",
}

var dialogsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Store dialog definitions",
	Long: `Store a definition built from flags, or every definition in a YAML
file. Definitions in the file without a name take [name].

  modalkit dialogs add about --title About --content "<p>v1.2</p>"
  modalkit dialogs add -f dialogs.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDialogsAdd,
}

var dialogsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored definitions",
	Args:    cobra.NoArgs,
	RunE:    runDialogsList,
}

var dialogsRmCmd = &cobra.Command{
	Use:     "rm <name>...",
	Aliases: []string{"delete"},
	Short:   "Delete stored definitions",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDialogsRm,
}

var dialogsExportCmd = &cobra.Command{
	Use:   "export [name]...",
	Short: "Print stored definitions as YAML",
	Long:  `Print definitions as a multi-document YAML stream that dialogs add -f reads back. No names exports everything.`,
	RunE:  runDialogsExport,
}

func init() {
	rootCmd.AddCommand(dialogsCmd)
	dialogsCmd.AddCommand(dialogsAddCmd, dialogsListCmd, dialogsRmCmd, dialogsExportCmd)

	addOptionFlags(dialogsAddCmd)
	dialogsAddCmd.Flags().String("html", "", "Body markup served in place of the content option")

	dialogsListCmd.Flags().StringP("filter", "q", "", "Fuzzy filter on name")
	dialogsListCmd.Flags().Bool("json", false, "Output JSON")
}

func openStore() (*store.Store, error) {
	dir := getBaseDir()
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return store.Open(cfg.StorePath(dir))
}

func runDialogsAdd(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	var defs []store.Definition
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defs, err = store.DecodeYAML(f, name)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	} else {
		if name == "" {
			return fmt.Errorf("a name or --file is required")
		}
		defs = []store.Definition{{Name: name}}
	}

	// Flags apply to every definition.
	flagOpts, err := namedFlagOptions(cmd)
	if err != nil {
		return err
	}
	html, _ := cmd.Flags().GetString("html")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	for i := range defs {
		def := &defs[i]
		if def.Options == nil {
			def.Options = map[string]any{}
		}
		for k, v := range flagOpts {
			def.Options[k] = v
		}
		if html != "" {
			def.HTML = html
		}
		if err := checkOptions(def.Options); err != nil {
			return fmt.Errorf("%s: %w", def.Name, err)
		}
		if err := st.Put(def); err != nil {
			return err
		}
		fmt.Fprintf(out, "stored %s\n", def.Name)
	}
	return nil
}

func runDialogsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	filter, _ := cmd.Flags().GetString("filter")
	results, err := st.Search(filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		defs := make([]store.Definition, len(results))
		for i, r := range results {
			defs[i] = r.Definition
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	}

	if len(results) == 0 {
		if filter != "" {
			fmt.Fprintf(out, "No dialogs matching '%s'\n", filter)
		} else {
			fmt.Fprintln(out, "No dialogs stored")
		}
		return nil
	}
	for _, r := range results {
		fmt.Fprintln(out, formatListLine(r))
	}
	return nil
}

// formatListLine renders "name  title  updated" with matched runes
// highlighted.
func formatListLine(r store.SearchResult) string {
	var b strings.Builder
	matched := make(map[int]bool, len(r.Matched))
	for _, i := range r.Matched {
		matched[i] = true
	}
	// MatchedIndexes are byte offsets.
	for i, c := range r.Name {
		if matched[i] {
			b.WriteString(matchStyle.Render(string(c)))
		} else {
			b.WriteString(nameStyle.Render(string(c)))
		}
	}
	if pad := 24 - utf8.RuneCountInString(r.Name); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if title, _ := r.Options["title"].(string); title != "" {
		b.WriteString("  " + title)
	}
	if !r.UpdatedAt.IsZero() {
		b.WriteString("  " + dimStyle.Render(r.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	return b.String()
}

func runDialogsRm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, name := range args {
		if err := st.Delete(name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
	}
	return nil
}

func runDialogsExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var defs []store.Definition
	if len(args) == 0 {
		if defs, err = st.List(); err != nil {
			return err
		}
	}
	for _, name := range args {
		def, err := st.Get(name)
		if err != nil {
			return err
		}
		defs = append(defs, *def)
	}
	return writeYAML(cmd.OutOrStdout(), defs)
}

func writeYAML(w io.Writer, defs []store.Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for i := range defs {
		if err := enc.Encode(&defs[i]); err != nil {
			return err
		}
	}
	return enc.Close()
}
