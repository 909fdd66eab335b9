package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. Besides subcommands and
// flags, the generated scripts complete card ids, frame keys and mode names
// from the configured workspace.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell.

Card ids complete for "show", "browse --focus", "serve --focus" and
"hierarchy --root"; frame keys complete for "resolve"; mode names complete
for every --mode flag. Ids are read from the workspace selected by --config,
so completion sees the same dataset the command would.

Bash:
  $ source <(cardspace completion bash)

Zsh:
  $ cardspace completion zsh > "${fpath[1]}/_cardspace"

Fish:
  $ cardspace completion fish > ~/.config/fish/completions/cardspace.fish

PowerShell:
  PS> cardspace completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}

// =============================================================================
// Completion functions
// =============================================================================

// completeEntityIDs offers every card id starting with toComplete, described
// by its title. A workspace that fails to open completes nothing.
func (c *CLI) completeEntityIDs(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ws, err := c.openWorkspace(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer ws.Close()

	var out []string
	for _, e := range ws.store.All() {
		if strings.HasPrefix(e.ID, toComplete) {
			out = append(out, e.ID+"\t"+e.Title)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFirstEntityID completes a single card id argument.
func (c *CLI) completeFirstEntityID(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeEntityIDs(cmd, args, toComplete)
}

// completeFrames offers the catalog's frame keys.
func (c *CLI) completeFrames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := c.config()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var out []string
	for _, f := range cat.Frames() {
		if strings.HasPrefix(f.Key, toComplete) {
			out = append(out, f.Key+"\t"+f.Label)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// modeNames are the --mode spellings shown to users; entity.ParseMode also
// accepts the dataset keys.
var modeNames = []string{"theme", "map", "alphabetic", "category"}

func completeModes(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, m := range modeNames {
		if strings.HasPrefix(m, toComplete) {
			out = append(out, m)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
