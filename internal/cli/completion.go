package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/obj2acf/pkg/mesh"
)

var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(r *cobra.Command, w io.Writer) error { return r.GenBashCompletionV2(w, true) },
	"zsh":        func(r *cobra.Command, w io.Writer) error { return r.GenZshCompletion(w) },
	"fish":       func(r *cobra.Command, w io.Writer) error { return r.GenFishCompletion(w, true) },
	"powershell": func(r *cobra.Command, w io.Writer) error { return r.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for obj2acf.

Besides commands and flags, the script completes --group with the group
names found in the mesh given as the first argument.`,
		Example: `  source <(obj2acf completion bash)
  obj2acf completion zsh > "${fpath[1]}/_obj2acf"
  obj2acf completion fish > ~/.config/fish/completions/obj2acf.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completeGroups lists the groups of the mesh named by the first argument.
func completeGroups(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	mf, err := mesh.ReadFile(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(mf.Groups))
	for _, g := range mf.Groups {
		names = append(names, g.Name+"\t"+mesh.Classify(g).String())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
