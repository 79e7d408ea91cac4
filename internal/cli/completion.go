package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/profile"
	"github.com/matzehuels/kemeny/pkg/profile/generate"
)

// completionCommand prints a shell completion script for kemeny.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for kemeny.

Besides subcommands and flags, completions cover method names for --method
and --methods, generator models for --model and profile formats for --format.

  $ source <(kemeny completion bash)
  $ kemeny completion zsh > "${fpath[1]}/_kemeny"
  $ kemeny completion fish > ~/.config/fish/completions/kemeny.fish
  PS> kemeny completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// registerCompletions attaches value completions to the domain flags of
// every subcommand of root.
func registerCompletions(root *cobra.Command) {
	formats := []string{string(profile.FormatSOC), string(profile.FormatJSON), string(profile.FormatYAML)}
	for _, cmd := range root.Commands() {
		complete := func(flag string, fn cobra.CompletionFunc) {
			if cmd.Flags().Lookup(flag) != nil {
				_ = cmd.RegisterFlagCompletionFunc(flag, fn)
			}
		}
		complete("method", completeMethods)
		complete("methods", completeMethodList)
		complete("model", cobra.FixedCompletions(generate.Models, cobra.ShellCompDirectiveNoFileComp))
		if cmd.Name() != "graph" {
			complete("format", cobra.FixedCompletions(formats, cobra.ShellCompDirectiveNoFileComp))
		}
		complete("input-format", cobra.FixedCompletions(formats, cobra.ShellCompDirectiveNoFileComp))
	}
}

// completeMethods offers every method with its description.
func completeMethods(_ *cobra.Command, _ []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	out := make([]cobra.Completion, 0, len(aggregate.Names()))
	for _, name := range aggregate.Names() {
		out = append(out, cobra.CompletionWithDesc(name, aggregate.Describe(name)))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeMethodList completes the last entry of a comma-separated list,
// skipping methods already named.
func completeMethodList(_ *cobra.Command, _ []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	head := ""
	named := map[string]bool{}
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		head = toComplete[:i+1]
		for _, m := range strings.Split(toComplete[:i], ",") {
			named[strings.TrimSpace(m)] = true
		}
	}
	var out []cobra.Completion
	if head == "" {
		out = append(out, "all")
	}
	for _, name := range aggregate.Names() {
		if !named[name] {
			out = append(out, head+name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
