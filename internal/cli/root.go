package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/internal/config"
	"github.com/matzehuels/kemeny/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The configuration file is loaded in PersistentPreRunE, so every
// subcommand sees c.Config populated from --config or the default path.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "kemeny aggregates rankings into a consensus order",
		Long: `kemeny computes a consensus ranking from many voters' rankings of the same
candidates. Exact methods find the Kemeny-Young optimum, the order that
disagrees with the fewest voter pairwise preferences; heuristics such as
Borda, Copeland, Ranked Pairs and Schulze trade optimality for speed.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kemeny/config.toml)")

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.methodsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}
