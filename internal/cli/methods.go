package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/pkg/aggregate"
)

// methodsCommand lists the registered aggregation methods.
func (c *CLI) methodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List available aggregation methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limits := c.Config.Limits
			nameStyle := lipgloss.NewStyle().Foreground(colorCyan).Width(14)
			for _, name := range aggregate.Names() {
				line := nameStyle.Render(name) + " " + aggregate.Describe(name)
				switch name {
				case aggregate.NameBruteForce:
					line += StyleDim.Render(fmt.Sprintf(" (m ≤ %d)", limits.BruteForce))
				case aggregate.NameSubsetDP:
					line += StyleDim.Render(fmt.Sprintf(" (m ≤ %d)", limits.SubsetDP))
				case aggregate.NameILP:
					line += StyleDim.Render(fmt.Sprintf(" (m ≤ %d)", limits.ILP))
				case aggregate.NameBranchBound:
					line += StyleDim.Render(fmt.Sprintf(" (m ≤ %d)", limits.BranchBound))
				}
				fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}
}
