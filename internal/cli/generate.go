package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/pkg/profile"
	"github.com/matzehuels/kemeny/pkg/profile/generate"
)

// generateCommand creates the generate command for synthetic profiles.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		spec   = generate.Spec{Model: generate.ModelMallows, Voters: 50, Candidates: 8, Phi: 0.5, Noise: 0.2}
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic profile",
		Long: `Generate a synthetic profile for testing and benchmarking.

Models:
  uniform       every voter draws an order uniformly at random
  mallows       orders scattered around 0 > 1 > ... with dispersion --phi
  cycle         random rotations of 0 > 1 > ..., one adjacent swap with probability --noise
  rotations     every cyclic shift of the identity, voters/candidates times each
  identical     every voter ranks 0 > 1 > ...
  bradleyterry  noisy pairwise sort driven by candidate strengths (--weights)
  plackettluce  top-down draws proportional to candidate weights (--weights)
  block         --blocks groups ranked in order, shuffled within; --noise shuffles groups
  adversarial   random-size rotation groups forming a majority cycle; --noise scrambles

Without --weights, strength models draw weights from --seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := profile.ParseFormat(format)
			if err != nil {
				return err
			}
			p, err := spec.Load(cmd.Context())
			if err != nil {
				return err
			}

			w, err := openOutput(output)
			if err != nil {
				return err
			}
			defer w.Close()
			if err := profile.Write(w, p, f); err != nil {
				return err
			}

			if output != "" && output != "-" {
				printSuccess("Generated %s profile", spec.Model)
				printProfileStats(p.Voters(), p.Candidates(), "")
				printFile(output)
				printNextStep("Compare methods", fmt.Sprintf("kemeny compare %s", output))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&spec.Model, "model", spec.Model, "generator: "+strings.Join(generate.Models, ", "))
	cmd.Flags().IntVarP(&spec.Voters, "voters", "n", spec.Voters, "number of voters")
	cmd.Flags().IntVarP(&spec.Candidates, "candidates", "m", spec.Candidates, "number of candidates")
	cmd.Flags().Float64Var(&spec.Phi, "phi", spec.Phi, "mallows dispersion in [0,1]")
	cmd.Flags().Float64Var(&spec.Noise, "noise", spec.Noise, "perturbation probability for cycle, block and adversarial")
	cmd.Flags().IntVar(&spec.Blocks, "blocks", 0, fmt.Sprintf("group count for the block model (default %d)", generate.DefaultBlocks))
	cmd.Flags().Float64SliceVar(&spec.Weights, "weights", nil, "comma-separated candidate weights for bradleyterry and plackettluce")
	cmd.Flags().Uint64Var(&spec.Seed, "seed", 0, "random seed")
	cmd.Flags().StringVarP(&format, "format", "f", string(profile.FormatSOC), "output format: soc, json, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
