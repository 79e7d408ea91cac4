package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/pipeline"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// solveOutput is the JSON document written by solve --json.
type solveOutput struct {
	*aggregate.Result
	Labels []string `json:"labels"`
	Ranks  []int    `json:"ranks"`
	Cached bool     `json:"cached"`
}

// solveCommand creates the solve command for running a single method.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags  runFlags
		method string
		output string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "solve [profile]",
		Short: "Compute a consensus ranking with one method",
		Long: `Compute a consensus ranking with one method.

The profile is a PrefLib .soc file, or a JSON/YAML document of the form
{"labels": [...], "ranks": [[...], ...]} where ranks[v][c] is the 0-based
position of candidate c for voter v. Use "-" to read from stdin.

Exact methods (bruteforce, dp, ilp) prove optimality but refuse profiles with
more candidates than their configured ceiling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags, []string{method})
			return c.runSolve(cmd.Context(), args[0], flags.format, opts, output, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&method, "method", "m", aggregate.NameSubsetDP, "aggregation method (see 'kemeny methods')")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result as JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

// runSolve loads the profile and runs the single method in opts.
func (c *CLI) runSolve(ctx context.Context, input, format string, opts pipeline.Options, output string, asJSON bool) error {
	p, err := loadProfile(ctx, input, format)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.NoCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	detach := newRunSpinner(os.Stderr, len(opts.Methods)).attach(ctx)
	report, err := runner.Run(ctx, p, opts)
	detach()
	if err != nil {
		return err
	}
	entry := report.Entries[0]
	if entry.Err != nil {
		printError("%s failed", entry.Method)
		return entry.Err
	}
	logSolved(c.Logger, entry)

	if asJSON || output != "" {
		return writeResult(p, entry, output)
	}
	printResult(p, entry)
	return nil
}

func writeResult(p *profile.Profile, entry pipeline.Entry, path string) error {
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	defer w.Close()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(solveOutput{
		Result: entry.Result,
		Labels: p.Labels(),
		Ranks:  entry.Result.Ranks(),
		Cached: entry.Cached,
	}); err != nil {
		return err
	}
	if path != "" && path != "-" {
		printFile(path)
	}
	return nil
}

func printResult(p *profile.Profile, entry pipeline.Entry) {
	res := entry.Result
	printSuccess("%s", StyleTitle.Render(entry.Method))
	printKeyValue("Order", formatOrder(p, res.Order))
	printKeyValue("Score", StyleNumber.Render(fmt.Sprint(res.Score)))
	printKeyValue("Optimal", optimality(res.Exact))
	printProfileStats(p.Voters(), p.Candidates(), resultSource(entry.Cached))
}
