package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/pairwise"
	"github.com/matzehuels/kemeny/pkg/profile"
	"github.com/matzehuels/kemeny/pkg/tournament"
)

// Graph kinds.
const (
	graphMajority = "majority" // every strict pairwise majority, weighted by margin
	graphLocked   = "locked"   // the edges Ranked Pairs locks
)

// Graph output formats.
const (
	graphFormatDOT = "dot"
	graphFormatSVG = "svg"
)

type graphOpts struct {
	kind    string
	method  string
	format  string
	output  string
	weights bool
	noCache bool
}

// graphCommand creates the graph command for drawing the pairwise
// majority relation.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		inputFormat string
		opts        = graphOpts{kind: graphMajority, weights: true}
	)

	cmd := &cobra.Command{
		Use:   "graph [profile]",
		Short: "Draw the majority tournament as DOT or SVG",
		Long: `Draw the pairwise majority relation of a profile.

--kind majority draws an edge a -> b for every strict majority of a over b,
labelled with the margin. --kind locked draws only the edges Ranked Pairs
locks, which always form a DAG. With --method, candidates are laid out in
that method's consensus order and consecutive edges are highlighted.

The output format follows the file extension (.svg or .dot) unless --format
is given; without --output DOT is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd.Context(), args[0], inputFormat)
			if err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), p, opts)
		},
	}

	cmd.Flags().StringVarP(&inputFormat, "input-format", "f", "", "input format: soc, json, yaml (default: from extension)")
	cmd.Flags().StringVar(&opts.kind, "kind", opts.kind, "graph kind: majority, locked")
	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "lay out candidates in this method's order")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: dot, svg (default: from --output extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout, DOT only)")
	cmd.Flags().BoolVar(&opts.weights, "weights", opts.weights, "label edges with majority margins")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, p *profile.Profile, opts graphOpts) error {
	format, err := graphFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	s, err := pairwise.Compute(p)
	if err != nil {
		return err
	}
	g, err := buildGraph(s, opts.kind)
	if err != nil {
		return err
	}

	dotOpts := tournament.DOTOptions{Labels: p.Labels(), Weights: opts.weights}
	switch {
	case opts.method != "":
		runner, err := c.newRunner(ctx, opts.noCache)
		if err != nil {
			return fmt.Errorf("initialize runner: %w", err)
		}
		defer runner.Close()
		res, err := runner.Aggregate(ctx, p, opts.method, c.Config.PipelineOptions(nil))
		if err != nil {
			return err
		}
		dotOpts.Order = res.Order
	case opts.kind == graphLocked:
		order, err := g.TopoSort()
		if err != nil {
			return err
		}
		dotOpts.Order = order
	}

	data := []byte(g.ToDOT(dotOpts))
	if format == graphFormatSVG {
		if data, err = tournament.RenderSVG(ctx, string(data)); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	}

	w, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer w.Close()
	if _, err := w.Write(data); err != nil {
		return err
	}
	if opts.output != "" {
		loggerFromContext(ctx).Debug("wrote graph", "kind", opts.kind, "edges", len(g.Edges()))
		printFile(opts.output)
	}
	return nil
}

func buildGraph(s *pairwise.Stats, kind string) (*tournament.Digraph, error) {
	switch kind {
	case graphMajority:
		return tournament.FromMajority(s), nil
	case graphLocked:
		return aggregate.LockPairs(s), nil
	}
	return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "unknown graph kind %q (want %s or %s)", kind, graphMajority, graphLocked)
}

// graphFormat resolves the output format from the flag or the output
// file extension.
func graphFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" || format == "gv" {
			format = graphFormatDOT
		}
	}
	switch format {
	case graphFormatDOT, graphFormatSVG:
	default:
		return "", kerrors.New(kerrors.ErrCodeInvalidFormat, "unknown graph format %q (want dot or svg)", format)
	}
	if format == graphFormatSVG && (output == "" || output == "-") {
		return "", kerrors.New(kerrors.ErrCodeInvalidInput, "svg output needs --output")
	}
	return format, nil
}
