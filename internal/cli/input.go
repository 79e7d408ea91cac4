package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/pipeline"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// runFlags are the flags shared by solve and compare.
type runFlags struct {
	format   string
	seed     uint64
	restarts int
	timeout  time.Duration
	noCache  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "input format: soc, json, yaml (default: from extension)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for randomised methods (default from config)")
	cmd.Flags().IntVar(&f.restarts, "restarts", 0, "local search restarts (default from config)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-method time limit, e.g. 30s (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
}

// options merges flags that were set explicitly over the config.
func (c *CLI) options(cmd *cobra.Command, f *runFlags, methods []string) pipeline.Options {
	opts := c.Config.PipelineOptions(methods)
	if cmd.Flags().Changed("seed") {
		opts.Aggregate.Seed = f.seed
	}
	if f.restarts > 0 {
		opts.Aggregate.Restarts = f.restarts
	}
	if f.timeout > 0 {
		opts.Timeout = f.timeout
	}
	opts.NoCache = opts.NoCache || f.noCache
	return opts
}

// loadProfile reads a profile from path, or from stdin when path is "-".
func loadProfile(ctx context.Context, path, format string) (*profile.Profile, error) {
	var f profile.Format
	if format != "" {
		var err error
		if f, err = profile.ParseFormat(format); err != nil {
			return nil, err
		}
	}
	if path == "-" {
		if f == "" {
			f = profile.FormatJSON
		}
		return profile.Read(os.Stdin, f)
	}
	p, err := profile.FileSource{Path: path, Format: f}.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}

// formatOrder renders an order as "a > b > c" using candidate labels.
func formatOrder(p *profile.Profile, order []int) string {
	names := make([]string, len(order))
	for i, c := range order {
		names[i] = p.Label(c)
	}
	return strings.Join(names, " > ")
}

// truncateOrder shortens long orders for table cells.
func truncateOrder(p *profile.Profile, order []int, limit int) string {
	if len(order) <= limit {
		return formatOrder(p, order)
	}
	return formatOrder(p, order[:limit]) + " > …"
}

// splitMethods parses a comma-separated method list. "all" expands to
// every registered method.
func splitMethods(s string) []string {
	if s == "" {
		return nil
	}
	if s == "all" {
		return aggregate.Names()
	}
	var out []string
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
