package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/pkg/pipeline"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// maxOrderCells bounds how many candidates a table row shows.
const maxOrderCells = 12

// compareCommand creates the compare command for running several methods
// side by side.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		flags      runFlags
		methodsStr string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "compare [profile]",
		Short: "Run several methods and compare their Kemeny scores",
		Long: `Run several methods on the same profile and print a table of their orders,
Kemeny scores, distance from the exact optimum and running time.

Methods default to the configured list; pass --methods all to run every
registered method. A method that fails (for example an exact solver above
its candidate ceiling) is listed with its error instead of aborting the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags, splitMethods(methodsStr))
			return c.runCompare(cmd.Context(), args[0], flags.format, opts, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&methodsStr, "methods", "", "comma-separated methods, or \"all\" (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the full report as JSON to this file")

	return cmd
}

func (c *CLI) runCompare(ctx context.Context, input, format string, opts pipeline.Options, output string) error {
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
		printError("comparison failed: %v", err)
		return err
	}

	fmt.Fprintln(stdout, StyleTitle.Render(fmt.Sprintf("%d voters × %d candidates", report.Voters, report.Candidates)))
	fmt.Fprintln(stdout, compareTable(p, report).Render())
	if report.Optimum != nil {
		printKeyValue("Optimum", StyleNumber.Render(fmt.Sprint(*report.Optimum)))
	} else {
		printWarning("no exact method succeeded; gaps are unknown")
	}
	logFailures(c.Logger, report)

	if output != "" {
		if err := writeReport(report, output); err != nil {
			return err
		}
		printFile(output)
	}
	return nil
}

// compareTable lays out one row per method.
func compareTable(p *profile.Profile, report *pipeline.Report) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		if e.Result == nil {
			rows = append(rows, []string{e.Method, "-", "-", "", "-", string(e.Code)})
			continue
		}
		exact := ""
		if e.Result.Exact {
			exact = iconSuccess
		}
		elapsed := e.Result.Duration.Round(time.Microsecond).String()
		if e.Cached {
			elapsed = iconCached
		}
		rows = append(rows, []string{
			e.Method,
			fmt.Sprint(e.Result.Score),
			formatGap(e.Gap(report.Optimum)),
			exact,
			elapsed,
			truncateOrder(p, e.Result.Order, maxOrderCells),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Method", "Score", "Gap", "Exact", "Time", "Order").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			e := report.Entries[row]
			switch {
			case e.Result == nil:
				return cellStyle.Foreground(colorRed)
			case col == 1 || col == 2:
				if e.Gap(report.Optimum) == 0 {
					return cellStyle.Foreground(colorGreen)
				}
				return cellStyle.Foreground(colorCyan)
			case col == 4:
				return cellStyle.Foreground(colorGray)
			}
			return cellStyle
		})
}

func writeReport(report *pipeline.Report, path string) error {
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	defer w.Close()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
