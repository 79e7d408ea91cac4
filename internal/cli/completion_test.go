package cli

import (
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/profile/generate"
)

func TestCompleteMethodList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		excluded []string
	}{
		{"empty offers all", "", []string{"all", "dp", "borda"}, nil},
		{"second entry keeps prefix", "dp,", []string{"dp,borda", "dp,ilp"}, []string{"dp,dp", "all"}},
		{"skips every named method", "dp, borda,ilp,", []string{"dp, borda,ilp,schulze"}, []string{"dp, borda,ilp,borda", "dp, borda,ilp,ilp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dir := completeMethodList(nil, nil, tt.input)
			if dir&cobra.ShellCompDirectiveNoSpace == 0 {
				t.Error("list completion should not append a space")
			}
			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("completions %v lack %q", got, w)
				}
			}
			for _, x := range tt.excluded {
				if slices.Contains(got, x) {
					t.Errorf("completions %v contain %q", got, x)
				}
			}
		})
	}
}

func TestCompleteMethodsDescribed(t *testing.T) {
	got, _ := completeMethods(nil, nil, "")
	if len(got) != len(aggregate.Names()) {
		t.Fatalf("got %d completions, want %d", len(got), len(aggregate.Names()))
	}
	for _, c := range got {
		name, desc, ok := strings.Cut(c, "\t")
		if !ok || desc != aggregate.Describe(name) {
			t.Errorf("completion %q lacks the method description", c)
		}
	}
}

func TestFlagCompletionsRegistered(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	tests := []struct {
		cmd, flag string
		want      string
	}{
		{"solve", "method", "dp"},
		{"compare", "methods", "all"},
		{"generate", "model", generate.ModelMallows},
		{"generate", "format", "yaml"},
		{"graph", "input-format", "soc"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.cmd})
			if err != nil {
				t.Fatal(err)
			}
			fn, ok := cmd.GetFlagCompletionFunc(tt.flag)
			if !ok {
				t.Fatalf("no completion for --%s", tt.flag)
			}
			got, _ := fn(cmd, nil, "")
			if !slices.ContainsFunc(got, func(c cobra.Completion) bool {
				return strings.HasPrefix(c, tt.want)
			}) {
				t.Errorf("--%s completions %v lack %q", tt.flag, got, tt.want)
			}
		})
	}

	graph, _, _ := root.Find([]string{"graph"})
	if _, ok := graph.GetFlagCompletionFunc("format"); ok {
		t.Error("graph --format takes graph formats and must not complete profile formats")
	}
}
