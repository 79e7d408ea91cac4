package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/kemeny/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// runSpinner animates a status line while a pipeline run is in flight.
//
// It implements observability.SolverHooks: while attached, solver events
// update the line with the methods still running and how many of the run's
// methods have finished. Events are forwarded to the hooks that were
// registered before it. Cache hits never reach the solver hooks, so they
// count towards the total without ever showing as running.
type runSpinner struct {
	w     io.Writer
	total int
	next  observability.SolverHooks

	mu       sync.Mutex
	running  []string
	finished int
	failed   int
	width    int
}

func newRunSpinner(w io.Writer, total int) *runSpinner {
	return &runSpinner{w: w, total: total, next: observability.NoopSolverHooks{}}
}

func (s *runSpinner) OnSolveStart(ctx context.Context, method string, voters, candidates int) {
	s.mu.Lock()
	s.running = append(s.running, method)
	s.mu.Unlock()
	s.next.OnSolveStart(ctx, method, voters, candidates)
}

func (s *runSpinner) OnSolveComplete(ctx context.Context, method string, score int, d time.Duration, err error) {
	s.mu.Lock()
	if i := slices.Index(s.running, method); i >= 0 {
		s.running = slices.Delete(s.running, i, i+1)
	}
	s.finished++
	if err != nil {
		s.failed++
	}
	s.mu.Unlock()
	s.next.OnSolveComplete(ctx, method, score, d, err)
}

// status renders the text after the frame, e.g. "dp, ilp · 2/6 done".
func (s *runSpinner) status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	if len(s.running) == 0 {
		b.WriteString("starting")
	} else {
		b.WriteString(strings.Join(s.running, ", "))
	}
	fmt.Fprintf(&b, " · %d/%d done", s.finished, s.total)
	if s.failed > 0 {
		fmt.Fprintf(&b, ", %d failed", s.failed)
	}
	return b.String()
}

// attach registers s as the solver hooks and animates until ctx ends or
// detach is called. detach restores the previous hooks, clears the line and
// may be called more than once.
func (s *runSpinner) attach(ctx context.Context) (detach func()) {
	s.next = observability.Solver()
	observability.SetSolverHooks(s)

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-stopped
			observability.SetSolverHooks(s.next)
			s.clear()
		})
	}
}

func (s *runSpinner) draw(frame string) {
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.status())
	s.mu.Lock()
	defer s.mu.Unlock()
	pad := max(s.width-len(line), 0)
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))
	s.width = len(line)
}

func (s *runSpinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}
