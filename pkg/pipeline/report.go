package pipeline

import (
	"time"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
)

// Report is the outcome of one Run.
type Report struct {
	RunID       string `json:"run_id"`
	ProfileHash string `json:"profile_hash"`
	Voters      int    `json:"voters"`
	Candidates  int    `json:"candidates"`
	// Entries follow the order of Options.Methods.
	Entries []Entry `json:"entries"`
	// Optimum is the Kemeny score proven optimal by an exact method, if
	// any exact method succeeded.
	Optimum  *int          `json:"optimum,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Entry is the outcome of one method within a run.
type Entry struct {
	Method string            `json:"method"`
	Result *aggregate.Result `json:"result,omitempty"`
	Cached bool              `json:"cached,omitempty"`
	Code   kerrors.Code      `json:"code,omitempty"`
	Error  string            `json:"error,omitempty"`

	Err error `json:"-"`
}

func (e *Entry) fail(err error) {
	e.Err = err
	e.Error = err.Error()
	e.Code = kerrors.GetCode(err)
	if e.Code == "" {
		e.Code = kerrors.ErrCodeInternal
	}
}

// OK reports whether the method produced a result.
func (e Entry) OK() bool { return e.Result != nil }

// Gap is the excess of the entry's score over optimum, or -1 when either is
// unknown.
func (e Entry) Gap(optimum *int) int {
	if e.Result == nil || optimum == nil {
		return -1
	}
	return e.Result.Score - *optimum
}

// Result returns the result of the named method, or nil.
func (r *Report) Result(method string) *aggregate.Result {
	name, _ := aggregate.Canonical(method)
	for _, e := range r.Entries {
		if e.Method == name {
			return e.Result
		}
	}
	return nil
}

// Best returns the lowest-score result, ties going to the earliest entry.
// It is nil when every method failed.
func (r *Report) Best() *aggregate.Result {
	var best *aggregate.Result
	for _, e := range r.Entries {
		if e.Result != nil && (best == nil || e.Result.Score < best.Score) {
			best = e.Result
		}
	}
	return best
}

// Failed returns the entries whose method returned an error.
func (r *Report) Failed() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Err != nil || e.Error != "" {
			out = append(out, e)
		}
	}
	return out
}

// setOptimum records the exact optimum and returns the methods whose
// exact results disagree with it.
func (r *Report) setOptimum() []string {
	var disagree []string
	for _, e := range r.Entries {
		if e.Result == nil || !e.Result.Exact {
			continue
		}
		if r.Optimum == nil {
			score := e.Result.Score
			r.Optimum = &score
		} else if e.Result.Score != *r.Optimum {
			disagree = append(disagree, e.Method)
		}
	}
	return disagree
}
