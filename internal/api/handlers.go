package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/kemeny/pkg/aggregate"
	"github.com/matzehuels/kemeny/pkg/buildinfo"
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/pipeline"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// AggregateRequest is the body of POST /v1/aggregate. Exactly one of Ranks
// and Orders carries the profile.
type AggregateRequest struct {
	// Ranks[v][c] is the rank position of candidate c for voter v.
	Ranks [][]int `json:"ranks,omitempty" validate:"required_without=Orders,excluded_with=Orders"`
	// Orders[v] lists voter v's candidates best to worst.
	Orders [][]int `json:"orders,omitempty"`
	// OneBased shifts Ranks from 1..m to 0..m-1.
	OneBased bool     `json:"one_based,omitempty"`
	Labels   []string `json:"labels,omitempty"`

	Methods   []string `json:"methods,omitempty"`
	Seed      *uint64  `json:"seed,omitempty"`
	Restarts  int      `json:"restarts,omitempty" validate:"min=0"`
	TimeoutMS int      `json:"timeout_ms,omitempty" validate:"min=0"`
	NoCache   bool     `json:"no_cache,omitempty"`
}

// AggregateResponse is the pipeline report plus the best result.
type AggregateResponse struct {
	*pipeline.Report
	Labels []string          `json:"labels"`
	Best   *aggregate.Result `json:"best,omitempty"`
}

// MethodInfo describes one method in GET /v1/methods.
type MethodInfo struct {
	Name        string `json:"name"`
	Exact       bool   `json:"exact"`
	Randomized  bool   `json:"randomized"`
	Description string `json:"description"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      kerrors.Code `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
}

var validate = validator.New()

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleMethods(w http.ResponseWriter, _ *http.Request) {
	names := aggregate.Names()
	out := make([]MethodInfo, 0, len(names))
	for _, name := range names {
		out = append(out, MethodInfo{
			Name:        name,
			Exact:       aggregate.Exact(name),
			Randomized:  aggregate.Randomized(name),
			Description: aggregate.Describe(name),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody())
	var req AggregateRequest
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeLimitExceeded, err, "request body"))
			return
		}
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "invalid request"))
		return
	}

	p, err := req.profile()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.cfg.PipelineOptions(req.Methods)
	if req.Seed != nil {
		opts.Aggregate.Seed = *req.Seed
	}
	if req.Restarts > 0 {
		opts.Aggregate.Restarts = req.Restarts
	}
	if req.TimeoutMS > 0 {
		opts.Timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}
	opts.NoCache = opts.NoCache || req.NoCache

	report, err := s.runner.Run(r.Context(), p, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AggregateResponse{
		Report: report,
		Labels: p.Labels(),
		Best:   report.Best(),
	})
}

func (req AggregateRequest) profile() (*profile.Profile, error) {
	var (
		p   *profile.Profile
		err error
	)
	switch {
	case req.Orders != nil:
		p, err = profile.FromOrders(req.Orders)
	case req.OneBased:
		p, err = profile.FromOneBased(req.Ranks)
	default:
		p, err = profile.New(req.Ranks)
	}
	if err != nil {
		return nil, err
	}
	return p.WithLabels(req.Labels), nil
}

func (s *Server) maxBody() int64 {
	if n := s.cfg.Server.MaxBodyBytes; n > 0 {
		return n
	}
	return 8 << 20
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch kerrors.GetCode(err) {
	case kerrors.ErrCodeInvalidInput, kerrors.ErrCodeInvalidProfile, kerrors.ErrCodeInvalidMethod,
		kerrors.ErrCodeInvalidFormat, kerrors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case kerrors.ErrCodeNotFound, kerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case kerrors.ErrCodeLimitExceeded, kerrors.ErrCodeNotIdentifiable:
		return http.StatusUnprocessableEntity
	case kerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case kerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := kerrors.GetCode(err)
	if code == "" {
		code = kerrors.ErrCodeInternal
	}
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		msg = kerrors.UserMessage(err)
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

