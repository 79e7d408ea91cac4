package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kemeny/internal/config"
	"github.com/matzehuels/kemeny/pkg/aggregate"
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/observability"
	"github.com/matzehuels/kemeny/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendNone
	s := NewServer(pipeline.NewRunner(nil, nil, logger), cfg, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		observability.Reset()
	})
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/aggregate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var health struct {
		Status string `json:"status"`
		Build  struct {
			Version string `json:"version"`
		} `json:"build"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Build.Version == "" {
		t.Errorf("body = %s", body)
	}
}

func TestMethods(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/v1/methods")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var methods []MethodInfo
	if err := json.Unmarshal(body, &methods); err != nil {
		t.Fatal(err)
	}
	if len(methods) != len(aggregate.Names()) {
		t.Fatalf("got %d methods", len(methods))
	}
	for _, m := range methods {
		if m.Exact != aggregate.Exact(m.Name) || m.Description == "" {
			t.Errorf("bad entry %+v", m)
		}
	}
}

type aggregateBody struct {
	RunID   string            `json:"run_id"`
	Optimum *int              `json:"optimum"`
	Labels  []string          `json:"labels"`
	Best    *aggregate.Result `json:"best"`
	Entries []pipeline.Entry  `json:"entries"`
}

func TestAggregate(t *testing.T) {
	ts := newTestServer(t)
	resp, body := post(t, ts, `{
		"ranks": [[0,1,2,3,4],[0,1,3,2,4],[4,1,2,0,3],[4,1,0,2,3],[4,1,3,2,0]],
		"labels": ["a","b","c","d","e"],
		"methods": ["dp", "borda"]
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got aggregateBody
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.RunID == "" {
		t.Error("missing run_id")
	}
	if got.Optimum == nil || *got.Optimum != 15 {
		t.Errorf("optimum = %v, want 15", got.Optimum)
	}
	if got.Best == nil || got.Best.Score != 15 {
		t.Errorf("best = %+v", got.Best)
	}
	if len(got.Entries) != 2 || got.Entries[1].Result.Score != 16 {
		t.Errorf("entries = %+v", got.Entries)
	}
	if strings.Join(got.Labels, "") != "abcde" {
		t.Errorf("labels = %v", got.Labels)
	}
}

func TestAggregateOrders(t *testing.T) {
	ts := newTestServer(t)
	resp, body := post(t, ts, `{"orders": [[2,0,1],[2,1,0],[0,2,1]], "methods": ["bruteforce"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got aggregateBody
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Best == nil || got.Best.Order[0] != 2 {
		t.Errorf("best = %+v, want candidate 2 first", got.Best)
	}
}

func TestAggregateRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		code kerrors.Code
	}{
		{"malformed", `{"ranks": `, kerrors.ErrCodeInvalidFormat},
		{"unknown field", `{"rankz": [[0]]}`, kerrors.ErrCodeInvalidFormat},
		{"no profile", `{"methods": ["dp"]}`, kerrors.ErrCodeInvalidInput},
		{"both forms", `{"ranks": [[0]], "orders": [[0]]}`, kerrors.ErrCodeInvalidInput},
		{"not a permutation", `{"ranks": [[0,0,1]]}`, kerrors.ErrCodeInvalidProfile},
		{"unknown method", `{"ranks": [[0,1]], "methods": ["nope"]}`, kerrors.ErrCodeInvalidInput},
	}
	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var e ErrorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", e.Code, tt.code, e.Message)
			}
			if e.RequestID == "" {
				t.Error("missing request_id")
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{kerrors.New(kerrors.ErrCodeInvalidProfile, "x"), http.StatusBadRequest},
		{kerrors.New(kerrors.ErrCodeLimitExceeded, "x"), http.StatusUnprocessableEntity},
		{kerrors.New(kerrors.ErrCodeNotIdentifiable, "x"), http.StatusUnprocessableEntity},
		{kerrors.New(kerrors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{kerrors.New(kerrors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{kerrors.New(kerrors.ErrCodeSolverInfeasible, "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMetricsExposed(t *testing.T) {
	ts := newTestServer(t)
	post(t, ts, `{"ranks": [[0,1,2],[1,0,2]], "methods": ["borda"]}`)

	resp, body := get(t, ts, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		`kemeny_solves_total{method="borda",status="ok"} 1`,
		`kemeny_http_requests_total{code="200",method="POST",route="/v1/aggregate"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
