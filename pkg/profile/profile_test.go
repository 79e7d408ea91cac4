package profile

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"testing"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
)

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]int
		wantErr bool
	}{
		{"valid", [][]int{{0, 1, 2}, {2, 0, 1}}, false},
		{"single candidate", [][]int{{0}, {0}}, false},
		{"no voters", nil, true},
		{"no candidates", [][]int{{}}, true},
		{"ragged", [][]int{{0, 1, 2}, {0, 1}}, true},
		{"duplicate rank", [][]int{{0, 0, 2}}, true},
		{"rank too large", [][]int{{0, 1, 3}}, true},
		{"negative rank", [][]int{{-1, 0, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !kerrors.Is(err, kerrors.ErrCodeInvalidProfile) {
				t.Errorf("error code = %q, want %q", kerrors.GetCode(err), kerrors.ErrCodeInvalidProfile)
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	rows := [][]int{{0, 1}, {1, 0}}
	p := MustNew(rows)
	rows[0][0] = 1

	if p.Rank(0, 0) != 0 {
		t.Error("profile should not alias caller's rows")
	}

	row := p.Row(1)
	row[0] = 7
	if p.Rank(1, 0) != 1 {
		t.Error("Row() should return a copy")
	}
}

func TestFromOneBased(t *testing.T) {
	p, err := FromOneBased([][]int{{1, 2, 3}, {3, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{0, 1, 2}, {2, 0, 1}}
	for v, row := range want {
		if got := p.Row(v); !slices.Equal(got, row) {
			t.Errorf("row %d = %v, want %v", v, got, row)
		}
	}

	if _, err := FromOneBased([][]int{{0, 1, 2}}); err == nil {
		t.Error("zero-based input passed to FromOneBased should fail validation")
	}
}

func TestFromOrdersRoundTrip(t *testing.T) {
	orders := [][]int{{2, 0, 1}, {0, 1, 2}}
	p, err := FromOrders(orders)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Row(0); !slices.Equal(got, []int{1, 2, 0}) {
		t.Errorf("Row(0) = %v, want [1 2 0]", got)
	}
	for v, order := range orders {
		if got := p.Order(v); !slices.Equal(got, order) {
			t.Errorf("Order(%d) = %v, want %v", v, got, order)
		}
	}

	if _, err := FromOrders([][]int{{0, 0, 1}}); err == nil {
		t.Error("duplicate candidate should fail")
	}
	if _, err := FromOrders([][]int{{0, 3, 1}}); err == nil {
		t.Error("out-of-range candidate should fail")
	}
}

func TestAccessors(t *testing.T) {
	p := MustNew([][]int{{0, 1, 2}, {0, 2, 1}, {2, 1, 0}})

	if p.Voters() != 3 || p.Candidates() != 3 {
		t.Fatalf("shape = %dx%d, want 3x3", p.Voters(), p.Candidates())
	}
	if !p.Prefers(1, 2, 1) {
		t.Error("voter 1 should prefer candidate 2 over 1")
	}
	if got := p.RankSums(); !slices.Equal(got, []int{2, 4, 3}) {
		t.Errorf("RankSums() = %v, want [2 4 3]", got)
	}
	if got := p.Column(2); !slices.Equal(got, []int{2, 1, 0}) {
		t.Errorf("Column(2) = %v, want [2 1 0]", got)
	}
}

func TestHash(t *testing.T) {
	a := MustNew([][]int{{0, 1, 2}, {2, 1, 0}})
	b := MustNew([][]int{{0, 1, 2}, {2, 1, 0}}).WithLabels([]string{"x", "y", "z"})
	c := MustNew([][]int{{2, 1, 0}, {0, 1, 2}})

	if a.Hash() != b.Hash() {
		t.Error("labels should not change the hash")
	}
	if a.Hash() == c.Hash() {
		t.Error("voter order should change the hash")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("hash length = %d, want 64", len(a.Hash()))
	}
}

func TestLabels(t *testing.T) {
	p := MustNew([][]int{{0, 1, 2}}).WithLabels([]string{"a", "", "c"})
	if got := p.Labels(); !slices.Equal(got, []string{"a", "1", "c"}) {
		t.Errorf("Labels() = %v", got)
	}
	if !p.Equal(MustNew([][]int{{0, 1, 2}})) {
		t.Error("Equal should ignore labels")
	}
}

func TestReadSOC(t *testing.T) {
	src := `# FILE NAME: demo.soc
# NUMBER ALTERNATIVES: 3
# ALTERNATIVE NAME 1: Alice
# ALTERNATIVE NAME 2: Bob
# ALTERNATIVE NAME 3: Carol
2: 1,2,3
1: 3,1,2
`
	p, err := ReadSOC(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if p.Voters() != 3 || p.Candidates() != 3 {
		t.Fatalf("shape = %dx%d, want 3x3", p.Voters(), p.Candidates())
	}
	if got := p.Order(2); !slices.Equal(got, []int{2, 0, 1}) {
		t.Errorf("Order(2) = %v, want [2 0 1]", got)
	}
	if p.Label(2) != "Carol" {
		t.Errorf("Label(2) = %q, want Carol", p.Label(2))
	}
}

func TestReadSOCRejectsIncompleteOrders(t *testing.T) {
	_, err := ReadSOC(strings.NewReader("1: 1,2,3\n1: 1,2\n"))
	if !kerrors.Is(err, kerrors.ErrCodeInvalidProfile) {
		t.Errorf("error = %v, want INVALID_PROFILE", err)
	}

	_, err = ReadSOC(strings.NewReader("# only comments\n"))
	if err == nil {
		t.Error("empty soc file should fail")
	}
}

func TestReadSOCRejectsBadCounts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code kerrors.Code
	}{
		{"negative", "-3: 1,2,3\n2: 3,2,1\n", kerrors.ErrCodeInvalidFormat},
		{"zero", "0: 1,2\n1: 2,1\n", kerrors.ErrCodeInvalidFormat},
		{"not a number", "x: 1,2\n", kerrors.ErrCodeInvalidFormat},
		{"missing count", "1,2,3\n", kerrors.ErrCodeInvalidFormat},
		{"huge", "99999999999: 1,2\n", kerrors.ErrCodeLimitExceeded},
		{"total over cap", fmt.Sprintf("%d: 1,2\n%d: 2,1\n", MaxSOCVoters/2+1, MaxSOCVoters/2), kerrors.ErrCodeLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ReadSOC(strings.NewReader(tt.src))
			if !kerrors.Is(err, tt.code) {
				t.Errorf("ReadSOC = %v, %v; want %s", p, err, tt.code)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	p := MustNew([][]int{{0, 1, 2}, {0, 1, 2}, {2, 0, 1}}).WithLabels([]string{"x", "y", "z"})

	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, p, format); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Read(&buf, format)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !got.Equal(p) {
				t.Errorf("round trip changed ranks: %v", got.Rows())
			}
			if !slices.Equal(got.Labels(), p.Labels()) {
				t.Errorf("round trip labels = %v, want %v", got.Labels(), p.Labels())
			}
		})
	}
}

func TestReadJSONInvalid(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"ranks": [[0, 1], [1, 1]]}`))
	if !kerrors.Is(err, kerrors.ErrCodeInvalidProfile) {
		t.Errorf("error = %v, want INVALID_PROFILE", err)
	}

	_, err = ReadJSON(strings.NewReader(`{"ranks": `))
	if !kerrors.Is(err, kerrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{".soc": FormatSOC, "JSON": FormatJSON, ".yml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat(".csv"); err == nil {
		t.Error("ParseFormat(.csv) should fail")
	}
}
