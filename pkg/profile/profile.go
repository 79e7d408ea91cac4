package profile

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strconv"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
)

// Profile is an immutable n x m matrix of rank positions.
type Profile struct {
	n, m   int
	ranks  []int // row-major, ranks[v*m+c]
	labels []string
}

// New validates rows and returns a Profile holding a copy of them.
func New(rows [][]int) (*Profile, error) {
	if err := Validate(rows); err != nil {
		return nil, err
	}
	n, m := len(rows), len(rows[0])
	p := &Profile{n: n, m: m, ranks: make([]int, 0, n*m)}
	for _, row := range rows {
		p.ranks = append(p.ranks, row...)
	}
	return p, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and
// package-level fixtures.
func MustNew(rows [][]int) *Profile {
	p, err := New(rows)
	if err != nil {
		panic(err)
	}
	return p
}

// FromOneBased subtracts one from every entry before validating.
func FromOneBased(rows [][]int) (*Profile, error) {
	shifted := make([][]int, len(rows))
	for v, row := range rows {
		shifted[v] = make([]int, len(row))
		for c, r := range row {
			shifted[v][c] = r - 1
		}
	}
	return New(shifted)
}

// FromOrders builds a profile from best-to-worst candidate lists.
// orders[v][k] is the candidate voter v places at position k.
func FromOrders(orders [][]int) (*Profile, error) {
	rows := make([][]int, len(orders))
	for v, order := range orders {
		row := make([]int, len(order))
		for i := range row {
			row[i] = -1
		}
		for pos, c := range order {
			if c < 0 || c >= len(order) {
				return nil, kerrors.New(kerrors.ErrCodeInvalidProfile,
					"voter %d: candidate %d out of range [0,%d)", v, c, len(order))
			}
			if row[c] != -1 {
				return nil, kerrors.New(kerrors.ErrCodeInvalidProfile,
					"voter %d: candidate %d listed twice", v, c)
			}
			row[c] = pos
		}
		rows[v] = row
	}
	return New(rows)
}

// Validate checks that rows form a non-empty rectangular matrix whose rows
// are permutations of 0..m-1.
func Validate(rows [][]int) error {
	if len(rows) == 0 {
		return kerrors.New(kerrors.ErrCodeInvalidProfile, "profile has no voters")
	}
	m := len(rows[0])
	if m == 0 {
		return kerrors.New(kerrors.ErrCodeInvalidProfile, "profile has no candidates")
	}
	seen := make([]bool, m)
	for v, row := range rows {
		if len(row) != m {
			return kerrors.New(kerrors.ErrCodeInvalidProfile,
				"voter %d: ranks %d candidates, want %d", v, len(row), m)
		}
		clear(seen)
		for c, r := range row {
			if r < 0 || r >= m {
				return kerrors.New(kerrors.ErrCodeInvalidProfile,
					"voter %d: candidate %d has rank %d outside [0,%d)", v, c, r, m)
			}
			if seen[r] {
				return kerrors.New(kerrors.ErrCodeInvalidProfile,
					"voter %d: rank %d assigned twice", v, r)
			}
			seen[r] = true
		}
	}
	return nil
}

// Voters returns n, the number of rows.
func (p *Profile) Voters() int { return p.n }

// Candidates returns m, the number of columns.
func (p *Profile) Candidates() int { return p.m }

// Rank returns the position voter v gives candidate c.
func (p *Profile) Rank(v, c int) int { return p.ranks[v*p.m+c] }

// Prefers reports whether voter v ranks a strictly above b.
func (p *Profile) Prefers(v, a, b int) bool {
	row := p.ranks[v*p.m : (v+1)*p.m]
	return row[a] < row[b]
}

// Row returns a copy of voter v's rank vector.
func (p *Profile) Row(v int) []int {
	return slices.Clone(p.ranks[v*p.m : (v+1)*p.m])
}

// Order returns voter v's candidates from best to worst.
func (p *Profile) Order(v int) []int {
	order := make([]int, p.m)
	for c, r := range p.ranks[v*p.m : (v+1)*p.m] {
		order[r] = c
	}
	return order
}

// Column returns the rank every voter assigns to candidate c.
func (p *Profile) Column(c int) []int {
	col := make([]int, p.n)
	for v := range col {
		col[v] = p.ranks[v*p.m+c]
	}
	return col
}

// Rows returns a deep copy of the matrix.
func (p *Profile) Rows() [][]int {
	rows := make([][]int, p.n)
	for v := range rows {
		rows[v] = p.Row(v)
	}
	return rows
}

// RankSums returns, for each candidate, the sum of its rank positions over
// all voters (its Borda cost).
func (p *Profile) RankSums() []int {
	sums := make([]int, p.m)
	for v := 0; v < p.n; v++ {
		row := p.ranks[v*p.m : (v+1)*p.m]
		for c, r := range row {
			sums[c] += r
		}
	}
	return sums
}

// WithLabels returns a copy of p carrying candidate display names. Extra
// labels are ignored; missing ones fall back to the numeric index.
func (p *Profile) WithLabels(labels []string) *Profile {
	cp := *p
	cp.labels = slices.Clone(labels)
	return &cp
}

// Labels returns the candidate names, one per candidate.
func (p *Profile) Labels() []string {
	out := make([]string, p.m)
	for c := range out {
		out[c] = p.Label(c)
	}
	return out
}

// Label returns the display name of candidate c.
func (p *Profile) Label(c int) string {
	if c < len(p.labels) && p.labels[c] != "" {
		return p.labels[c]
	}
	return strconv.Itoa(c)
}

// Equal reports whether p and q hold the same rank matrix. Labels are
// ignored.
func (p *Profile) Equal(q *Profile) bool {
	return p.n == q.n && p.m == q.m && slices.Equal(p.ranks, q.ranks)
}

// Hash returns a hex SHA-256 digest of the shape and rank matrix. Labels do
// not contribute, so relabelled profiles share cached results.
func (p *Profile) Hash() string {
	h := sha256.New()
	buf := make([]byte, 8)
	write := func(x int) {
		binary.LittleEndian.PutUint64(buf, uint64(x))
		h.Write(buf)
	}
	write(p.n)
	write(p.m)
	for _, r := range p.ranks {
		write(r)
	}
	return hex.EncodeToString(h.Sum(nil))
}

type document struct {
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Ranks  [][]int  `json:"ranks" yaml:"ranks"`
}

// MarshalJSON encodes the profile as {"labels": [...], "ranks": [[...]]}.
func (p *Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{Labels: p.labels, Ranks: p.Rows()})
}

// UnmarshalJSON decodes and validates a profile document.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode profile")
	}
	q, err := New(doc.Ranks)
	if err != nil {
		return err
	}
	*p = *q.WithLabels(doc.Labels)
	return nil
}
