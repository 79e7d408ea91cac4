package profile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
)

// Format identifies a profile file encoding.
type Format string

const (
	FormatSOC  Format = "soc"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatSOC, FormatJSON, FormatYAML}

// MaxSOCVoters caps the voters a SOC file may expand to after multiplicity
// counts are applied.
const MaxSOCVoters = 1 << 20

// ParseFormat maps a user-supplied name (or file extension) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "soc":
		return FormatSOC, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", kerrors.New(kerrors.ErrCodeInvalidFormat, "unknown profile format %q", s)
}

// Source supplies a profile. File readers and the synthetic generators
// both satisfy it; aggregation code never inspects where a profile came from.
type Source interface {
	Load(ctx context.Context) (*Profile, error)
}

// FileSource reads a profile from disk. An empty Format is inferred from the
// file extension.
type FileSource struct {
	Path   string
	Format Format
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(s.Path, s.Format)
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string, format Format) (*Profile, error) {
	if format == "" {
		f, err := ParseFormat(filepath.Ext(path))
		if err != nil {
			return nil, err
		}
		format = f
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, format)
}

// Read decodes a profile in the given format.
func Read(r io.Reader, format Format) (*Profile, error) {
	switch format {
	case FormatSOC:
		return ReadSOC(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, kerrors.New(kerrors.ErrCodeInvalidFormat, "unknown profile format %q", format)
}

// ReadJSON decodes {"labels": [...], "ranks": [[...]]}.
func ReadJSON(r io.Reader) (*Profile, error) {
	var p Profile
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		if kerrors.GetCode(err) != "" {
			return nil, err
		}
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode json profile")
	}
	return &p, nil
}

// ReadYAML decodes the YAML form of the JSON document.
func ReadYAML(r io.Reader) (*Profile, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode yaml profile")
	}
	p, err := New(doc.Ranks)
	if err != nil {
		return nil, err
	}
	return p.WithLabels(doc.Labels), nil
}

// ReadSOC decodes a PrefLib strict-orders-complete-lists file.
//
// Preference lines have the form "count: a1,a2,...,am" where the a's are
// one-based alternative ids listed best first. Each line is expanded into
// count identical voters; count must be positive and the expanded total may
// not exceed MaxSOCVoters. "# ALTERNATIVE NAME i: label" metadata lines set
// candidate labels and other comment lines are ignored.
func ReadSOC(r io.Reader) (*Profile, error) {
	var (
		orders [][]int
		labels = map[int]string{}
		maxAlt int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if id, name, ok := parseAlternativeName(line); ok {
				labels[id-1] = name
			}
			continue
		}
		left, right, ok := strings.Cut(line, ":")
		if !ok {
			return nil, kerrors.New(kerrors.ErrCodeInvalidFormat,
				"line %d: expected \"count: order\"", lineNo)
		}
		count, err := strconv.Atoi(strings.TrimSpace(left))
		if err != nil || count < 1 {
			return nil, kerrors.New(kerrors.ErrCodeInvalidFormat,
				"line %d: invalid voter count %q", lineNo, strings.TrimSpace(left))
		}
		if count > MaxSOCVoters-len(orders) {
			return nil, kerrors.New(kerrors.ErrCodeLimitExceeded,
				"line %d: profile expands past %d voters", lineNo, MaxSOCVoters)
		}
		right = strings.NewReplacer("{", "", "}", "").Replace(right)
		var alts []int
		for _, field := range strings.Split(right, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			id, err := strconv.Atoi(field)
			if err != nil || id < 1 {
				return nil, kerrors.New(kerrors.ErrCodeInvalidFormat,
					"line %d: invalid alternative %q", lineNo, field)
			}
			maxAlt = max(maxAlt, id)
			alts = append(alts, id-1)
		}
		for range count {
			orders = append(orders, alts)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "read soc profile")
	}
	if len(orders) == 0 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidProfile, "soc file contains no preference lines")
	}
	for v, order := range orders {
		if len(order) != maxAlt {
			return nil, kerrors.New(kerrors.ErrCodeInvalidProfile,
				"voter %d: lists %d of %d alternatives (incomplete orders are not supported)", v, len(order), maxAlt)
		}
	}

	p, err := FromOrders(orders)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		names := make([]string, maxAlt)
		for id, name := range labels {
			if id >= 0 && id < maxAlt {
				names[id] = name
			}
		}
		p = p.WithLabels(names)
	}
	return p, nil
}

// parseAlternativeName parses "# ALTERNATIVE NAME 3: Gwendolyn".
func parseAlternativeName(line string) (int, string, bool) {
	const prefix = "ALTERNATIVE NAME"
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	if !strings.HasPrefix(rest, prefix) {
		return 0, "", false
	}
	idPart, name, ok := strings.Cut(strings.TrimPrefix(rest, prefix), ":")
	if !ok {
		return 0, "", false
	}
	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil || id < 1 {
		return 0, "", false
	}
	return id, strings.TrimSpace(name), true
}

// Write encodes p in the given format.
func Write(w io.Writer, p *Profile, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document{Labels: p.labels, Ranks: p.Rows()}); err != nil {
			return err
		}
		return enc.Close()
	case FormatSOC:
		return writeSOC(w, p)
	}
	return kerrors.New(kerrors.ErrCodeInvalidFormat, "unknown profile format %q", format)
}

// writeSOC groups identical orders into multiplicity lines, preserving the
// order in which each distinct ranking first appears.
func writeSOC(w io.Writer, p *Profile) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# NUMBER ALTERNATIVES: %d\n", p.m)
	fmt.Fprintf(bw, "# NUMBER VOTERS: %d\n", p.n)
	for c := 0; c < p.m; c++ {
		if c < len(p.labels) && p.labels[c] != "" {
			fmt.Fprintf(bw, "# ALTERNATIVE NAME %d: %s\n", c+1, p.labels[c])
		}
	}

	var keys []string
	counts := map[string]int{}
	for v := 0; v < p.n; v++ {
		order := p.Order(v)
		parts := make([]string, len(order))
		for i, c := range order {
			parts[i] = strconv.Itoa(c + 1)
		}
		key := strings.Join(parts, ",")
		if counts[key] == 0 {
			keys = append(keys, key)
		}
		counts[key]++
	}
	for _, key := range keys {
		fmt.Fprintf(bw, "%d: %s\n", counts[key], key)
	}
	return bw.Flush()
}
