package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyVersion is part of every result key. Bump it when the stored result
// encoding changes so older entries are never decoded.
const KeyVersion = "v1"

// resultKey returns "result:<version>:<method>:<digest>". The method stays
// readable so a backend listing shows which solver an entry belongs to; the
// digest covers the profile hash and every option that changes the result.
func resultKey(profileHash, method string, opts ResultKeyOpts) string {
	h := sha256.New()
	h.Write([]byte(profileHash))
	fmt.Fprintf(h, "\x00%d\x00%d\x00%d", opts.Seed, opts.Restarts, opts.MaxNoImprove)
	return strings.Join([]string{"result", KeyVersion, method, hex.EncodeToString(h.Sum(nil))}, ":")
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
