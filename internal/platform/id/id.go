package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

// HeaderRequestID carries the correlation id of an HTTP request.
const HeaderRequestID = "X-Request-ID"

var acceptable = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// RandomHex yields 2*Bytes hex characters; zero Bytes means 8.
type RandomHex struct {
	Bytes int
}

func (g RandomHex) New() string {
	n := g.Bytes
	if n <= 0 {
		n = 8
	}
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Reuse keeps a caller supplied id when it is safe to log, and otherwise
// draws a fresh one from gen.
func Reuse(gen Generator, supplied string) string {
	if acceptable.MatchString(supplied) {
		return supplied
	}
	return gen.New()
}
