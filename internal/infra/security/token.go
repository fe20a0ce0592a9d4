package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	domainauth "healthtrack/internal/domain/auth"
)

const defaultTokenBytes = 32

// RandomTokenGenerator issues URL-safe session tokens of Size random bytes
// read from Reader (crypto/rand when nil).
type RandomTokenGenerator struct {
	Size   int
	Reader io.Reader
}

func (g RandomTokenGenerator) NewToken() (domainauth.Token, error) {
	size := g.Size
	if size <= 0 {
		size = defaultTokenBytes
	}
	src := g.Reader
	if src == nil {
		src = rand.Reader
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("security: read token entropy: %w", err)
	}
	return domainauth.Token(base64.RawURLEncoding.EncodeToString(buf)), nil
}
