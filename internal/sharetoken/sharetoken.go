// Package sharetoken generates the public tokens that grant read access to a menu.
// Tokens are drawn from crypto/rand.
package sharetoken

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Size is the number of random bytes behind a token (96 bits).
const Size = 12

// Generator produces share tokens from an entropy source.
type Generator struct {
	Rand io.Reader
}

func New() *Generator {
	return &Generator{Rand: rand.Reader}
}

// Generate returns a URL-safe token of 16 characters.
func (g *Generator) Generate() (string, error) {
	src := g.Rand
	if src == nil {
		src = rand.Reader
	}
	b := make([]byte, Size)
	if _, err := io.ReadFull(src, b); err != nil {
		return "", fmt.Errorf("share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
