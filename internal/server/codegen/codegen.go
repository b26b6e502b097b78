// Package codegen produces random short codes for links.
package codegen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	// Base62 is the default alphabet: digits, upper and lower case letters.
	Base62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	DefaultLength = 7
)

var ErrInvalidAlphabet = errors.New("alphabet must contain at least two distinct symbols")

// Generator draws codes of a fixed length uniformly from an alphabet.
// It is safe for concurrent use.
type Generator struct {
	alphabet []rune
	length   int
	rand     io.Reader
}

func NewGenerator(alphabet string, length int) (*Generator, error) {
	symbols := []rune(alphabet)
	seen := make(map[rune]struct{}, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			return nil, fmt.Errorf("duplicate symbol %q: %w", s, ErrInvalidAlphabet)
		}
		seen[s] = struct{}{}
	}
	if len(symbols) < 2 {
		return nil, ErrInvalidAlphabet
	}
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{alphabet: symbols, length: length, rand: rand.Reader}, nil
}

// NewDefault returns a base62 generator with the given length.
func NewDefault(length int) *Generator {
	g, _ := NewGenerator(Base62, length)
	return g
}

func (g *Generator) Length() int { return g.length }

// NewCode returns a fresh code. Uniqueness is not guaranteed; callers check
// the store.
func (g *Generator) NewCode() (string, error) {
	max := big.NewInt(int64(len(g.alphabet)))
	out := make([]rune, g.length)
	for i := range out {
		n, err := rand.Int(g.rand, max)
		if err != nil {
			return "", fmt.Errorf("error generating code: %w", err)
		}
		out[i] = g.alphabet[n.Int64()]
	}
	return string(out), nil
}
