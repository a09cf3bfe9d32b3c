// Package shortcode allocates the short codes used in public recipe links and
// encodes recipe ids into base-62 strings.
package shortcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// Length is the number of characters in a generated code.
	Length = 7
	// MaxAttempts bounds how many candidates are tried before giving up.
	MaxAttempts = 5
	// Alphabet is the character set of generated codes.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ErrShortCodeExhausted is returned when every attempt produced a taken code.
var ErrShortCodeExhausted = errors.New("short code: attempts exhausted")

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a random candidate code.
func Generate() (string, error) {
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Valid reports whether code has the shape of a generated code.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Allocator draws candidate codes from Generate.
type Allocator struct {
	Generate func() (string, error)
}

// DefaultAllocator draws from the crypto/rand backed Generate.
var DefaultAllocator = Allocator{Generate: Generate}

// Allocate draws candidates until try accepts one. try reports taken=true when
// the candidate collided with an existing code; any other error aborts.
func (a Allocator) Allocate(try func(code string) (taken bool, err error)) (string, error) {
	generate := a.Generate
	if generate == nil {
		generate = Generate
	}
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code, err := generate()
		if err != nil {
			return "", err
		}
		taken, err := try(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrShortCodeExhausted
}

// Allocate runs DefaultAllocator.
func Allocate(try func(code string) (taken bool, err error)) (string, error) {
	return DefaultAllocator.Allocate(try)
}

// Sequence returns a generator yielding codes in order, then repeating the
// last one. It is meant for tests that need predictable collisions.
func Sequence(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if len(codes) == 0 {
			return "", errors.New("short code: empty sequence")
		}
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}
