package shortener

import "github.com/jaevor/go-nanoid"

// CodeStrategy produces the short code for a long URL.
type CodeStrategy interface {
	Code(longURL string) string
}

// HashStrategy derives the code deterministically from the URL itself:
// the same URL always yields the same code. This is the default.
type HashStrategy struct{}

// NewHashStrategy creates the deterministic hash-based strategy.
func NewHashStrategy() *HashStrategy {
	return &HashStrategy{}
}

func (s *HashStrategy) Code(longURL string) string {
	return Encode(Hash(longURL))
}

// TokenStrategy ignores the URL and generates a fresh random code each
// time, so repeated adds of one URL produce distinct codes.
type TokenStrategy struct {
	generate func() string
}

// NewTokenStrategy creates a random-token strategy with codes of the given
// length, drawn from the nanoid standard alphabet.
func NewTokenStrategy(length int) (*TokenStrategy, error) {
	generate, err := nanoid.Standard(length)
	if err != nil {
		return nil, err
	}

	return &TokenStrategy{generate: generate}, nil
}

func (s *TokenStrategy) Code(_ string) string {
	return s.generate()
}
