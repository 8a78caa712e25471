package shortener

import "github.com/cespare/xxhash/v2"

// Alphabet is the fixed, order-significant symbol table for short codes.
// It deliberately omits '7' — the character set is part of the persisted
// file format and cannot change without breaking existing stores.
const Alphabet = "012345689abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Hash returns a deterministic, non-cryptographic 64-bit hash of the input.
// Equal inputs always hash equal; similar inputs (transpositions, anagrams)
// diverge with high probability. No stability across hash versions is
// promised, only within one build.
func Hash(input string) uint64 {
	return xxhash.Sum64String(input)
}

// Encode maps a hash to a short code by repeated division through Alphabet,
// appending the least significant digit first. The encoding is not
// zero-padded and not reversible without the original hash width: leading
// zero remainders are dropped at the high end, and Encode(0) returns the
// empty string.
func Encode(h uint64) string {
	base := uint64(len(Alphabet))

	buf := make([]byte, 0, 11) // ceil(64 / log2(61)) digits at most

	for h > 0 {
		buf = append(buf, Alphabet[h%base])
		h /= base
	}

	return string(buf)
}
