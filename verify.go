package main

import (
	"slices"
)

const (
	MsgMatch   = "The ciphertext sets match."
	MsgNoMatch = "The ciphertext sets do not match."
)

// Compare reports whether proofs and mixed hold the same ciphertexts with
// the same multiplicities. Order is irrelevant, the inputs are not modified.
func Compare(proofs, mixed []Token) bool {
	if len(proofs) != len(mixed) {
		return false
	}
	return slices.Equal(sortedTokens(proofs), sortedTokens(mixed))
}

func sortedTokens(tokens []Token) []Token {
	s := slices.Clone(tokens)
	slices.Sort(s)
	return s
}

func verdict(match bool) string {
	if match {
		return MsgMatch
	}
	return MsgNoMatch
}
