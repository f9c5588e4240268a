package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gookit/color"
)

type TokenCount struct {
	Token Token
	Count int
}

// Difference lists the surplus of each side over the other.
type Difference struct {
	MissingFromMixed  []TokenCount // in the proofs, not (as often) in the mixer output
	MissingFromProofs []TokenCount // in the mixer output, not (as often) in the proofs
}

func (d Difference) Empty() bool {
	return len(d.MissingFromMixed) == 0 && len(d.MissingFromProofs) == 0
}

func countTokens(tokens []Token) map[Token]int {
	counts := make(map[Token]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// Diff computes the multiset difference in both directions. Entries are
// sorted by token.
func Diff(proofs, mixed []Token) Difference {
	p := countTokens(proofs)
	m := countTokens(mixed)
	return Difference{
		MissingFromMixed:  surplus(p, m),
		MissingFromProofs: surplus(m, p),
	}
}

func surplus(a, b map[Token]int) []TokenCount {
	var out []TokenCount
	for t, n := range a {
		if n > b[t] {
			out = append(out, TokenCount{Token: t, Count: n - b[t]})
		}
	}
	slices.SortFunc(out, func(x, y TokenCount) int {
		return strings.Compare(string(x.Token), string(y.Token))
	})
	return out
}

// PrintDifference writes the counts and both surpluses for a human reader.
func PrintDifference(w io.Writer, nProofs, nMixed int, d Difference) {
	color.Fprintf(w, "Proof ciphertexts : <suc>%d</>\n", nProofs)
	color.Fprintf(w, "Mixed ciphertexts : <suc>%d</>\n", nMixed)
	if d.Empty() {
		color.Fprintf(w, "Difference : <suc>none</>\n")
		return
	}
	printSurplus(w, "Missing from mixer output", d.MissingFromMixed)
	printSurplus(w, "Missing from proofs", d.MissingFromProofs)
}

func printSurplus(w io.Writer, title string, counts []TokenCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", title, len(counts))
	for _, c := range counts {
		if c.Count > 1 {
			color.Fprintf(w, "  <error>-</> %s (x%d)\n", c.Token, c.Count)
		} else {
			color.Fprintf(w, "  <error>-</> %s\n", c.Token)
		}
	}
}
