// Package simhash fingerprints rendered listing text so the crawler can tell
// whether a pagination click actually replaced the page content.
package simhash

import (
	"hash/fnv"
	"strings"
)

// Fingerprint computes a 64-bit SimHash of text over word bigrams, so word
// order contributes. A single word is hashed on its own; blank text is 0.
func Fingerprint(text string) uint64 {
	words := strings.Fields(text)
	switch len(words) {
	case 0:
		return 0
	case 1:
		return accumulate(words)
	}
	return accumulate(shingles(words, 2))
}

// Listing fingerprints a page of sections. Section boundaries are kept as
// tokens so moving text between sections changes the result.
func Listing(sections []string) uint64 {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString(" \x1e ")
		}
		b.WriteString(s)
	}
	return Fingerprint(b.String())
}

func accumulate(tokens []string) uint64 {
	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

func shingles(tokens []string, n int) []string {
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}
