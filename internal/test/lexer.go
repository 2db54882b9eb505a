package test

import (
	"math/rand"
	"strings"
)

// validTokens is the alphabet of lexemes the scanner is known to accept,
// used to fuzz the longest-match candidate-set algorithm with inputs no
// single handwritten test case would think to try (adjacent
// multi-character operators that share a prefix, like ">>" and ">>=").
var validTokens = []string{
	"int", "void", "struct", "return",
	"(", ")", "{", "}", ",", ";", "::",
	"<", "<=", ">", ">=", "<<", ">>", "<<=", ">>=",
	"+", "-", "*", "/", "%",
	"=", "+=", "-=", "&&", "||", "!", "&", "|", "^", "~",
	"++", "--", ".", "->",
	"123", "7", "x", "y", "n",
}

// GetRandomTokens returns size space-separated lexemes drawn from
// validTokens, not a syntactically valid program, just raw scanner input.
func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	var toks []string
	for len(toks) < size {
		toks = append(toks, validTokens[rand.Intn(len(validTokens))])
	}

	return strings.Join(toks, sep)
}
