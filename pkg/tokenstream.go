package stacklang

import "strings"

func assembleTokens(raw []Token) []Token {
	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		if isLineMarker(t) {
			continue
		}
		tokens = append(tokens, t)
	}

	return tokens
}

func isLineMarker(t Token) bool {
	return strings.HasPrefix(t.Value, "#")
}

func IsLineMarker(t Token) bool {
	return isLineMarker(t)
}
