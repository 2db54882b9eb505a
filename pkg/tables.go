package stacklang

// infixPrecedence assigns a numeric precedence class to every infix
// operator; smaller numbers bind tighter. "|" is listed twice (classes 8
// and 10); the later entry wins, so its effective precedence is 10.
var infixPrecedence = buildPrecedenceTable([][]string{
	{"*", "/", "%"},
	{"+", "-"},
	{"<<", ">>"},
	{"<", "<="},
	{">", ">="},
	{"==", "!="},
	{"&"},
	{"|"},
	{"^"},
	{"|"},
	{"&&"},
	{"||"},
	{"?"},
	{"=", "+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=", ">>=", "<<="},
	{","},
})

func buildPrecedenceTable(classes [][]string) map[string]int {
	table := make(map[string]int)
	for class, ops := range classes {
		for _, op := range ops {
			table[op] = class + 1
		}
	}

	return table
}

var unaryPrefixOperators = map[string]bool{
	"++": true, "--": true,
	"!": true, "~": true, "*": true, "&": true, "-": true, "+": true,
}

var unaryPostfixOperators = map[string]bool{
	"++": true, "--": true, ".": true, "->": true,
}

var specialPunctuation = []string{"(", ")", "{", "}", ",", ";", ":", "::"}

var specialTokens = buildSpecialTokens()

func buildSpecialTokens() []string {
	seen := make(map[string]bool)
	var all []string

	add := func(toks ...string) {
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				all = append(all, t)
			}
		}
	}

	add(specialPunctuation...)
	for op := range infixPrecedence {
		add(op)
	}
	for op := range unaryPrefixOperators {
		add(op)
	}
	for op := range unaryPostfixOperators {
		add(op)
	}

	return all
}

func isInfixOperator(lexeme string) (int, bool) {
	prec, ok := infixPrecedence[lexeme]
	return prec, ok
}

func precedence(op string) int {
	return infixPrecedence[op]
}

func isUnaryPrefix(lexeme string) bool {
	return unaryPrefixOperators[lexeme]
}

func isUnaryPostfix(lexeme string) bool {
	return unaryPostfixOperators[lexeme]
}

var keywords = map[string]bool{
	"typedef": true, "template": true, "using": true, "class": true,
	"struct": true, "static": true, "return": true, "namespace": true,
	"int": true, "void": true, "typename": true,
}

func isKeyword(word string) bool {
	return keywords[word]
}
