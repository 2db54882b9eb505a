package stacklang

import (
	"fmt"
	"strconv"
)

// Parser walks a flat token slice with an explicit cursor so speculative
// parses can rewind cheaply.
type Parser struct {
	tokens []Token
	pos    int
	ctx    *Context
}

func newParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, ctx: NewContext()}
}

func Parse(source []byte) (*Namespace, error) {
	raw, err := Scan(source)
	if err != nil {
		return nil, err
	}

	p := newParser(assembleTokens(raw))
	ns := &Namespace{}
	if err := p.parseNamespaceContents(ns); err != nil {
		return nil, err
	}

	return ns, nil
}

// --- Cursor helpers ------------------------------------------------------

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) peek() Token {
	if p.atEnd() {
		return Token{Value: "", Loc: p.endLoc()}
	}
	return p.tokens[p.pos]
}

func (p *Parser) endLoc() Location {
	if len(p.tokens) == 0 {
		return UnknownLocation
	}
	return p.tokens[len(p.tokens)-1].Loc
}

func (p *Parser) next() Token {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(lexeme string) bool {
	return !p.atEnd() && p.peek().Value == lexeme
}

func (p *Parser) consume(lexeme string) bool {
	if p.check(lexeme) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expect(lexeme string) (Token, error) {
	if !p.check(lexeme) {
		return Token{}, &ParseError{
			Loc:      p.peek().Loc,
			Msg:      fmt.Sprintf("expected %q, got %q", lexeme, p.peek().Value),
			Expected: []string{lexeme},
		}
	}
	return p.next(), nil
}

// parserMark pairs a cursor position with a Context checkpoint so a
// rollback undoes both the tokens consumed and any bindings registered.
type parserMark struct {
	pos int
	cp  checkpoint
}

func (p *Parser) mark() parserMark {
	return parserMark{pos: p.pos, cp: p.ctx.Snapshot()}
}

func (p *Parser) rollback(m parserMark) {
	p.pos = m.pos
	p.ctx.Restore(m.cp)
}

// disallowSet names infix operators parseExpr must not fold at the
// current nesting level.
type disallowSet map[string]bool

func invalidIdentifierErr(tok Token) error {
	return &ParseError{Loc: tok.Loc, Msg: fmt.Sprintf("invalid identifier %q", tok.Value)}
}

// readName consumes one word token as a simple (unqualified) identifier.
func (p *Parser) readName() (Token, error) {
	tok := p.next()
	if !isValidID(tok.Value) || isKeyword(tok.Value) {
		return tok, invalidIdentifierErr(tok)
	}
	return tok, nil
}

func isValidID(s string) bool {
	if len(s) == 0 {
		return false
	}
	if isDigit(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(isDigit(c) || isLetter(c) || c == '_') {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parseIdentifier parses ["::"] word ("::" word)*. Qualified and global
// references parse but fail to resolve in Context.Lookup.
func (p *Parser) parseIdentifier() (Identifier, error) {
	loc := p.peek().Loc
	global := p.consume("::")

	var parts []string
	for {
		tok, err := p.readName()
		if err != nil {
			return Identifier{}, err
		}
		parts = append(parts, tok.Value)
		if !p.consume("::") {
			break
		}
	}

	return Identifier{Parts: parts, Global: global, Loc: loc}, nil
}

// --- Types -----------------------------------------------------------------

func (p *Parser) parseType() (Type, error) {
	switch {
	case p.check("void"):
		p.next()
		return VoidType{}, nil
	case p.check("int"):
		p.next()
		return IntType{}, nil
	}

	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	decl, err := p.ctx.Lookup(id)
	if err != nil {
		return nil, err
	}

	typ, ok := decl.(Type)
	if !ok {
		return nil, &KindError{Loc: id.Loc, Msg: fmt.Sprintf("%q does not name a type", id.String())}
	}

	if tp, isParam := decl.(*TemplateParam); isParam && tp.Kind == TemplateParamInt {
		return nil, &KindError{Loc: id.Loc, Msg: fmt.Sprintf("%q is an int template parameter, not a type", id.String())}
	}

	return typ, nil
}

// parseTemplateParams parses "<" (int|typename) Name ("," ...)* ">",
// registering each parameter as it goes so later ones can refer back.
func (p *Parser) parseTemplateParams() ([]*TemplateParam, error) {
	if _, err := p.expect("<"); err != nil {
		return nil, err
	}

	var params []*TemplateParam
	for {
		var kind TemplateParamKind
		switch {
		case p.consume("int"):
			kind = TemplateParamInt
		case p.consume("typename"):
			kind = TemplateParamType
		default:
			return nil, &ParseError{Loc: p.peek().Loc, Msg: "expected \"int\" or \"typename\" in template parameter list"}
		}

		nameTok, err := p.readName()
		if err != nil {
			return nil, err
		}
		if p.check("=") {
			return nil, &UnsupportedError{Loc: p.peek().Loc, Msg: "default template arguments"}
		}

		tp := &TemplateParam{declBase: declBase{name: nameTok.Value, loc: nameTok.Loc}, Kind: kind}
		if err := p.ctx.Add(tp); err != nil {
			return nil, err
		}
		params = append(params, tp)

		if p.consume(",") {
			continue
		}
		break
	}

	if _, err := p.expect(">"); err != nil {
		return nil, err
	}

	return params, nil
}

// --- Declarations ------------------------------------------------------------

func (p *Parser) parseDecl() (Decl, error) {
	p.ctx.Push()
	defer p.ctx.Pop()

	if p.consume("typedef") {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.readName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		return &TypedefDecl{declBase: declBase{name: nameTok.Value, loc: nameTok.Loc}, Base: typ}, nil
	}

	var templateParams []*TemplateParam
	if p.consume("template") {
		tp, err := p.parseTemplateParams()
		if err != nil {
			return nil, err
		}
		templateParams = tp
	}

	if p.consume("using") {
		return p.parseUsingDecl(templateParams)
	}

	if p.check("class") || p.check("struct") {
		return p.parseStructDecl(templateParams)
	}

	p.consume("static")

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.readName()
	if err != nil {
		return nil, err
	}

	mark := p.mark()
	fd, funcErr := p.parseFuncDecl(templateParams, typ, nameTok.Value, nameTok.Loc)
	if funcErr == nil {
		return fd, nil
	}
	funcPos := p.pos
	p.rollback(mark)

	// If the variable reading fails too, report whichever reading got
	// further, so an error inside a function's parameters or body is not
	// masked by the variable fallback.
	vd, err := p.parseVarDeclBody(typ, nameTok.Value, nameTok.Loc, false)
	if err == nil {
		_, err = p.expect(";")
	}
	if err != nil && funcPos > p.pos {
		return nil, funcErr
	}
	if err != nil {
		return nil, err
	}
	return vd, nil
}

func (p *Parser) parseUsingDecl(templateParams []*TemplateParam) (Decl, error) {
	nameTok, err := p.readName()
	if err != nil {
		return nil, err
	}

	if p.consume("=") {
		base, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		alias := &UsingAliasDecl{
			declBase:       declBase{name: nameTok.Value, loc: nameTok.Loc},
			TemplateParams: templateParams,
			Base:           base,
		}
		if err := p.ctx.Add(alias); err != nil {
			return nil, err
		}
		return alias, nil
	}

	if len(templateParams) > 0 {
		return nil, &UnsupportedError{Loc: nameTok.Loc, Msg: "templated using-declaration without an alias"}
	}

	decl, err := p.ctx.Lookup(Identifier{Parts: []string{nameTok.Value}, Loc: nameTok.Loc})
	if err != nil {
		return nil, err
	}
	typ, ok := decl.(Type)
	if !ok {
		return nil, &KindError{Loc: nameTok.Loc, Msg: fmt.Sprintf("%q does not name a type", nameTok.Value)}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	u := &UsingDecl{declBase: declBase{name: nameTok.Value, loc: nameTok.Loc}, Base: typ}
	if err := p.ctx.Add(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *Parser) parseStructDecl(templateParams []*TemplateParam) (Decl, error) {
	isClass := p.check("class")
	p.next()

	nameTok, err := p.readName()
	if err != nil {
		return nil, err
	}

	sd := &StructDecl{
		declBase:       declBase{name: nameTok.Value, loc: nameTok.Loc},
		IsClass:        isClass,
		TemplateParams: templateParams,
	}

	if _, err := p.expect("{"); err != nil {
		return nil, err
	}

	p.ctx.Push()
	for !p.check("}") && !p.atEnd() {
		d, err := p.parseDecl()
		if err != nil {
			p.ctx.Pop()
			return nil, err
		}
		if err := p.ctx.Add(d); err != nil {
			p.ctx.Pop()
			return nil, err
		}
		sd.Inner = append(sd.Inner, d)
	}
	p.ctx.Pop()

	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	return sd, nil
}

// parseFuncDecl assumes the return type and name were already parsed; it
// fails cleanly with no leftover binding if there's no leading "(", so
// parseDecl's var-decl fallback can take over.
func (p *Parser) parseFuncDecl(templateParams []*TemplateParam, returnType Type, name string, loc Location) (*FuncDecl, error) {
	if !p.check("(") {
		return nil, &ParseError{Loc: p.peek().Loc, Msg: "not a function declaration"}
	}
	p.next()
	p.ctx.Push()

	var params []*VarDecl
	if !p.check(")") {
		for {
			pd, err := p.parseParamDecl()
			if err != nil {
				p.ctx.Pop()
				return nil, err
			}
			params = append(params, pd)
			if p.consume(",") {
				continue
			}
			break
		}
	}

	if _, err := p.expect(")"); err != nil {
		p.ctx.Pop()
		return nil, err
	}

	fd := &FuncDecl{
		declBase:       declBase{name: name, loc: loc},
		TemplateParams: templateParams,
		ReturnType:     returnType,
		Params:         params,
	}

	if p.consume(";") {
		fd.IsPrototype = true
		p.ctx.Pop()
		if err := p.ctx.Add(fd); err != nil {
			return nil, err
		}
		return fd, nil
	}

	// Bind fd in the enclosing frame so the body can call it recursively.
	if err := p.ctx.AddEnclosing(fd); err != nil {
		p.ctx.Pop()
		if prev, lookErr := p.ctx.Lookup(Identifier{Parts: []string{name}, Loc: loc}); lookErr == nil {
			if proto, ok := prev.(*FuncDecl); ok && proto.IsPrototype {
				return nil, &UnsupportedError{Loc: loc, Msg: fmt.Sprintf("merging the prototype of %q with its definition", name)}
			}
		}
		return nil, err
	}

	if _, err := p.expect("{"); err != nil {
		p.ctx.Pop()
		return nil, err
	}

	var body []Stmt
	for !p.check("}") && !p.atEnd() {
		st, err := p.parseStmt()
		if err != nil {
			p.ctx.Pop()
			return nil, err
		}
		body = append(body, st)
	}

	if _, err := p.expect("}"); err != nil {
		p.ctx.Pop()
		return nil, err
	}

	fd.Body = body
	p.ctx.Pop()
	return fd, nil
}

func (p *Parser) parseParamDecl() (*VarDecl, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.readName()
	if err != nil {
		return nil, err
	}
	return p.parseVarDeclBody(typ, nameTok.Value, nameTok.Loc, true)
}

// parseVarDeclBody parses an optional initializer and binds the result
// in the current frame. paramMode disables ctor-call and brace-list
// initializers, which don't apply to function parameters.
func (p *Parser) parseVarDeclBody(typ Type, name string, loc Location, paramMode bool) (*VarDecl, error) {
	vd := &VarDecl{declBase: declBase{name: name, loc: loc}, Type: typ}

	switch {
	case p.consume("="):
		expr, err := p.parseExpr(disallowSet{",": true})
		if err != nil {
			return nil, err
		}
		vd.InitKind = VarInitEquals
		vd.InitExpr = expr
	case !paramMode && p.consume("("):
		args, err := p.parseArgList(")")
		if err != nil {
			return nil, err
		}
		vd.InitKind = VarInitCtor
		vd.InitArgs = args
	case !paramMode && p.consume("{"):
		args, err := p.parseArgList("}")
		if err != nil {
			return nil, err
		}
		vd.InitKind = VarInitBraceList
		vd.InitArgs = args
	default:
		vd.InitKind = VarInitNone
	}

	if err := p.ctx.Add(vd); err != nil {
		return nil, err
	}
	return vd, nil
}

func (p *Parser) parseArgList(closer string) ([]Expr, error) {
	var args []Expr
	if p.consume(closer) {
		return args, nil
	}

	for {
		e, err := p.parseExpr(disallowSet{",": true})
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.consume(",") {
			continue
		}
		break
	}

	if _, err := p.expect(closer); err != nil {
		return nil, err
	}
	return args, nil
}

// --- Statements --------------------------------------------------------------

func (p *Parser) parseStmt() (Stmt, error) {
	if p.check("return") {
		loc := p.next().Loc
		if p.consume(";") {
			return &ReturnStmt{loc: loc}, nil
		}
		expr, err := p.parseExpr(nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		return &ReturnStmt{loc: loc, Value: expr}, nil
	}

	mark := p.mark()
	if d, err := p.tryParseLocalDecl(); err == nil {
		return d, nil
	}
	p.rollback(mark)

	expr, err := p.parseExpr(nil)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) tryParseLocalDecl() (Stmt, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.readName()
	if err != nil {
		return nil, err
	}
	vd, err := p.parseVarDeclBody(typ, nameTok.Value, nameTok.Loc, false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return vd, nil
}

// --- Expressions ---------------------------------------------------------

// parseExpr builds a leaf, folds trailing postfix operators, then
// optionally extends it with one infix application whose right-hand
// side recurses back into parseExpr; newBinaryExpr rotates the result
// into correct precedence order.
func (p *Parser) parseExpr(disallow disallowSet) (Expr, error) {
	leaf, err := p.parseLeaf(disallow)
	if err != nil {
		return nil, err
	}

	leaf, err = p.foldPostfix(leaf)
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if _, ok := isInfixOperator(tok.Value); ok && !disallow[tok.Value] {
		p.next()
		rhs, err := p.parseExpr(disallow)
		if err != nil {
			return nil, err
		}
		return newBinaryExpr(tok.Value, leaf, rhs, tok.Loc), nil
	}

	return leaf, nil
}

func (p *Parser) foldPostfix(leaf Expr) (Expr, error) {
	for {
		tok := p.peek()
		if !isUnaryPostfix(tok.Value) {
			return leaf, nil
		}

		switch tok.Value {
		case ".", "->":
			p.next()
			memberTok, err := p.readName()
			if err != nil {
				return nil, err
			}
			leaf = &MemberExpr{exprBase: exprBase{loc: tok.Loc}, Base: leaf, Member: memberTok.Value, ViaPointer: tok.Value == "->"}
		case "++", "--":
			p.next()
			leaf = &UnaryExpr{exprBase: exprBase{loc: tok.Loc}, Op: tok.Value, Postfix: true, Sub: leaf}
		default:
			return leaf, nil
		}
	}
}

func (p *Parser) parseLeaf(disallow disallowSet) (Expr, error) {
	tok := p.peek()

	if v, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
		p.next()
		return &LiteralExpr{exprBase: exprBase{loc: tok.Loc}, Val: IntValue{V: v}}, nil
	}

	if tok.Value == "(" {
		return p.parseParenOrCast(disallow)
	}

	if ctor, ok, err := p.tryParseCtorCall(); err != nil {
		return nil, err
	} else if ok {
		return ctor, nil
	}

	ref, refErr := p.tryParseDeclRef()
	if refErr == nil {
		if _, isFunc := ref.Target.(*FuncDecl); !isFunc && p.check("(") {
			return nil, &KindError{Loc: ref.loc, Msg: fmt.Sprintf("%q is not a function", ref.Target.Name())}
		}
		if fd, isFunc := ref.Target.(*FuncDecl); isFunc && p.check("(") {
			p.next()
			args, err := p.parseArgList(")")
			if err != nil {
				return nil, err
			}
			if len(args) != len(fd.Params) {
				return nil, &ArityError{Loc: ref.loc, Callee: fd.Name(), Want: len(fd.Params), Got: len(args)}
			}
			return &FuncCall{exprBase: exprBase{loc: ref.loc}, Callee: ref, Args: args}, nil
		}
		return ref, nil
	}

	if isUnaryPrefix(tok.Value) {
		p.next()
		sub, err := p.parseExpr(disallow)
		if err != nil {
			return nil, err
		}
		u := &UnaryExpr{exprBase: exprBase{loc: tok.Loc}, Op: tok.Value, Sub: sub}
		return adjustUnaryPrecedence(u), nil
	}

	if _, undefined := refErr.(*ResolveError); undefined {
		return nil, refErr
	}

	return nil, &ParseError{Loc: tok.Loc, Msg: fmt.Sprintf("unexpected token %q in expression", tok.Value)}
}

// tryParseCtorCall speculatively parses "Type" "(" args ")", rolling
// back cleanly when the type or the opening "(" doesn't match so
// parseLeaf can fall through to the identifier-reference leaf.
func (p *Parser) tryParseCtorCall() (*CtorCall, bool, error) {
	mark := p.mark()

	typ, err := p.parseType()
	if err != nil {
		p.rollback(mark)
		return nil, false, nil
	}
	if !p.check("(") {
		p.rollback(mark)
		return nil, false, nil
	}
	loc := p.next().Loc

	args, err := p.parseArgList(")")
	if err != nil {
		return nil, false, err
	}

	return &CtorCall{exprBase: exprBase{loc: loc}, Type: typ, Args: args}, true, nil
}

// parseParenOrCast disambiguates "(" Type ")" Expr from a parenthesized
// sub-expression. Once a type and the closing ")" both match, the shape
// is no longer ambiguous, so a later failure propagates instead of
// falling back to the parenthesized reading.
func (p *Parser) parseParenOrCast(disallow disallowSet) (Expr, error) {
	openLoc := p.next().Loc
	mark := p.mark()

	if typ, err := p.parseType(); err == nil {
		if _, err := p.expect(")"); err == nil {
			sub, err := p.parseExpr(disallow)
			if err != nil {
				return nil, err
			}
			cast := &CastExpr{exprBase: exprBase{loc: openLoc}, TargetType: typ, Sub: sub}
			return adjustUnaryPrecedence(cast), nil
		}
	}
	p.rollback(mark)

	inner, err := p.parseExpr(nil)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return &ParenExpr{exprBase: exprBase{loc: openLoc}, Inner: inner}, nil
}

// tryParseDeclRef resolves an identifier and, if it names a templated
// Decl, commits "<" as the start of a template-argument list rather
// than reconsidering it as less-than.
func (p *Parser) tryParseDeclRef() (*DeclRef, error) {
	mark := p.mark()

	id, err := p.parseIdentifier()
	if err != nil {
		p.rollback(mark)
		return nil, err
	}

	decl, err := p.ctx.Lookup(id)
	if err != nil {
		p.rollback(mark)
		return nil, err
	}

	ref := &DeclRef{exprBase: exprBase{loc: id.Loc}, Target: decl}

	if td, ok := decl.(TemplatedDecl); ok && len(td.TemplateParameters()) > 0 {
		args, err := p.parseTemplateArgs(td.TemplateParameters())
		if err != nil {
			return nil, err
		}
		ref.TemplateArgs = args
	}

	return ref, nil
}

// parseTemplateArgs parses one argument per parameter, disallowing ","
// and ">" inside each expression so they read as list punctuation.
func (p *Parser) parseTemplateArgs(params []*TemplateParam) ([]TemplateArg, error) {
	if _, err := p.expect("<"); err != nil {
		return nil, err
	}

	args := make([]TemplateArg, 0, len(params))
	for i, param := range params {
		if i > 0 {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}

		if param.Kind == TemplateParamType {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, TemplateArg{Type: typ})
		} else {
			expr, err := p.parseExpr(disallowSet{",": true, ">": true})
			if err != nil {
				return nil, err
			}
			args = append(args, TemplateArg{Expr: expr})
		}
	}

	if _, err := p.expect(">"); err != nil {
		return nil, err
	}

	return args, nil
}

// --- Namespace driver ----------------------------------------------------

func (p *Parser) parseNamespaceContents(ns *Namespace) error {
	for !p.atEnd() && !p.check("}") {
		if p.consume("namespace") {
			nameTok, err := p.readName()
			if err != nil {
				return err
			}
			if _, err := p.expect("{"); err != nil {
				return err
			}

			child := &Namespace{Name: nameTok.Value, Loc: nameTok.Loc}
			p.ctx.Push()
			if err := p.parseNamespaceContents(child); err != nil {
				p.ctx.Pop()
				return err
			}
			p.ctx.Pop()

			if _, err := p.expect("}"); err != nil {
				return err
			}
			ns.AddChild(child)
			continue
		}

		d, err := p.parseDecl()
		if err != nil {
			return err
		}
		if err := p.ctx.Add(d); err != nil {
			return err
		}
		ns.AddDecl(d)
	}

	return nil
}
