package stacklang

import (
	"fmt"
	"strings"
)

type Stmt interface {
	Location() Location
	String() string
	isStmt()
}

type Decl interface {
	Stmt
	Name() string
	isDecl()
}

type TemplatedDecl interface {
	Decl
	TemplateParameters() []*TemplateParam
}

type Expr interface {
	Stmt
	Operands() []Expr
	isExpr()
}

type Type interface {
	TypeString() string
	isType()
}

type Value interface {
	ValueString() string
	isValue()
}

type Identifier struct {
	Parts  []string
	Global bool
	Loc    Location
}

func (id Identifier) String() string {
	var b strings.Builder
	if id.Global {
		b.WriteString("::")
	}
	b.WriteString(strings.Join(id.Parts, "::"))
	return b.String()
}

// Simple reports whether id is a single unqualified segment, the only
// shape Lookup currently resolves.
func (id Identifier) Simple() (string, bool) {
	if id.Global || len(id.Parts) != 1 {
		return "", false
	}
	return id.Parts[0], true
}

// --- Types -------------------------------------------------------------------

type VoidType struct{}

func (VoidType) TypeString() string { return "void" }
func (VoidType) isType()            {}

type IntType struct{}

func (IntType) TypeString() string { return "int" }
func (IntType) isType()            {}

// --- Values ------------------------------------------------------------------

type VoidValue struct{}

func (VoidValue) ValueString() string { return "void" }
func (VoidValue) isValue()            {}

type IntValue struct {
	V int64
}

func (v IntValue) ValueString() string { return fmt.Sprintf("int(%d)", v.V) }
func (v IntValue) isValue()            {}

// --- Decls -------------------------------------------------------------------

type declBase struct {
	name string
	loc  Location
}

func (d declBase) Name() string       { return d.name }
func (d declBase) Location() Location { return d.loc }
func (d declBase) isStmt()            {}
func (d declBase) isDecl()            {}

type VarInitKind int

const (
	VarInitNone VarInitKind = iota
	VarInitEquals
	VarInitCtor
	VarInitBraceList
)

type VarDecl struct {
	declBase
	Type     Type
	InitKind VarInitKind
	InitExpr Expr
	InitArgs []Expr
}

func (v *VarDecl) String() string {
	return fmt.Sprintf("VarDecl(%s : %s)", v.name, v.Type.TypeString())
}

// FuncDecl.Body is empty for a prototype; a non-prototype's FuncDecl is
// registered in the enclosing frame before its body is parsed, enabling
// self-recursion.
type FuncDecl struct {
	declBase
	TemplateParams []*TemplateParam
	ReturnType     Type
	Params         []*VarDecl
	IsPrototype    bool
	Body           []Stmt
}

func (f *FuncDecl) TemplateParameters() []*TemplateParam { return f.TemplateParams }

func (f *FuncDecl) String() string {
	var params strings.Builder
	for i, p := range f.Params {
		if i > 0 {
			params.WriteString(", ")
		}
		params.WriteString(p.String())
	}

	return fmt.Sprintf("FuncDecl %s(%s) -> %s", f.name, params.String(), f.ReturnType.TypeString())
}

type StructDecl struct {
	declBase
	IsClass        bool
	TemplateParams []*TemplateParam
	Inner          []Decl
}

func (s *StructDecl) TemplateParameters() []*TemplateParam { return s.TemplateParams }
func (s *StructDecl) TypeString() string                   { return s.name }
func (s *StructDecl) isType()                              {}

func (s *StructDecl) String() string {
	kind := "struct"
	if s.IsClass {
		kind = "class"
	}
	return fmt.Sprintf("%s %s { %d members }", kind, s.name, len(s.Inner))
}

type TypedefDecl struct {
	declBase
	Base Type
}

func (t *TypedefDecl) TypeString() string { return t.name }
func (t *TypedefDecl) isType()            {}
func (t *TypedefDecl) String() string {
	return fmt.Sprintf("typedef %s %s", t.Base.TypeString(), t.name)
}

type UsingDecl struct {
	declBase
	Base Type
}

func (u *UsingDecl) TypeString() string { return u.name }
func (u *UsingDecl) isType()            {}
func (u *UsingDecl) String() string {
	return fmt.Sprintf("using %s = %s", u.name, u.Base.TypeString())
}

type UsingAliasDecl struct {
	declBase
	TemplateParams []*TemplateParam
	Base           Type
}

func (u *UsingAliasDecl) TemplateParameters() []*TemplateParam { return u.TemplateParams }
func (u *UsingAliasDecl) TypeString() string                   { return u.name }
func (u *UsingAliasDecl) isType()                              {}
func (u *UsingAliasDecl) String() string {
	return fmt.Sprintf("using %s = %s", u.name, u.Base.TypeString())
}

type TemplateParamKind int

const (
	TemplateParamType TemplateParamKind = iota
	TemplateParamInt
)

type TemplateParam struct {
	declBase
	Kind TemplateParamKind
}

func (t *TemplateParam) TypeString() string { return t.name }
func (t *TemplateParam) isType()            {}
func (t *TemplateParam) String() string {
	if t.Kind == TemplateParamInt {
		return fmt.Sprintf("template-param int %s", t.name)
	}
	return fmt.Sprintf("template-param typename %s", t.name)
}

// --- Template arguments -------------------------------------------------------

type TemplateArg struct {
	Type Type
	Expr Expr
}

func (a TemplateArg) IsType() bool { return a.Type != nil }

func (a TemplateArg) String() string {
	if a.IsType() {
		return a.Type.TypeString()
	}
	return a.Expr.String()
}

// --- Exprs -------------------------------------------------------------------

type exprBase struct {
	loc Location
}

func (e exprBase) Location() Location { return e.loc }
func (e exprBase) isStmt()            {}
func (e exprBase) isExpr()            {}

type LiteralExpr struct {
	exprBase
	Val Value
}

func (l *LiteralExpr) Operands() []Expr { return nil }
func (l *LiteralExpr) String() string   { return fmt.Sprintf("Literal(%s)", l.Val.ValueString()) }

type DeclRef struct {
	exprBase
	Target       Decl
	TemplateArgs []TemplateArg
}

func (d *DeclRef) Operands() []Expr { return nil }
func (d *DeclRef) String() string   { return fmt.Sprintf("Ref(%s)", d.Target.Name()) }

type ParenExpr struct {
	exprBase
	Inner Expr
}

func (p *ParenExpr) Operands() []Expr { return []Expr{p.Inner} }
func (p *ParenExpr) String() string   { return fmt.Sprintf("(%s)", p.Inner.String()) }

// unaryNode lets adjustUnaryPrecedence rotate UnaryExpr and CastExpr the
// same way.
type unaryNode interface {
	Expr
	subExpr() Expr
	setSub(Expr)
}

type UnaryExpr struct {
	exprBase
	Op      string
	Postfix bool
	Sub     Expr
}

func (u *UnaryExpr) Operands() []Expr { return []Expr{u.Sub} }
func (u *UnaryExpr) subExpr() Expr    { return u.Sub }
func (u *UnaryExpr) setSub(e Expr)    { u.Sub = e }
func (u *UnaryExpr) String() string {
	if u.Postfix {
		return fmt.Sprintf("(%s%s)", u.Sub.String(), u.Op)
	}
	return fmt.Sprintf("(%s%s)", u.Op, u.Sub.String())
}

// CastExpr only ever covers the C-style "(T)x" form; "T(x)" parses as a
// CtorCall instead, since the two are indistinguishable until the
// argument list is seen.
type CastExpr struct {
	exprBase
	TargetType Type
	Sub        Expr
}

func (c *CastExpr) Operands() []Expr { return []Expr{c.Sub} }
func (c *CastExpr) subExpr() Expr    { return c.Sub }
func (c *CastExpr) setSub(e Expr)    { c.Sub = e }
func (c *CastExpr) String() string {
	return fmt.Sprintf("((%s)%s)", c.TargetType.TypeString(), c.Sub.String())
}

type BinaryExpr struct {
	exprBase
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) Operands() []Expr { return []Expr{b.Left, b.Right} }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

type MemberExpr struct {
	exprBase
	Base       Expr
	Member     string
	ViaPointer bool
}

func (m *MemberExpr) Operands() []Expr { return []Expr{m.Base} }
func (m *MemberExpr) String() string {
	sep := "."
	if m.ViaPointer {
		sep = "->"
	}
	return fmt.Sprintf("%s%s%s", m.Base.String(), sep, m.Member)
}

type FuncCall struct {
	exprBase
	Callee *DeclRef
	Args   []Expr
}

func (f *FuncCall) Operands() []Expr {
	ops := make([]Expr, 0, len(f.Args)+1)
	ops = append(ops, f.Callee)
	ops = append(ops, f.Args...)
	return ops
}

func (f *FuncCall) String() string {
	var args strings.Builder
	for i, a := range f.Args {
		if i > 0 {
			args.WriteString(", ")
		}
		args.WriteString(a.String())
	}
	return fmt.Sprintf("%s(%s)", f.Callee.Target.Name(), args.String())
}

type CtorCall struct {
	exprBase
	Type Type
	Args []Expr
}

func (c *CtorCall) Operands() []Expr { return c.Args }
func (c *CtorCall) String() string {
	var args strings.Builder
	for i, a := range c.Args {
		if i > 0 {
			args.WriteString(", ")
		}
		args.WriteString(a.String())
	}
	return fmt.Sprintf("%s(%s)", c.Type.TypeString(), args.String())
}

type ReturnStmt struct {
	loc   Location
	Value Expr
}

func (r *ReturnStmt) Location() Location { return r.loc }
func (r *ReturnStmt) isStmt()            {}
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", r.Value.String())
}

// --- Namespace ---------------------------------------------------------------

type Namespace struct {
	Name     string
	Loc      Location
	Children []*Namespace
	Decls    []Decl
}

func (n *Namespace) AddChild(child *Namespace) { n.Children = append(n.Children, child) }
func (n *Namespace) AddDecl(d Decl)            { n.Decls = append(n.Decls, d) }

func (n *Namespace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "namespace %q {\n", n.Name)
	for _, d := range n.Decls {
		fmt.Fprintf(&b, "  %s\n", d.String())
	}
	for _, c := range n.Children {
		fmt.Fprintf(&b, "  %s\n", c.String())
	}
	b.WriteString("}")
	return b.String()
}
