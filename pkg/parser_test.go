package stacklang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSimpleAddition(t *testing.T) {
	ns, err := Parse([]byte("int x = 1 + 2;"))
	assert.NoError(t, err)
	assert.Len(t, ns.Decls, 1)

	vd, ok := ns.Decls[0].(*VarDecl)
	assert.True(t, ok)
	assert.Equal(t, VarInitEquals, vd.InitKind)

	bin, ok := vd.InitExpr.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	assertIntLiteral(t, bin.Left, 1)
	assertIntLiteral(t, bin.Right, 2)
}

// TestParsePrecedenceRotation covers "1 * 2 + 3": a naive right-recursive
// build without rotation would nest as 1 * (2 + 3); newBinaryExpr must
// rotate it back to (1 * 2) + 3.
func TestParsePrecedenceRotation(t *testing.T) {
	ns, err := Parse([]byte("int x = 1 * 2 + 3;"))
	assert.NoError(t, err)

	vd := ns.Decls[0].(*VarDecl)
	root, ok := vd.InitExpr.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, "+", root.Op)

	left, ok := root.Left.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, "*", left.Op)
	assertIntLiteral(t, left.Left, 1)
	assertIntLiteral(t, left.Right, 2)
	assertIntLiteral(t, root.Right, 3)
}

// TestParseCastBindsTighterThanMultiply covers "(int) a * b": without
// adjustUnaryPrecedence's rotation, the cast's operand would swallow the
// whole "a * b" instead of binding to just "a".
func TestParseCastBindsTighterThanMultiply(t *testing.T) {
	ns, err := Parse([]byte("int a = 0; int b = 0; int x = (int) a * b;"))
	assert.NoError(t, err)

	vd := ns.Decls[2].(*VarDecl)
	root, ok := vd.InitExpr.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, "*", root.Op)

	cast, ok := root.Left.(*CastExpr)
	assert.True(t, ok)
	assert.Equal(t, "int", cast.TargetType.TypeString())

	ref, ok := cast.Sub.(*DeclRef)
	assert.True(t, ok)
	assert.Equal(t, "a", ref.Target.Name())

	rhs, ok := root.Right.(*DeclRef)
	assert.True(t, ok)
	assert.Equal(t, "b", rhs.Target.Name())
}

func TestParseCastOfUnaryMinus(t *testing.T) {
	ns, err := Parse([]byte("int x = (int)-1;"))
	assert.NoError(t, err)

	vd := ns.Decls[0].(*VarDecl)
	cast, ok := vd.InitExpr.(*CastExpr)
	assert.True(t, ok)

	u, ok := cast.Sub.(*UnaryExpr)
	assert.True(t, ok)
	assert.Equal(t, "-", u.Op)
	assert.False(t, u.Postfix)
	assertIntLiteral(t, u.Sub, 1)
}

func TestParseTemplatedFunctionCall(t *testing.T) {
	src := `
		template<int N> int fact(int n) { return n; }
		int main() { return fact<5>(3); }
	`
	ns, err := Parse([]byte(src))
	assert.NoError(t, err)
	assert.Len(t, ns.Decls, 2)

	main := ns.Decls[1].(*FuncDecl)
	ret := main.Body[0].(*ReturnStmt)
	call, ok := ret.Value.(*FuncCall)
	assert.True(t, ok)
	assert.Equal(t, "fact", call.Callee.Target.Name())
	assert.Len(t, call.Callee.TemplateArgs, 1)
	assertIntLiteral(t, call.Callee.TemplateArgs[0].Expr, 5)
	assert.Len(t, call.Args, 1)
	assertIntLiteral(t, call.Args[0], 3)
}

func TestParseRecursiveFunctionCallsItself(t *testing.T) {
	ns, err := Parse([]byte("int fact(int n) { return fact(n); }"))
	assert.NoError(t, err)

	fd := ns.Decls[0].(*FuncDecl)
	ret := fd.Body[0].(*ReturnStmt)
	call, ok := ret.Value.(*FuncCall)
	assert.True(t, ok)
	assert.Same(t, fd, call.Callee.Target)
}

func TestParseStructMemberAccess(t *testing.T) {
	src := `
		struct Point { int x; int y; };
		int main() {
			Point p;
			return p.x;
		}
	`
	ns, err := Parse([]byte(src))
	assert.NoError(t, err)

	sd := ns.Decls[0].(*StructDecl)
	assert.Equal(t, "Point", sd.Name())
	assert.Len(t, sd.Inner, 2)

	main := ns.Decls[1].(*FuncDecl)
	pDecl := main.Body[0].(*VarDecl)
	assert.Same(t, sd, pDecl.Type)

	ret := main.Body[1].(*ReturnStmt)
	member, ok := ret.Value.(*MemberExpr)
	assert.True(t, ok)
	assert.Equal(t, "x", member.Member)
	assert.False(t, member.ViaPointer)

	base, ok := member.Base.(*DeclRef)
	assert.True(t, ok)
	assert.Same(t, pDecl, base.Target)
}

func TestParseArityMismatchFails(t *testing.T) {
	src := `
		int add(int a, int b) { return a; }
		int main() { return add(1); }
	`
	_, err := Parse([]byte(src))
	assert.Error(t, err)
	assert.IsType(t, &ArityError{}, err)

	arityErr := err.(*ArityError)
	assert.Equal(t, "add", arityErr.Callee)
	assert.Equal(t, 2, arityErr.Want)
	assert.Equal(t, 1, arityErr.Got)
}

func TestParseUndeclaredIdentifierFails(t *testing.T) {
	_, err := Parse([]byte("int x = y;"))
	assert.Error(t, err)
	assert.IsType(t, &ResolveError{}, err)
}

func TestParseDuplicateParamNameFails(t *testing.T) {
	_, err := Parse([]byte("int f(int a, int a) { return a; }"))
	assert.Error(t, err)
	assert.IsType(t, &DuplicateDeclError{}, err)
}

// TestParsePrototypeThenDefinitionIsUnmerged: a prototype followed by its
// own definition is refused with an UnsupportedError rather than merged
// into one FuncDecl, as the UnsupportedError doc comment in errors.go says.
func TestParsePrototypeThenDefinitionIsUnmerged(t *testing.T) {
	src := `
		int helper(int n);
		int helper(int n) { return n; }
	`
	_, err := Parse([]byte(src))
	assert.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)
}

func TestParseNestedNamespace(t *testing.T) {
	ns, err := Parse([]byte("namespace outer { int x = 1; }"))
	assert.NoError(t, err)
	assert.Len(t, ns.Children, 1)
	assert.Equal(t, "outer", ns.Children[0].Name)
	assert.Len(t, ns.Children[0].Decls, 1)
}

func assertIntLiteral(t *testing.T, e Expr, want int64) {
	t.Helper()
	lit, ok := e.(*LiteralExpr)
	if !assert.True(t, ok, "expected *LiteralExpr, got %T", e) {
		return
	}
	iv, ok := lit.Val.(IntValue)
	if !assert.True(t, ok, "expected IntValue, got %T", lit.Val) {
		return
	}
	assert.Equal(t, want, iv.V)
}
