package stacklang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextPushInheritsThenShadows(t *testing.T) {
	ctx := NewContext()
	outer := &VarDecl{declBase: declBase{name: "x"}, Type: IntType{}}
	assert.NoError(t, ctx.Add(outer))

	ctx.Push()
	got, err := ctx.Lookup(Identifier{Parts: []string{"x"}})
	assert.NoError(t, err)
	assert.Same(t, outer, got)

	inner := &VarDecl{declBase: declBase{name: "x"}, Type: IntType{}}
	assert.NoError(t, ctx.Add(inner))
	got, err = ctx.Lookup(Identifier{Parts: []string{"x"}})
	assert.NoError(t, err)
	assert.Same(t, inner, got)

	ctx.Pop()
	got, err = ctx.Lookup(Identifier{Parts: []string{"x"}})
	assert.NoError(t, err)
	assert.Same(t, outer, got)
}

func TestContextAddDuplicateFails(t *testing.T) {
	ctx := NewContext()
	assert.NoError(t, ctx.Add(&VarDecl{declBase: declBase{name: "x"}, Type: IntType{}}))

	err := ctx.Add(&VarDecl{declBase: declBase{name: "x"}, Type: IntType{}})
	assert.Error(t, err)
	assert.IsType(t, &DuplicateDeclError{}, err)
}

func TestContextLookupUndefined(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.Lookup(Identifier{Parts: []string{"missing"}})
	assert.Error(t, err)
	assert.IsType(t, &ResolveError{}, err)
}

func TestContextLookupQualifiedUnsupported(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.Lookup(Identifier{Parts: []string{"A", "B"}})
	assert.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)
}

func TestContextSnapshotRestoreUndoesAddsAndPushes(t *testing.T) {
	ctx := NewContext()
	outer := &VarDecl{declBase: declBase{name: "x"}, Type: IntType{}}
	assert.NoError(t, ctx.Add(outer))

	cp := ctx.Snapshot()

	ctx.Push()
	provisional := &VarDecl{declBase: declBase{name: "y"}, Type: IntType{}}
	assert.NoError(t, ctx.Add(provisional))

	ctx.Restore(cp)

	_, err := ctx.Lookup(Identifier{Parts: []string{"y"}})
	assert.Error(t, err)

	got, err := ctx.Lookup(Identifier{Parts: []string{"x"}})
	assert.NoError(t, err)
	assert.Same(t, outer, got)
}

func TestContextAddEnclosingVisibleInCurrentAndAfterPop(t *testing.T) {
	ctx := NewContext()
	ctx.Push()

	fd := &FuncDecl{declBase: declBase{name: "fact"}}
	assert.NoError(t, ctx.AddEnclosing(fd))

	got, err := ctx.Lookup(Identifier{Parts: []string{"fact"}})
	assert.NoError(t, err)
	assert.Same(t, fd, got)

	ctx.Pop()
	got, err = ctx.Lookup(Identifier{Parts: []string{"fact"}})
	assert.NoError(t, err)
	assert.Same(t, fd, got)
}
