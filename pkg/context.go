package stacklang

// Context is the symbol-resolution stack: a stack of lexical frames with
// the top at the front. Pushing duplicates the current top frame's
// visible bindings, so "inherit outer scope, then shadow" is just "add to
// the copy."
type Context struct {
	frames []*frame
}

type frame struct {
	bindings map[string]Decl
}

func NewContext() *Context {
	return &Context{frames: []*frame{{bindings: map[string]Decl{}}}}
}

func (c *Context) Push() {
	top := c.frames[0]
	dup := make(map[string]Decl, len(top.bindings))
	for k, v := range top.bindings {
		dup[k] = v
	}
	c.frames = append([]*frame{{bindings: dup}}, c.frames...)
}

func (c *Context) Pop() {
	c.frames = c.frames[1:]
}

func (c *Context) Add(d Decl) error {
	top := c.frames[0]
	if existing, exists := top.bindings[d.Name()]; exists {
		// A binding copied down by Push may be shadowed; one made in this
		// frame may not.
		inherited := len(c.frames) > 1 && c.frames[1].bindings[d.Name()] == existing
		if !inherited {
			return &DuplicateDeclError{Loc: d.Location(), Name: d.Name()}
		}
	}

	top.bindings[d.Name()] = d
	return nil
}

// AddEnclosing binds d one frame below the current top, and mirrors it
// into the top frame too, so a just-pushed body scope sees it right
// away: this is what lets a function call itself.
func (c *Context) AddEnclosing(d Decl) error {
	target := c.frames[0]
	if len(c.frames) > 1 {
		target = c.frames[1]
	}

	if _, exists := target.bindings[d.Name()]; exists {
		return &DuplicateDeclError{Loc: d.Location(), Name: d.Name()}
	}

	target.bindings[d.Name()] = d
	if target != c.frames[0] {
		c.frames[0].bindings[d.Name()] = d
	}

	return nil
}

func (c *Context) Remove(d Decl) error {
	top := c.frames[0]
	if _, exists := top.bindings[d.Name()]; !exists {
		return &ResolveError{Loc: d.Location(), Name: d.Name()}
	}

	delete(top.bindings, d.Name())
	return nil
}

// Lookup resolves an identifier against the visible frames, top-down.
func (c *Context) Lookup(id Identifier) (Decl, error) {
	name, ok := id.Simple()
	if !ok {
		return nil, &UnsupportedError{Loc: id.Loc, Msg: "qualified or global identifier lookup"}
	}

	for _, f := range c.frames {
		if d, exists := f.bindings[name]; exists {
			return d, nil
		}
	}

	return nil, &ResolveError{Loc: id.Loc, Name: name}
}

// checkpoint captures enough of the context to undo a failed speculative
// parse: frames pushed since, and decls added to what was then the top.
type checkpoint struct {
	depth       int
	topBindings map[string]Decl
}

func (c *Context) Snapshot() checkpoint {
	top := c.frames[0]
	dup := make(map[string]Decl, len(top.bindings))
	for k, v := range top.bindings {
		dup[k] = v
	}

	return checkpoint{depth: len(c.frames), topBindings: dup}
}

func (c *Context) Restore(cp checkpoint) {
	c.frames = c.frames[len(c.frames)-cp.depth:]
	c.frames[0] = &frame{bindings: cp.topBindings}
}
