package stacklang

// NamespaceDump is a YAML-friendly rendering of a Namespace: declBase's
// fields are unexported, so a plain yaml.Marshal would drop them.
type NamespaceDump struct {
	Name     string          `yaml:"name"`
	Decls    []DeclDump      `yaml:"decls,omitempty"`
	Children []NamespaceDump `yaml:"children,omitempty"`
}

type DeclDump struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	Repr string `yaml:"repr"`
}

func DumpNamespace(ns *Namespace) NamespaceDump {
	d := NamespaceDump{Name: ns.Name}

	for _, decl := range ns.Decls {
		d.Decls = append(d.Decls, DeclDump{
			Kind: declKind(decl),
			Name: decl.Name(),
			Repr: decl.String(),
		})
	}

	for _, c := range ns.Children {
		d.Children = append(d.Children, DumpNamespace(c))
	}

	return d
}

func declKind(d Decl) string {
	switch d.(type) {
	case *VarDecl:
		return "var"
	case *FuncDecl:
		return "func"
	case *StructDecl:
		return "struct"
	case *TypedefDecl:
		return "typedef"
	case *UsingDecl:
		return "using"
	case *UsingAliasDecl:
		return "using-alias"
	case *TemplateParam:
		return "template-param"
	default:
		return "decl"
	}
}
