package schema

import (
	"fmt"
	"strings"
)

// Kind enumerates the supported logical types of a field.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindCall  // genotype call, opaque scalar
	KindLocus // genomic locus, opaque scalar
	KindStruct
	KindArray
	KindSet
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindCall:
		return "call"
	case KindLocus:
		return "locus"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// IsPrimitive reports whether k is a scalar leaf kind.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindBool, KindInt32, KindInt64, KindFloat32, KindFloat64, KindString, KindCall, KindLocus:
		return true
	}
	return false
}

// StructField is one named member of a struct type, in declared order.
type StructField struct {
	Name string
	Type *Type
}

// Type is a recursive type descriptor. Exactly the members relevant to the
// Kind are set: Elem for arrays and sets, Key/Value for maps, Fields for
// structs.
type Type struct {
	Kind   Kind
	Elem   *Type
	Key    *Type
	Value  *Type
	Fields []StructField
}

func Bool() *Type    { return &Type{Kind: KindBool} }
func Int32() *Type   { return &Type{Kind: KindInt32} }
func Int64() *Type   { return &Type{Kind: KindInt64} }
func Float32() *Type { return &Type{Kind: KindFloat32} }
func Float64() *Type { return &Type{Kind: KindFloat64} }
func String() *Type  { return &Type{Kind: KindString} }
func Call() *Type    { return &Type{Kind: KindCall} }
func Locus() *Type   { return &Type{Kind: KindLocus} }

func ArrayOf(elem *Type) *Type   { return &Type{Kind: KindArray, Elem: elem} }
func SetOf(elem *Type) *Type     { return &Type{Kind: KindSet, Elem: elem} }
func MapOf(key, val *Type) *Type { return &Type{Kind: KindMap, Key: key, Value: val} }

func StructOf(fs ...StructField) *Type { return &Type{Kind: KindStruct, Fields: fs} }

// F is shorthand for a struct field.
func F(name string, t *Type) StructField { return StructField{Name: name, Type: t} }

// ContainerOfStruct reports whether t is an array or set whose elements are
// structs, i.e. a container whose children are evaluated per element.
func (t *Type) ContainerOfStruct() bool {
	return (t.Kind == KindArray || t.Kind == KindSet) && t.Elem != nil && t.Elem.Kind == KindStruct
}

// Error reports an input schema the builder cannot classify. It is always
// raised before any aggregation runs.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

// Field is one node of the schema tree: a field at one nesting depth.
type Field struct {
	Name     string
	Path     []string
	Type     *Type
	Parent   *Field // nil for the implicit row root
	Children []*Field

	// InElement marks fields that live inside the element type of a
	// container-of-struct and are therefore evaluated per element rather
	// than per row.
	InElement bool
}

// PathString returns the dot-joined field path.
func (f *Field) PathString() string { return strings.Join(f.Path, ".") }

// Tree is the built schema tree for one dataset. Root is the implicit row
// context: empty path, always present.
type Tree struct {
	Root *Field
	Key  []string
}

// Build converts a row type (a struct of top-level fields) and the declared
// key-field names into a schema tree. It rejects anything it cannot
// classify, such as containers of containers or of maps.
func Build(row *Type, key []string) (*Tree, error) {
	if row == nil || row.Kind != KindStruct {
		return nil, &Error{Reason: "row type must be a struct"}
	}
	root := &Field{Type: row}
	if err := buildChildren(root, row, false); err != nil {
		return nil, err
	}
	top := make(map[string]*Field, len(root.Children))
	for _, c := range root.Children {
		top[c.Name] = c
	}
	for _, k := range key {
		f, ok := top[k]
		if !ok {
			return nil, &Error{Path: k, Reason: "key field not declared at top level"}
		}
		if !f.Type.Kind.IsPrimitive() {
			return nil, &Error{Path: k, Reason: "key field must be a primitive type"}
		}
	}
	return &Tree{Root: root, Key: key}, nil
}

func buildChildren(parent *Field, st *Type, inElem bool) error {
	for _, sf := range st.Fields {
		f := &Field{
			Name:      sf.Name,
			Path:      childPath(parent, sf.Name),
			Type:      sf.Type,
			Parent:    parent,
			InElement: inElem,
		}
		if err := classify(f, inElem); err != nil {
			return err
		}
		parent.Children = append(parent.Children, f)
	}
	return nil
}

func classify(f *Field, inElem bool) error {
	t := f.Type
	switch {
	case t == nil || t.Kind == KindInvalid:
		return &Error{Path: f.PathString(), Reason: "missing or invalid type"}
	case t.Kind.IsPrimitive():
		return nil
	case t.Kind == KindStruct:
		return buildChildren(f, t, inElem)
	case t.Kind == KindMap:
		// Maps are opaque leaves: missingness is judged on the map value
		// itself, never on its keys or values.
		return nil
	case t.Kind == KindArray || t.Kind == KindSet:
		if t.Elem == nil {
			return &Error{Path: f.PathString(), Reason: "container without element type"}
		}
		if t.Elem.Kind.IsPrimitive() {
			return nil
		}
		if t.Elem.Kind == KindStruct {
			return buildChildren(f, t.Elem, true)
		}
		return &Error{Path: f.PathString(), Reason: "unsupported container element kind " + t.Elem.Kind.String()}
	default:
		return &Error{Path: f.PathString(), Reason: "unsupported kind " + t.Kind.String()}
	}
}

func childPath(parent *Field, name string) []string {
	p := make([]string, 0, len(parent.Path)+1)
	p = append(p, parent.Path...)
	return append(p, name)
}

// Walk visits every field depth-first in declared order, a parent before its
// children. The root itself is not visited.
func (t *Tree) Walk(fn func(*Field)) {
	var rec func(*Field)
	rec = func(f *Field) {
		for _, c := range f.Children {
			fn(c)
			rec(c)
		}
	}
	rec(t.Root)
}

// Fields returns every field in walk order.
func (t *Tree) Fields() []*Field {
	var out []*Field
	t.Walk(func(f *Field) { out = append(out, f) })
	return out
}
