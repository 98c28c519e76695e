package surveyexpr

import (
	"strconv"
	"strings"
)

// Node is a parsed expression tree node.
type Node interface {
	node()
}

// Literal holds a constant value (float64, string or bool).
type Literal struct {
	Value interface{}
}

// FieldRef references an answer map entry, e.g. {name}, {a.b} or {a[0].b}.
type FieldRef struct {
	Path []PathSegment
}

type PathSegment struct {
	Name  string
	Index int
	IsIdx bool
}

// Unary covers prefix operators: "-" and "not".
type Unary struct {
	Op string
	X  Node
}

// Binary covers infix operators: and, or, =, <>, <, <=, >, >=,
// contains, notcontains, +, -, *, /.
type Binary struct {
	Op    string
	Left  Node
	Right Node
}

// Postfix covers the "empty" and "notempty" tests.
type Postfix struct {
	Op string
	X  Node
}

// Call is a function invocation: today(), age(x), sum(...), iif(c,a,b).
type Call struct {
	Name string
	Args []Node
}

func (Literal) node()  {}
func (FieldRef) node() {}
func (Unary) node()    {}
func (Binary) node()   {}
func (Postfix) node()  {}
func (Call) node()     {}

// String reassembles the dotted/indexed form of the reference, without braces.
func (f FieldRef) String() string {
	var sb strings.Builder
	for i, seg := range f.Path {
		if seg.IsIdx {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(seg.Index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.Name)
	}
	return sb.String()
}
