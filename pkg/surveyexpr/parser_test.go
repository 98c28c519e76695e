package surveyexpr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTreeShapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Node
	}{
		{
			name:     "number literal",
			input:    "42",
			expected: Literal{Value: 42.0},
		},
		{
			name:     "string literal with double quotes",
			input:    `"hello"`,
			expected: Literal{Value: "hello"},
		},
		{
			name:  "loose equality",
			input: "{a} = 'x'",
			expected: Binary{
				Op:    "=",
				Left:  FieldRef{Path: []PathSegment{{Name: "a"}}},
				Right: Literal{Value: "x"},
			},
		},
		{
			name:  "double equals is the same operator",
			input: "{a} == 'x'",
			expected: Binary{
				Op:    "=",
				Left:  FieldRef{Path: []PathSegment{{Name: "a"}}},
				Right: Literal{Value: "x"},
			},
		},
		{
			name:  "multiplication binds tighter than addition",
			input: "1 + 2 * 3",
			expected: Binary{
				Op:   "+",
				Left: Literal{Value: 1.0},
				Right: Binary{
					Op:    "*",
					Left:  Literal{Value: 2.0},
					Right: Literal{Value: 3.0},
				},
			},
		},
		{
			name:  "and binds tighter than or",
			input: "{a} empty or {b} empty and {c} empty",
			expected: Binary{
				Op:   "or",
				Left: Postfix{Op: "empty", X: FieldRef{Path: []PathSegment{{Name: "a"}}}},
				Right: Binary{
					Op:    "and",
					Left:  Postfix{Op: "empty", X: FieldRef{Path: []PathSegment{{Name: "b"}}}},
					Right: Postfix{Op: "empty", X: FieldRef{Path: []PathSegment{{Name: "c"}}}},
				},
			},
		},
		{
			name:  "nested field path with index",
			input: "{a.b[0].c} notempty",
			expected: Postfix{
				Op: "notempty",
				X: FieldRef{Path: []PathSegment{
					{Name: "a"},
					{Name: "b"},
					{Index: 0, IsIdx: true},
					{Name: "c"},
				}},
			},
		},
		{
			name:  "function call",
			input: "sum({a}, {b})",
			expected: Call{
				Name: "sum",
				Args: []Node{
					FieldRef{Path: []PathSegment{{Name: "a"}}},
					FieldRef{Path: []PathSegment{{Name: "b"}}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.input)
			if err != nil {
				t.Errorf("unexpected error: %s", err.Error())
				return
			}
			if diff := cmp.Diff(tt.expected, node); diff != "" {
				t.Errorf("unexpected tree (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"{a} =",
		"{unclosed",
		"'unterminated",
		"sum({a}",
		"1 + + 2",
		"{a} = 'x' garbage",
		"{}",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("expected parse error for %q", input)
			}
		})
	}
}
