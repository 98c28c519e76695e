package surveyexpr

import (
	"fmt"
	"testing"
	"time"
)

func TestEvaluateEquality(t *testing.T) {
	t.Run("loose equality between number and string", func(t *testing.T) {
		val, err := Evaluate("{a} = '1'", map[string]interface{}{"a": 1.0})
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("inequality", func(t *testing.T) {
		val, err := Evaluate("{a} <> 'x'", map[string]interface{}{"a": "y"})
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("missing field is not equal to literal", func(t *testing.T) {
		val, err := Evaluate("{missingField} = 'x'", map[string]interface{}{})
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != false {
			t.Errorf("unexpected value: %v", val)
		}
	})
}

func TestEvaluateContains(t *testing.T) {
	data := map[string]interface{}{"x": "xabc"}

	t.Run("contains", func(t *testing.T) {
		val, err := Evaluate("{x} contains 'ab'", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("notcontains", func(t *testing.T) {
		val, err := Evaluate("{x} notcontains 'ab'", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != false {
			t.Errorf("unexpected value: %v", val)
		}
	})
}

func TestEvaluateEmpty(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		data     map[string]interface{}
		expected bool
	}{
		{name: "missing value is empty", expr: "{a} empty", data: map[string]interface{}{}, expected: true},
		{name: "empty string is empty", expr: "{a} empty", data: map[string]interface{}{"a": ""}, expected: true},
		{name: "empty array is empty", expr: "{a} empty", data: map[string]interface{}{"a": []interface{}{}}, expected: true},
		{name: "empty object is empty", expr: "{a} empty", data: map[string]interface{}{"a": map[string]interface{}{}}, expected: true},
		{name: "zero is not empty", expr: "{a} empty", data: map[string]interface{}{"a": 0.0}, expected: false},
		{name: "notempty on present value", expr: "{a} notempty", data: map[string]interface{}{"a": "v"}, expected: true},
		{name: "notempty on missing value", expr: "{a} notempty", data: map[string]interface{}{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := Evaluate(tt.expr, tt.data)
			if err != nil {
				t.Errorf("unexpected error: %s", err.Error())
				return
			}
			if val != tt.expected {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, val, tt.expected)
			}
		})
	}
}

func TestEvaluateLogicalOperators(t *testing.T) {
	data := map[string]interface{}{"a": "1", "b": "2"}

	t.Run("and", func(t *testing.T) {
		val, err := Evaluate("{a} = '1' and {b} = '2'", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("or with one false branch", func(t *testing.T) {
		val, err := Evaluate("{a} = 'no' or {b} = '2'", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("not", func(t *testing.T) {
		val, err := Evaluate("not ({a} = '1')", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != false {
			t.Errorf("unexpected value: %v", val)
		}
	})
}

func TestEvaluateArithmetic(t *testing.T) {
	data := map[string]interface{}{"a": 2.0, "b": 3.0}

	t.Run("precedence", func(t *testing.T) {
		val, err := Evaluate("{a} + {b} * 2", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != 8.0 {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("comparison", func(t *testing.T) {
		val, err := Evaluate("{a} * {b} >= 6", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("division by zero fails", func(t *testing.T) {
		_, err := Evaluate("{a} / 0", data)
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestEvaluateFunctions(t *testing.T) {
	originalNow := Now
	Now = func() time.Time {
		return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	}
	defer func() { Now = originalNow }()

	t.Run("today", func(t *testing.T) {
		val, err := Evaluate("today()", nil)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != "2024-05-10" {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("age", func(t *testing.T) {
		val, err := Evaluate("age({birthdate})", map[string]interface{}{"birthdate": "1990-01-20"})
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != 34.0 {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("sum ignores non-numeric fields", func(t *testing.T) {
		val, err := Evaluate("sum({a},{b},{c})", map[string]interface{}{"a": 2.0, "b": 3.0, "c": "abc"})
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != 5.0 {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("iif", func(t *testing.T) {
		val, err := Evaluate("iif({a} = 1, 'yes', 'no')", map[string]interface{}{"a": 1.0})
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != "yes" {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("unknown function fails", func(t *testing.T) {
		_, err := Evaluate("nope()", nil)
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestEvaluateNestedPaths(t *testing.T) {
	data := map[string]interface{}{
		"address": map[string]interface{}{"city": "Berlin"},
		"tags":    []interface{}{"red", "green"},
	}

	t.Run("dotted path", func(t *testing.T) {
		val, err := Evaluate("{address.city} = 'Berlin'", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("array index", func(t *testing.T) {
		val, err := Evaluate("{tags[1]} = 'green'", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})

	t.Run("out of range index is missing", func(t *testing.T) {
		val, err := Evaluate("{tags[5]} empty", data)
		if err != nil {
			t.Errorf("unexpected error: %s", err.Error())
			return
		}
		if val != true {
			t.Errorf("unexpected value: %v", val)
		}
	})
}

func TestEvaluateBool(t *testing.T) {
	t.Run("empty expression is true", func(t *testing.T) {
		if !EvaluateBool("", nil) {
			t.Error("expected true")
		}
	})

	t.Run("whitespace expression is true", func(t *testing.T) {
		if !EvaluateBool("   ", nil) {
			t.Error("expected true")
		}
	})

	t.Run("broken expression fails closed", func(t *testing.T) {
		if EvaluateBool("{a} = ", map[string]interface{}{"a": "1"}) {
			t.Error("expected false")
		}
	})

	t.Run("missing field comparison fails closed", func(t *testing.T) {
		if EvaluateBool("{missingField} = 'x'", map[string]interface{}{}) {
			t.Error("expected false")
		}
	})
}

func TestEvaluateNumberCoercion(t *testing.T) {
	val, err := EvaluateNumber("sum({a},{b})", map[string]interface{}{"a": "2", "b": 3.0})
	if err != nil {
		t.Errorf("unexpected error: %s", err.Error())
		return
	}
	if val != 5.0 {
		t.Errorf("unexpected value: %v", val)
	}

	_, err = EvaluateNumber("'abc'", nil)
	if err == nil {
		t.Error("expected error")
	}
}

func ExampleEvaluate() {
	val, _ := Evaluate("iif({score} > 10, 'high', 'low')", map[string]interface{}{"score": 12.0})
	fmt.Println(val)
	// Output: high
}
