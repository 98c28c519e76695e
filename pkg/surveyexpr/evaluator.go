package surveyexpr

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// missing marks an unresolved field reference. It stringifies as "undefined"
// and counts as empty/falsy, mirroring how absent answers behaved upstream.
type missing struct{}

// Evaluate parses and evaluates the expression against the answer map.
// The result is a bool, float64 or string depending on the expression.
func Evaluate(expression string, data map[string]interface{}) (interface{}, error) {
	node, err := Parse(expression)
	if err != nil {
		return nil, err
	}
	return evalNode(node, data)
}

// EvaluateBool evaluates the expression as a condition. An empty expression is
// always true (no condition means the gate is open); any parse or evaluation
// error yields false, so broken conditions fail closed.
func EvaluateBool(expression string, data map[string]interface{}) bool {
	if strings.TrimSpace(expression) == "" {
		return true
	}
	val, err := Evaluate(expression, data)
	if err != nil {
		slog.Warn("expression evaluation failed", slog.String("expression", expression), slog.String("error", err.Error()))
		return false
	}
	return isTruthy(val)
}

// EvaluateNumber evaluates the expression and coerces the result to a number.
func EvaluateNumber(expression string, data map[string]interface{}) (float64, error) {
	val, err := Evaluate(expression, data)
	if err != nil {
		return 0, err
	}
	num, ok := toNumber(val)
	if !ok {
		return 0, fmt.Errorf("expression result is not numeric: %v", val)
	}
	return num, nil
}

func evalNode(node Node, data map[string]interface{}) (interface{}, error) {
	switch n := node.(type) {
	case Literal:
		return n.Value, nil
	case FieldRef:
		return resolvePath(n.Path, data), nil
	case Unary:
		return evalUnary(n, data)
	case Binary:
		return evalBinary(n, data)
	case Postfix:
		val, err := evalNode(n.X, data)
		if err != nil {
			return nil, err
		}
		if n.Op == "empty" {
			return isEmpty(val), nil
		}
		return !isEmpty(val), nil
	case Call:
		return evalCall(n, data)
	default:
		return nil, fmt.Errorf("unknown expression node %T", node)
	}
}

func evalUnary(n Unary, data map[string]interface{}) (interface{}, error) {
	val, err := evalNode(n.X, data)
	if err != nil {
		return nil, err
	}
	if n.Op == "not" {
		return !isTruthy(val), nil
	}
	num, ok := toNumber(val)
	if !ok {
		return nil, fmt.Errorf("cannot negate non-numeric value: %v", val)
	}
	return -num, nil
}

func evalBinary(n Binary, data map[string]interface{}) (interface{}, error) {
	// short-circuit logical operators
	if n.Op == "and" || n.Op == "or" {
		left, err := evalNode(n.Left, data)
		if err != nil {
			return nil, err
		}
		if n.Op == "and" && !isTruthy(left) {
			return false, nil
		}
		if n.Op == "or" && isTruthy(left) {
			return true, nil
		}
		right, err := evalNode(n.Right, data)
		if err != nil {
			return nil, err
		}
		return isTruthy(right), nil
	}

	left, err := evalNode(n.Left, data)
	if err != nil {
		return nil, err
	}
	right, err := evalNode(n.Right, data)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "=":
		return looseEquals(left, right), nil
	case "<>":
		return !looseEquals(left, right), nil
	case "contains":
		return strings.Contains(stringify(left), stringify(right)), nil
	case "notcontains":
		return !strings.Contains(stringify(left), stringify(right)), nil
	case "<", "<=", ">", ">=":
		ln, lok := toNumber(left)
		rn, rok := toNumber(right)
		if !lok || !rok {
			return nil, fmt.Errorf("comparison %q needs numeric operands", n.Op)
		}
		switch n.Op {
		case "<":
			return ln < rn, nil
		case "<=":
			return ln <= rn, nil
		case ">":
			return ln > rn, nil
		default:
			return ln >= rn, nil
		}
	case "+":
		ln, lok := toNumber(left)
		rn, rok := toNumber(right)
		if lok && rok {
			return ln + rn, nil
		}
		return stringify(left) + stringify(right), nil
	case "-", "*", "/":
		ln, lok := toNumber(left)
		rn, rok := toNumber(right)
		if !lok || !rok {
			return nil, fmt.Errorf("operator %q needs numeric operands", n.Op)
		}
		switch n.Op {
		case "-":
			return ln - rn, nil
		case "*":
			return ln * rn, nil
		default:
			if rn == 0 {
				return nil, errors.New("division by zero")
			}
			return ln / rn, nil
		}
	default:
		return nil, fmt.Errorf("unknown operator %q", n.Op)
	}
}

func evalCall(n Call, data map[string]interface{}) (interface{}, error) {
	switch n.Name {
	case "today":
		if len(n.Args) != 0 {
			return nil, errors.New("today() takes no arguments")
		}
		return Now().Format("2006-01-02"), nil
	case "age":
		if len(n.Args) != 1 {
			return nil, errors.New("age() takes one argument")
		}
		val, err := evalNode(n.Args[0], data)
		if err != nil {
			return nil, err
		}
		return ageFromDateString(stringify(val))
	case "sum":
		total := 0.0
		for _, arg := range n.Args {
			val, err := evalNode(arg, data)
			if err != nil {
				return nil, err
			}
			if num, ok := toNumber(val); ok {
				total += num
			}
		}
		return total, nil
	case "iif":
		if len(n.Args) != 3 {
			return nil, errors.New("iif() takes three arguments")
		}
		cond, err := evalNode(n.Args[0], data)
		if err != nil {
			return nil, err
		}
		if isTruthy(cond) {
			return evalNode(n.Args[1], data)
		}
		return evalNode(n.Args[2], data)
	default:
		return nil, fmt.Errorf("unknown function %q", n.Name)
	}
}

// Now is replaceable for tests.
var Now = time.Now

func ageFromDateString(dateStr string) (float64, error) {
	if len(dateStr) < 4 {
		return 0, fmt.Errorf("cannot derive age from %q", dateStr)
	}
	year, err := strconv.Atoi(dateStr[:4])
	if err != nil {
		return 0, fmt.Errorf("cannot derive age from %q", dateStr)
	}
	return float64(Now().Year() - year), nil
}

func resolvePath(path []PathSegment, data map[string]interface{}) interface{} {
	var current interface{} = data
	for _, seg := range path {
		if seg.IsIdx {
			arr, ok := current.([]interface{})
			if !ok || seg.Index < 0 || seg.Index >= len(arr) {
				return missing{}
			}
			current = arr[seg.Index]
			continue
		}
		obj, ok := current.(map[string]interface{})
		if !ok {
			return missing{}
		}
		val, found := obj[seg.Name]
		if !found {
			return missing{}
		}
		current = val
	}
	return current
}

func looseEquals(a, b interface{}) bool {
	return stringify(a) == stringify(b)
}

func stringify(val interface{}) string {
	switch v := val.(type) {
	case nil, missing:
		return "undefined"
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toNumber(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return num, true
	default:
		return 0, false
	}
}

func isTruthy(val interface{}) bool {
	switch v := val.(type) {
	case nil, missing:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

func isEmpty(val interface{}) bool {
	switch v := val.(type) {
	case nil, missing:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	default:
		return false
	}
}
