package surveyexpr

// FieldNames returns the top-level answer-map keys an expression reads.
// Unparseable expressions reference nothing.
func FieldNames(expression string) []string {
	node, err := Parse(expression)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	names := []string{}
	collectFieldNames(node, seen, &names)
	return names
}

func collectFieldNames(node Node, seen map[string]bool, names *[]string) {
	switch n := node.(type) {
	case FieldRef:
		if len(n.Path) == 0 || n.Path[0].IsIdx {
			return
		}
		name := n.Path[0].Name
		if !seen[name] {
			seen[name] = true
			*names = append(*names, name)
		}
	case Unary:
		collectFieldNames(n.X, seen, names)
	case Binary:
		collectFieldNames(n.Left, seen, names)
		collectFieldNames(n.Right, seen, names)
	case Postfix:
		collectFieldNames(n.X, seen, names)
	case Call:
		for _, arg := range n.Args {
			collectFieldNames(arg, seen, names)
		}
	}
}
