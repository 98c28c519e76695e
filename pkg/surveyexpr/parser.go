package surveyexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts an expression string into its tree form.
//
// Grammar, lowest precedence first:
//
//	expr        := orExpr
//	orExpr      := andExpr ("or" andExpr)*
//	andExpr     := comparison ("and" comparison)*
//	comparison  := additive (("=" | "<>" | "<" | "<=" | ">" | ">=" |
//	               "contains" | "notcontains") additive)?
//	additive    := multiplicative (("+" | "-") multiplicative)*
//	multiplicative := unary (("*" | "/") unary)*
//	unary       := ("-" | "not") unary | postfix
//	postfix     := primary ("empty" | "notempty")?
//	primary     := number | string | "true" | "false" | fieldRef |
//	               ident "(" args ")" | "(" expr ")"
func Parse(input string) (Node, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().kind != tokenEOF {
		return nil, fmt.Errorf("unexpected token %q at position %d", p.current().text, p.current().pos)
	}
	return node, nil
}

type parser struct {
	tokens []token
	idx    int
}

func (p *parser) current() token {
	return p.tokens[p.idx]
}

func (p *parser) advance() token {
	t := p.tokens[p.idx]
	if p.idx < len(p.tokens)-1 {
		p.idx++
	}
	return t
}

func (p *parser) matchIdent(words ...string) (string, bool) {
	t := p.current()
	if t.kind != tokenIdent {
		return "", false
	}
	lowered := strings.ToLower(t.text)
	for _, w := range words {
		if lowered == w {
			p.advance()
			return w, true
		}
	}
	return "", false
}

func (p *parser) matchOperator(ops ...string) (string, bool) {
	t := p.current()
	if t.kind != tokenOperator {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.advance()
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.matchIdent("or"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "or", Left: left, Right: right}
	}
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.matchIdent("and"); !ok {
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "and", Left: left, Right: right}
	}
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := p.matchOperator("=", "<>", "<=", ">=", "<", ">")
	if !ok {
		op, ok = p.matchIdent("contains", "notcontains")
	}
	if !ok {
		return left, nil
	}
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return Binary{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOperator("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOperator("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if op, ok := p.matchOperator("-"); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, X: x}, nil
	}
	if _, ok := p.matchIdent("not"); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: "not", X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if op, ok := p.matchIdent("empty", "notempty"); ok {
		return Postfix{Op: op, X: x}, nil
	}
	return x, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.current()
	switch t.kind {
	case tokenNumber:
		p.advance()
		return Literal{Value: t.num}, nil
	case tokenString:
		p.advance()
		return Literal{Value: t.text}, nil
	case tokenField:
		p.advance()
		path, err := parseFieldPath(t.text)
		if err != nil {
			return nil, err
		}
		return FieldRef{Path: path}, nil
	case tokenLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current().kind != tokenRParen {
			return nil, fmt.Errorf("missing closing parenthesis at position %d", p.current().pos)
		}
		p.advance()
		return inner, nil
	case tokenIdent:
		lowered := strings.ToLower(t.text)
		if lowered == "true" {
			p.advance()
			return Literal{Value: true}, nil
		}
		if lowered == "false" {
			p.advance()
			return Literal{Value: false}, nil
		}
		p.advance()
		if p.current().kind != tokenLParen {
			return nil, fmt.Errorf("unexpected identifier %q at position %d", t.text, t.pos)
		}
		p.advance()
		args := []Node{}
		if p.current().kind != tokenRParen {
			for {
				arg, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.current().kind != tokenComma {
					break
				}
				p.advance()
			}
		}
		if p.current().kind != tokenRParen {
			return nil, fmt.Errorf("missing closing parenthesis in call to %q", t.text)
		}
		p.advance()
		return Call{Name: lowered, Args: args}, nil
	default:
		return nil, fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
	}
}

// parseFieldPath splits "a.b[0].c" into its segments.
func parseFieldPath(raw string) ([]PathSegment, error) {
	segments := []PathSegment{}
	rest := raw
	for rest != "" {
		if rest[0] == '.' {
			rest = rest[1:]
			if rest == "" {
				return nil, fmt.Errorf("invalid field path %q", raw)
			}
			continue
		}
		if rest[0] == '[' {
			close := strings.IndexByte(rest, ']')
			if close < 0 {
				return nil, fmt.Errorf("invalid field path %q", raw)
			}
			idx, err := strconv.Atoi(rest[1:close])
			if err != nil {
				return nil, fmt.Errorf("invalid index in field path %q", raw)
			}
			segments = append(segments, PathSegment{Index: idx, IsIdx: true})
			rest = rest[close+1:]
			continue
		}
		end := strings.IndexAny(rest, ".[")
		if end < 0 {
			end = len(rest)
		}
		segments = append(segments, PathSegment{Name: rest[:end]})
		rest = rest[end:]
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("invalid field path %q", raw)
	}
	return segments, nil
}
