package surveyexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenString
	tokenIdent
	tokenField
	tokenOperator
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

type lexer struct {
	input  string
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: input}
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '{':
			if err := l.scanField(); err != nil {
				return nil, err
			}
		case c == '\'' || c == '"':
			if err := l.scanString(c); err != nil {
				return nil, err
			}
		case c >= '0' && c <= '9':
			if err := l.scanNumber(); err != nil {
				return nil, err
			}
		case c == '(':
			l.emit(token{kind: tokenLParen, text: "(", pos: l.pos})
			l.pos++
		case c == ')':
			l.emit(token{kind: tokenRParen, text: ")", pos: l.pos})
			l.pos++
		case c == ',':
			l.emit(token{kind: tokenComma, text: ",", pos: l.pos})
			l.pos++
		case c == '<':
			if l.peekAt(1) == '>' {
				l.emit(token{kind: tokenOperator, text: "<>", pos: l.pos})
				l.pos += 2
			} else if l.peekAt(1) == '=' {
				l.emit(token{kind: tokenOperator, text: "<=", pos: l.pos})
				l.pos += 2
			} else {
				l.emit(token{kind: tokenOperator, text: "<", pos: l.pos})
				l.pos++
			}
		case c == '>':
			if l.peekAt(1) == '=' {
				l.emit(token{kind: tokenOperator, text: ">=", pos: l.pos})
				l.pos += 2
			} else {
				l.emit(token{kind: tokenOperator, text: ">", pos: l.pos})
				l.pos++
			}
		case c == '=':
			// single and double '=' are the same loose equality
			if l.peekAt(1) == '=' {
				l.pos++
			}
			l.emit(token{kind: tokenOperator, text: "=", pos: l.pos})
			l.pos++
		case c == '!':
			if l.peekAt(1) != '=' {
				return nil, fmt.Errorf("unexpected character %q at position %d", c, l.pos)
			}
			l.emit(token{kind: tokenOperator, text: "<>", pos: l.pos})
			l.pos += 2
		case c == '+' || c == '-' || c == '*' || c == '/':
			l.emit(token{kind: tokenOperator, text: string(c), pos: l.pos})
			l.pos++
		case isIdentStart(rune(c)):
			l.scanIdent()
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", c, l.pos)
		}
	}
	l.emit(token{kind: tokenEOF, pos: l.pos})
	return l.tokens, nil
}

func (l *lexer) emit(t token) {
	l.tokens = append(l.tokens, t)
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

// scanField reads a {field.path[0]} reference; the braces are consumed and the
// raw path is kept as the token text.
func (l *lexer) scanField() error {
	start := l.pos
	end := strings.IndexByte(l.input[l.pos:], '}')
	if end < 0 {
		return fmt.Errorf("unterminated field reference at position %d", start)
	}
	path := strings.TrimSpace(l.input[l.pos+1 : l.pos+end])
	if path == "" {
		return fmt.Errorf("empty field reference at position %d", start)
	}
	l.emit(token{kind: tokenField, text: path, pos: start})
	l.pos += end + 1
	return nil
}

func (l *lexer) scanString(quote byte) error {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == quote {
			l.pos++
			l.emit(token{kind: tokenString, text: sb.String(), pos: start})
			return nil
		}
		if c == '\\' && l.pos+1 < len(l.input) {
			l.pos++
			c = l.input[l.pos]
		}
		sb.WriteByte(c)
		l.pos++
	}
	return fmt.Errorf("unterminated string literal at position %d", start)
}

func (l *lexer) scanNumber() error {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			l.pos++
			continue
		}
		break
	}
	text := l.input[start:l.pos]
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q at position %d", text, start)
	}
	l.emit(token{kind: tokenNumber, text: text, num: num, pos: start})
	return nil
}

func (l *lexer) scanIdent() {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(rune(l.input[l.pos])) {
		l.pos++
	}
	l.emit(token{kind: tokenIdent, text: l.input[start:l.pos], pos: start})
}

func isIdentStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isIdentPart(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}
