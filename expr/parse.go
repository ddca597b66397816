package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse builds an expression tree from src.
//
// Grammar (standard precedence, left associative):
//
//	expr    := term   (('+' | '-') term)*
//	term    := unary  (('*' | '/') unary)*
//	unary   := '-' unary | primary
//	primary := number | identifier | '(' expr ')'
//
// Identifiers match [A-Za-z_][A-Za-z0-9_]* and come out as Symbol nodes;
// resolve them with Bind. Numbers are Go float literals.
//
// Complexity: O(len(src)) time and tree size.
func Parse(src string) (Node, error) {
	p := &parser{src: src}
	p.next()
	if p.tok.kind == tokEOF {
		return nil, ErrEmptyExpression
	}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrParse, p.tok.text, p.tok.pos)
	}

	return node, nil
}

type tokKind byte

const (
	tokEOF tokKind = iota
	tokNumber
	tokIdent
	tokOp     // + - * /
	tokLParen
	tokRParen
	tokBad
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	src string
	off int
	tok token
}

// next advances to the following token.
func (p *parser) next() {
	for p.off < len(p.src) && unicode.IsSpace(rune(p.src[p.off])) {
		p.off++
	}
	start := p.off
	if p.off >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}

		return
	}

	c := p.src[p.off]
	switch {
	case c == '(':
		p.off++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.off++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case strings.ContainsRune("+-*/", rune(c)):
		p.off++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	case c == '_' || unicode.IsLetter(rune(c)):
		for p.off < len(p.src) && (p.src[p.off] == '_' ||
			unicode.IsLetter(rune(p.src[p.off])) || unicode.IsDigit(rune(p.src[p.off]))) {
			p.off++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.off], pos: start}
	case unicode.IsDigit(rune(c)) || c == '.':
		for p.off < len(p.src) && (unicode.IsDigit(rune(p.src[p.off])) ||
			p.src[p.off] == '.' || p.src[p.off] == 'e' || p.src[p.off] == 'E' ||
			((p.src[p.off] == '+' || p.src[p.off] == '-') && p.off > start &&
				(p.src[p.off-1] == 'e' || p.src[p.off-1] == 'E'))) {
			p.off++
		}
		p.tok = token{kind: tokNumber, text: p.src[start:p.off], pos: start}
	default:
		p.off++
		p.tok = token{kind: tokBad, text: string(c), pos: start}
	}
}

func (p *parser) parseExpr() (Node, error) {
	node, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			node = Add(node, rhs)
		} else {
			node = Sub(node, rhs)
		}
	}

	return node, nil
}

func (p *parser) parseTerm() (Node, error) {
	node, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "*" {
			node = Mul(node, rhs)
		} else {
			node = Div(node, rhs)
		}
	}

	return node, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return Negate(inner), nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.tok.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q at offset %d", ErrParse, p.tok.text, p.tok.pos)
		}
		p.next()

		return Num(v), nil

	case tokIdent:
		name := p.tok.text
		p.next()

		return Var(name), nil

	case tokLParen:
		p.next()
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')' at offset %d", ErrParse, p.tok.pos)
		}
		p.next()

		return node, nil

	default:
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrParse, p.tok.text, p.tok.pos)
	}
}
