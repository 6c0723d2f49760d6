package directive

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultIndexName is bound to each position when the directive names no index.
const DefaultIndexName = "$index"

// Expression is a parsed list directive.
type Expression struct {
	// Alias is the name bound to each element.
	Alias string
	// Index is the name bound to each position.
	Index string
	// Source is the collection expression, passed verbatim to the evaluator.
	Source string
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokComma
	tokIdent
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src string
	pos int
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) next() token {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}
	}

	start := l.pos
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	switch r {
	case '(':
		l.pos += size
		return token{kind: tokLParen, text: "(", pos: start}
	case ')':
		l.pos += size
		return token{kind: tokRParen, text: ")", pos: start}
	case ',':
		l.pos += size
		return token{kind: tokComma, text: ",", pos: start}
	}

	if !isIdentStart(r) {
		l.pos += size
		return token{kind: tokInvalid, text: string(r), pos: start}
	}
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}
}

// ParseExpression parses a list directive of the form
//
//	alias in|of expr
//	(alias, index) in|of expr
//
// Whitespace around every part is ignored. A missing index name defaults to
// DefaultIndexName.
func ParseExpression(raw string) (Expression, error) {
	return parseExpression(raw, DefaultIndexName)
}

func parseExpression(raw, defaultIndex string) (Expression, error) {
	lx := &lexer{src: raw}
	near := func(t token) string {
		return strings.TrimSpace(raw[t.pos:])
	}
	expect := func(kind tokenKind, what string) (token, error) {
		t := lx.next()
		if t.kind != kind {
			return t, newGrammarError(raw, near(t), "expected "+what)
		}
		return t, nil
	}

	expr := Expression{Index: defaultIndex}

	first := lx.next()
	switch first.kind {
	case tokLParen:
		alias, err := expect(tokIdent, "alias name")
		if err != nil {
			return Expression{}, err
		}
		if _, err := expect(tokComma, `","`); err != nil {
			return Expression{}, err
		}
		index, err := expect(tokIdent, "index name")
		if err != nil {
			return Expression{}, err
		}
		if _, err := expect(tokRParen, `")"`); err != nil {
			return Expression{}, err
		}
		if alias.text == index.text {
			return Expression{}, newGrammarError(raw, near(index), "alias and index name must differ")
		}
		expr.Alias = alias.text
		expr.Index = index.text
	case tokIdent:
		expr.Alias = first.text
	case tokEOF:
		return Expression{}, newGrammarError(raw, "", "empty directive")
	default:
		return Expression{}, newGrammarError(raw, near(first), "expected alias or \"(\"")
	}

	kw := lx.next()
	if kw.kind != tokIdent || (kw.text != "in" && kw.text != "of") {
		return Expression{}, newGrammarError(raw, near(kw), `expected "in" or "of"`)
	}
	if expr.Alias == "in" || expr.Alias == "of" {
		return Expression{}, newGrammarError(raw, near(first), "alias cannot be a keyword")
	}

	rest := raw[lx.pos:]
	r, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || !unicode.IsSpace(r) {
		return Expression{}, newGrammarError(raw, near(kw), "expected source expression after "+kw.text)
	}
	expr.Source = strings.TrimSpace(rest)
	if expr.Source == "" {
		return Expression{}, newGrammarError(raw, near(kw), "expected source expression after "+kw.text)
	}
	return expr, nil
}
