package typespec

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse reads a type expression written in Java-like syntax:
//
//	com.example.Widget
//	javax.enterprise.inject.spi.ProcessAnnotatedType<com.example.Widget>
//	ProcessAnnotatedType<? extends java.lang.Runnable & java.io.Serializable>
//	ProcessAnnotatedType<? super com.example.Widget>
//	ProcessAnnotatedType<T extends java.lang.Runnable>
//	ProcessAnnotatedType<?>
//	<T> ProcessAnnotatedType<T>
//
// An identifier followed by "extends" is a type variable. A leading "<T, U>"
// list declares type variables the way a generic method does; those names
// are variables wherever they appear, with the bounds given in the list.
// Any other bare identifier is a class. The result is validated before it is
// returned.
func Parse(s string) (*Type, error) {
	p := &parser{lex: newLexer(s)}
	p.next()

	t, err := p.parseDeclared()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidType, s, err)
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: %q: unexpected %s at offset %d", ErrInvalidType, s, p.tok, p.tok.pos)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level declarations.
func MustParse(s string) *Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	lex *lexer
	tok token

	// vars holds the variables declared by a leading "<...>" list.
	vars map[string][]*Type
}

func (p *parser) next() {
	p.tok = p.lex.next()
}

func (p *parser) expect(kind tokenKind) error {
	if p.tok.kind != kind {
		return fmt.Errorf("expected %s, found %s at offset %d", kind, p.tok, p.tok.pos)
	}
	p.next()
	return nil
}

func (p *parser) parseDeclared() (*Type, error) {
	if p.tok.kind == tokLAngle {
		p.next()
		if err := p.parseVariableList(); err != nil {
			return nil, err
		}
	}
	return p.parseType()
}

func (p *parser) parseVariableList() error {
	p.vars = make(map[string][]*Type)
	for {
		if p.tok.kind != tokIdent || isKeyword(p.tok.text) {
			return fmt.Errorf("expected type variable, found %s at offset %d", p.tok, p.tok.pos)
		}
		name := p.tok.text
		if _, dup := p.vars[name]; dup {
			return fmt.Errorf("type variable %s declared twice at offset %d", name, p.tok.pos)
		}
		p.next()

		var bounds []*Type
		if p.tok.kind == tokIdent && p.tok.text == "extends" {
			p.next()
			var err error
			if bounds, err = p.parseBounds(); err != nil {
				return err
			}
		}
		p.vars[name] = bounds

		if p.tok.kind != tokComma {
			break
		}
		p.next()
	}
	return p.expect(tokRAngle)
}

func (p *parser) parseType() (*Type, error) {
	if p.tok.kind == tokQuestion {
		return p.parseWildcard()
	}
	return p.parseNamed(true)
}

func (p *parser) parseWildcard() (*Type, error) {
	p.next() // '?'

	if p.tok.kind != tokIdent {
		return Wildcard(), nil
	}

	switch p.tok.text {
	case "extends":
		p.next()
		bounds, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		return Wildcard(bounds...), nil
	case "super":
		p.next()
		bounds, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		return WildcardSuper(bounds...), nil
	}
	return nil, fmt.Errorf("unexpected %s after '?' at offset %d", p.tok, p.tok.pos)
}

// parseNamed reads a class, parameterized type, or (when allowVariable is
// set) a bounded type variable.
func (p *parser) parseNamed(allowVariable bool) (*Type, error) {
	if p.tok.kind != tokIdent || isKeyword(p.tok.text) {
		return nil, fmt.Errorf("expected type name, found %s at offset %d", p.tok, p.tok.pos)
	}
	name := p.tok.text
	p.next()

	if bounds, declared := p.vars[name]; declared {
		return Variable(name, bounds...), nil
	}

	if p.tok.kind == tokLAngle {
		p.next()
		var args []*Type
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			p.next()
		}
		if err := p.expect(tokRAngle); err != nil {
			return nil, err
		}
		return Parameterized(name, args...), nil
	}

	if p.tok.kind == tokIdent && p.tok.text == "extends" {
		if !allowVariable {
			return nil, fmt.Errorf("type variable %s not allowed in a bound at offset %d", name, p.tok.pos)
		}
		p.next()
		bounds, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		return Variable(name, bounds...), nil
	}

	return Class(name), nil
}

func (p *parser) parseBounds() ([]*Type, error) {
	var bounds []*Type
	for {
		var (
			b   *Type
			err error
		)
		if p.tok.kind == tokQuestion {
			// A wildcard is not a legal bound; parse it so the compiler can
			// see the shape and skip the observer rather than fail the parse.
			b, err = p.parseWildcard()
		} else {
			b, err = p.parseNamed(false)
		}
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, b)
		if p.tok.kind != tokAmp {
			return bounds, nil
		}
		p.next()
	}
}

func isKeyword(s string) bool {
	return s == "extends" || s == "super"
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLAngle
	tokRAngle
	tokComma
	tokAmp
	tokQuestion
	tokIllegal
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokLAngle:
		return "'<'"
	case tokRAngle:
		return "'>'"
	case tokComma:
		return "','"
	case tokAmp:
		return "'&'"
	case tokQuestion:
		return "'?'"
	default:
		return "illegal character"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokIdent || t.kind == tokIllegal {
		return fmt.Sprintf("%q", t.text)
	}
	return t.kind.String()
}

type lexer struct {
	src []rune
	pos int
}

func newLexer(s string) *lexer {
	return &lexer{src: []rune(strings.TrimSpace(s))}
}

func (l *lexer) next() token {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}
	}

	start := l.pos
	r := l.src[l.pos]
	switch r {
	case '<':
		l.pos++
		return token{kind: tokLAngle, text: "<", pos: start}
	case '>':
		l.pos++
		return token{kind: tokRAngle, text: ">", pos: start}
	case ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}
	case '&':
		l.pos++
		return token{kind: tokAmp, text: "&", pos: start}
	case '?':
		l.pos++
		return token{kind: tokQuestion, text: "?", pos: start}
	}

	if !isIdentStart(r) {
		l.pos++
		return token{kind: tokIllegal, text: string(r), pos: start}
	}
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokIdent, text: string(l.src[start:l.pos]), pos: start}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || r == '.' || unicode.IsDigit(r)
}
