package ron

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports where a document stopped parsing.
type SyntaxError struct {
	Line, Col int
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("ron: %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ErrTrailingData is wrapped when input continues after the top-level value.
var ErrTrailingData = errors.New("trailing data")

// Parse decodes a single RON value.
func Parse(src []byte) (Value, error) {
	p := &parser{src: string(src), line: 1, col: 1}
	p.skip()
	v, err := p.value()
	if err != nil {
		return Value{}, err
	}
	p.skip()
	if p.pos < len(p.src) {
		return Value{}, fmt.Errorf("%w: %w", ErrTrailingData, p.errf("unexpected %q", p.peek()))
	}
	return v, nil
}

type parser struct {
	src       string
	pos       int
	line, col int
}

func (p *parser) errf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Col: p.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) next() rune {
	r, n := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += n
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

// skip consumes whitespace and comments.
func (p *parser) skip() {
	for p.pos < len(p.src) {
		switch {
		case unicode.IsSpace(p.peek()):
			p.next()
		case strings.HasPrefix(p.src[p.pos:], "//"):
			for p.pos < len(p.src) && p.peek() != '\n' {
				p.next()
			}
		case strings.HasPrefix(p.src[p.pos:], "/*"):
			for p.pos < len(p.src) && !strings.HasPrefix(p.src[p.pos:], "*/") {
				p.next()
			}
			if p.pos < len(p.src) {
				p.next()
				p.next()
			}
		default:
			return
		}
	}
}

func (p *parser) expect(r rune) error {
	p.skip()
	if p.peek() != r {
		if p.pos >= len(p.src) {
			return p.errf("expected %q, got end of input", r)
		}
		return p.errf("expected %q, got %q", r, p.peek())
	}
	p.next()
	return nil
}

func (p *parser) value() (Value, error) {
	p.skip()
	switch r := p.peek(); {
	case p.pos >= len(p.src):
		return Value{}, p.errf("unexpected end of input")
	case r == '"':
		s, err := p.str()
		return String(s), err
	case r == '[':
		p.next()
		items, err := p.seq(']')
		return List(items...), err
	case r == '{':
		return p.mapValue()
	case r == '(':
		return p.parenthesized("")
	case r == '-' || r == '+' || r == '.' || unicode.IsDigit(r):
		return p.number()
	case isIdentStart(r):
		name := p.ident()
		switch name {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "inf", "NaN":
			return Value{Kind: KindNumber, Text: name}, nil
		}
		p.skip()
		if p.peek() == '(' {
			return p.parenthesized(name)
		}
		return Ident(name), nil
	default:
		return Value{}, p.errf("unexpected %q", r)
	}
}

// parenthesized parses `( ... )` as a struct when its first element is
// `ident:` and as a tuple otherwise.
func (p *parser) parenthesized(name string) (Value, error) {
	if err := p.expect('('); err != nil {
		return Value{}, err
	}
	p.skip()
	if p.peek() == ')' {
		p.next()
		return Value{Kind: KindTuple, Name: name}, nil
	}
	if p.atField() {
		fields := []Field{}
		for {
			p.skip()
			if p.peek() == ')' {
				p.next()
				return Struct(name, fields...), nil
			}
			if !isIdentStart(p.peek()) {
				return Value{}, p.errf("expected field name, got %q", p.peek())
			}
			fname := p.ident()
			if err := p.expect(':'); err != nil {
				return Value{}, err
			}
			v, err := p.value()
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, F(fname, v))
			if done, err := p.sep(')'); err != nil {
				return Value{}, err
			} else if done {
				return Struct(name, fields...), nil
			}
		}
	}
	items, err := p.seq(')')
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindTuple, Name: name, Items: items}, nil
}

// atField looks ahead for `ident :` without consuming input.
func (p *parser) atField() bool {
	save := *p
	defer func() { *p = save }()
	if !isIdentStart(p.peek()) {
		return false
	}
	p.ident()
	p.skip()
	return p.peek() == ':'
}

// seq parses comma separated values up to and including closer.
func (p *parser) seq(closer rune) ([]Value, error) {
	var items []Value
	for {
		p.skip()
		if p.peek() == closer {
			p.next()
			return items, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if done, err := p.sep(closer); err != nil {
			return nil, err
		} else if done {
			return items, nil
		}
	}
}

// sep consumes a comma, or the closer which ends the sequence.
func (p *parser) sep(closer rune) (bool, error) {
	p.skip()
	switch p.peek() {
	case ',':
		p.next()
		return false, nil
	case closer:
		p.next()
		return true, nil
	}
	if p.pos >= len(p.src) {
		return false, p.errf("expected ',' or %q, got end of input", closer)
	}
	return false, p.errf("expected ',' or %q, got %q", closer, p.peek())
}

func (p *parser) mapValue() (Value, error) {
	if err := p.expect('{'); err != nil {
		return Value{}, err
	}
	var entries []Entry
	for {
		p.skip()
		if p.peek() == '}' {
			p.next()
			return Map(entries...), nil
		}
		k, err := p.value()
		if err != nil {
			return Value{}, err
		}
		if err := p.expect(':'); err != nil {
			return Value{}, err
		}
		v, err := p.value()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: k, Value: v})
		if done, err := p.sep('}'); err != nil {
			return Value{}, err
		} else if done {
			return Map(entries...), nil
		}
	}
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.peek()) {
		p.next()
	}
	return p.src[start:p.pos]
}

func (p *parser) number() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) {
		r := p.peek()
		if unicode.IsDigit(r) || strings.ContainsRune("+-._eExXabcdefABCDEF", r) {
			p.next()
			continue
		}
		break
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		if _, ierr := strconv.ParseInt(text, 0, 64); ierr != nil {
			return Value{}, p.errf("bad number %q", text)
		}
	}
	return Value{Kind: KindNumber, Text: text}, nil
}

func (p *parser) str() (string, error) {
	p.next() // opening quote
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errf("unterminated string")
		}
		r := p.next()
		switch r {
		case '"':
			return b.String(), nil
		case '\\':
			if p.pos >= len(p.src) {
				return "", p.errf("unterminated escape")
			}
			switch e := p.next(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '"', '\'':
				b.WriteRune(e)
			case 'u':
				if err := p.expect('{'); err != nil {
					return "", err
				}
				start := p.pos
				for p.pos < len(p.src) && p.peek() != '}' {
					p.next()
				}
				code, err := strconv.ParseUint(p.src[start:p.pos], 16, 32)
				if err != nil {
					return "", p.errf("bad unicode escape")
				}
				if err := p.expect('}'); err != nil {
					return "", err
				}
				b.WriteRune(rune(code))
			default:
				return "", p.errf("unknown escape \\%c", e)
			}
		default:
			b.WriteRune(r)
		}
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
