package recordstore

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFormula = errors.New("recordstore: invalid filterByFormula")

// SearchFilter is a parsed SEARCH("needle", {field}) formula.
type SearchFilter struct {
	Needle string
	Field  string
}

// ParseFormula accepts the empty formula and a single SEARCH call with a
// double-quoted needle. Inside the needle, \" and \\ are escapes.
func ParseFormula(raw string) (SearchFilter, bool, error) {
	p := &formulaParser{src: strings.TrimSpace(raw)}
	if p.src == "" {
		return SearchFilter{}, false, nil
	}
	if !p.keyword("SEARCH") {
		return SearchFilter{}, false, p.fail("expected SEARCH")
	}
	if !p.punct('(') {
		return SearchFilter{}, false, p.fail("expected (")
	}
	needle, err := p.quoted()
	if err != nil {
		return SearchFilter{}, false, err
	}
	if !p.punct(',') {
		return SearchFilter{}, false, p.fail("expected ,")
	}
	field, err := p.fieldRef()
	if err != nil {
		return SearchFilter{}, false, err
	}
	if !p.punct(')') {
		return SearchFilter{}, false, p.fail("expected )")
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return SearchFilter{}, false, p.fail("unexpected trailing input")
	}
	return SearchFilter{Needle: needle, Field: field}, true, nil
}

type formulaParser struct {
	src string
	pos int
}

func (p *formulaParser) fail(msg string) error {
	return fmt.Errorf("%w: %s at offset %d", ErrInvalidFormula, msg, p.pos)
}

func (p *formulaParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *formulaParser) keyword(word string) bool {
	p.skipSpace()
	if len(p.src)-p.pos < len(word) || !strings.EqualFold(p.src[p.pos:p.pos+len(word)], word) {
		return false
	}
	p.pos += len(word)
	return true
}

func (p *formulaParser) punct(c byte) bool {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return false
	}
	p.pos++
	return true
}

func (p *formulaParser) quoted() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '"' {
		return "", p.fail("expected string literal")
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.fail("dangling escape")
			}
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case '"':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.fail("unterminated string literal")
}

func (p *formulaParser) fieldRef() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return "", p.fail("expected field reference")
	}
	end := strings.IndexByte(p.src[p.pos:], '}')
	if end < 0 {
		return "", p.fail("unterminated field reference")
	}
	name := strings.TrimSpace(p.src[p.pos+1 : p.pos+end])
	p.pos += end + 1
	if name == "" {
		return "", p.fail("empty field reference")
	}
	return name, nil
}
