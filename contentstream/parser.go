package contentstream

import (
	"fmt"
	"strconv"

	"github.com/tsawler/imprint/core"
)

// Operation is a single content stream instruction: an operator and the
// operands that preceded it.
type Operation struct {
	Operator string        // e.g. "Do", "cm", "q"
	Operands []core.Object
}

// Parser reads a content stream as a sequence of operations. It covers
// the painting subset this library writes and verifies: numeric and name
// operands, arrays of those, and operators. String and dictionary
// operands (text showing, marked content) are rejected.
type Parser struct {
	data     []byte
	pos      int
	ops      []Operation
	operands []core.Object // pending until the next operator
}

// NewParser creates a parser over the given stream data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse returns all operations in stream order.
func (p *Parser) Parse() ([]Operation, error) {
	p.ops = make([]Operation, 0)
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			break
		}
		if isLetter(p.data[p.pos]) {
			p.parseOperator()
			continue
		}
		operand, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		p.operands = append(p.operands, operand)
	}
	return p.ops, nil
}

// parseOperator reads an operator name and flushes the pending operands
// into a new operation.
func (p *Parser) parseOperator() {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if !isLetter(c) && c != '*' {
			break
		}
		p.pos++
	}

	op := Operation{
		Operator: string(p.data[start:p.pos]),
		Operands: make([]core.Object, len(p.operands)),
	}
	copy(op.Operands, p.operands)
	p.ops = append(p.ops, op)
	p.operands = p.operands[:0]
}

func (p *Parser) parseOperand() (core.Object, error) {
	c := p.data[p.pos]
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '/':
		return p.parseName()
	case c == '[':
		return p.parseArray()
	}
	return nil, fmt.Errorf("unsupported operand at position %d: %c", p.pos, c)
}

// parseNumber reads an integer or real operand.
func (p *Parser) parseNumber() (core.Object, error) {
	start := p.pos
	if c := p.data[p.pos]; c == '+' || c == '-' {
		p.pos++
	}
	real := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' && !real {
			real = true
			p.pos++
			continue
		}
		break
	}

	s := string(p.data[start:p.pos])
	if real {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q at position %d", s, start)
		}
		return core.Real(v), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q at position %d", s, start)
	}
	return core.Int(v), nil
}

// parseName reads a /Name operand, decoding #xx escapes.
func (p *Parser) parseName() (core.Object, error) {
	p.pos++ // skip '/'

	var name []byte
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			name = append(name, hexValue(p.data[p.pos+1])<<4|hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		name = append(name, c)
		p.pos++
	}
	return core.Name(name), nil
}

// parseArray reads an array of operands, as in a dash pattern.
func (p *Parser) parseArray() (core.Object, error) {
	p.pos++ // skip '['

	var arr core.Array
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		elem, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, elem)
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
