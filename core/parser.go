package core

import (
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver supplies the object a reference points at. The
// parser needs one only when a stream /Length is itself indirect.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser assembles objects from the token stream. It keeps a window of
// two tokens: cur, the token being decided on, and ahead, the one after
// it. The window is what lets "12 0 R" be told apart from two integers
// followed by something else.
type Parser struct {
	lex      *Lexer
	cur      *Token
	ahead    *Token
	resolver ReferenceResolver
}

// NewParser returns a parser reading from r, primed with its two
// token lookahead window.
func NewParser(r io.Reader) *Parser {
	p := &Parser{lex: NewLexer(r)}
	p.advance()
	p.advance()
	return p
}

// SetReferenceResolver equips the parser to follow an indirect stream
// /Length while parsing.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// isKeyword reports whether t is the given keyword. A nil token is no
// keyword at all.
func (t *Token) isKeyword(kw string) bool {
	return t != nil && t.Type == TokenKeyword && string(t.Value) == kw
}

// advance shifts the lookahead window one token. When the stream
// keyword becomes current the window stops filling, because the bytes
// after it are raw data that must not be tokenized; stream reads them
// straight off the lexer and refills the window afterwards.
func (p *Parser) advance() error {
	p.cur = p.ahead
	if p.cur.isKeyword("stream") {
		p.ahead = nil
		return nil
	}
	t, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.ahead = t
	return nil
}

// consume returns obj after stepping past the current token.
func (p *Parser) consume(obj Object) (Object, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *Parser) skipComments() error {
	for p.cur != nil && p.cur.Type == TokenComment {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// keywordValues maps the literal keywords to the objects they denote.
var keywordValues = map[string]Object{
	"null":  Null{},
	"true":  Bool(true),
	"false": Bool(false),
}

// ParseObject parses and returns the next object from the input. At
// the end of input it returns io.EOF.
func (p *Parser) ParseObject() (Object, error) {
	if err := p.skipComments(); err != nil {
		return nil, err
	}
	if p.cur == nil {
		return nil, fmt.Errorf("no token to parse")
	}

	switch p.cur.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenInteger:
		return p.numberOrRef()
	case TokenReal:
		f, err := strconv.ParseFloat(string(p.cur.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("bad real %q: %w", p.cur.Value, err)
		}
		return p.consume(Real(f))
	case TokenString:
		return p.consume(String(p.cur.Value))
	case TokenName:
		return p.consume(Name(p.cur.Value))
	case TokenArrayStart:
		return p.array()
	case TokenDictStart:
		return p.dict()
	case TokenKeyword:
		kw := string(p.cur.Value)
		obj, ok := keywordValues[kw]
		if !ok {
			return nil, fmt.Errorf("keyword %q is not an object", kw)
		}
		return p.consume(obj)
	}
	return nil, fmt.Errorf("token %v at offset %d cannot start an object", p.cur.Type, p.cur.Pos)
}

// numberOrRef decides between a plain integer and an indirect
// reference by looking for the "gen R" continuation.
func (p *Parser) numberOrRef() (Object, error) {
	text := string(p.cur.Value)
	num, err := strconv.Atoi(text)
	if err != nil {
		// Out-of-range integers are kept as reals.
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return nil, fmt.Errorf("bad number %q", text)
		}
		return p.consume(Real(f))
	}

	if p.ahead != nil && p.ahead.Type == TokenInteger {
		gen, gerr := strconv.Atoi(string(p.ahead.Value))
		if gerr == nil {
			// Step onto the candidate generation to see whether R follows.
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.ahead != nil && p.ahead.Type == TokenIndirectRef {
				if err := p.advance(); err != nil {
					return nil, err
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
				return IndirectRef{Number: num, Generation: gen}, nil
			}
			// Two plain integers. The second is now current and belongs
			// to the caller's next parse.
			return Int(num), nil
		}
	}

	return p.consume(Int(num))
}

func (p *Parser) array() (Object, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	var arr Array
	for {
		if err := p.skipComments(); err != nil {
			return nil, err
		}
		if p.cur == nil || p.cur.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated array")
		}
		if p.cur.Type == TokenArrayEnd {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return arr, nil
		}

		el, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", arr.Len(), err)
		}
		arr = append(arr, el)
	}
}

func (p *Parser) dict() (Object, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	d := make(Dict)
	for {
		if err := p.skipComments(); err != nil {
			return nil, err
		}
		if p.cur == nil || p.cur.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated dictionary")
		}
		if p.cur.Type == TokenDictEnd {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return d, nil
		}
		if p.cur.Type != TokenName {
			return nil, fmt.Errorf("dictionary key is %v, want a name", p.cur.Type)
		}

		key := string(p.cur.Value)
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("value of /%s: %w", key, err)
		}
		d[key] = val
	}
}

// intToken consumes the current token as an integer.
func (p *Parser) intToken(what string) (int, error) {
	if p.cur == nil || p.cur.Type != TokenInteger {
		return 0, fmt.Errorf("missing %s", what)
	}
	n, err := strconv.Atoi(string(p.cur.Value))
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", what, err)
	}
	return n, p.advance()
}

// expectKeyword consumes the current token, which must be the given
// keyword.
func (p *Parser) expectKeyword(kw string) error {
	if !p.cur.isKeyword(kw) {
		return fmt.Errorf("missing %q keyword", kw)
	}
	return p.advance()
}

// ParseIndirectObject parses a full "num gen obj ... endobj"
// definition. A dictionary body followed by the stream keyword is
// completed into a *Stream.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	if err := p.skipComments(); err != nil {
		return nil, err
	}

	num, err := p.intToken("object number")
	if err != nil {
		return nil, err
	}
	gen, err := p.intToken("generation number")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("obj"); err != nil {
		return nil, err
	}

	body, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
	}

	if p.cur.isKeyword("stream") {
		d, ok := body.(Dict)
		if !ok {
			return nil, fmt.Errorf("stream keyword after %T, want a dictionary", body)
		}
		if body, err = p.stream(d); err != nil {
			return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
		}
	}

	if err := p.expectKeyword("endobj"); err != nil {
		return nil, err
	}

	return &IndirectObject{
		Ref:    IndirectRef{Number: num, Generation: gen},
		Object: body,
	}, nil
}

// stream reads the raw data between the stream and endstream keywords.
// The byte count comes from /Length; the data itself is never
// tokenized.
func (p *Parser) stream(d Dict) (*Stream, error) {
	length, err := p.streamLength(d)
	if err != nil {
		return nil, err
	}

	if err := p.lex.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("after stream keyword: %w", err)
	}
	data, err := p.lex.ReadBytes(length)
	if err != nil {
		return nil, err
	}

	end, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if !end.isKeyword("endstream") {
		return nil, fmt.Errorf("missing endstream after %d data bytes", length)
	}

	// Refill both lookahead slots; the window was parked on the stream
	// keyword while the data was read.
	p.cur, p.ahead = nil, nil
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	return &Stream{Dict: d, Data: data}, nil
}

// streamLength reads /Length, following an indirect reference through
// the resolver when one is set.
func (p *Parser) streamLength(d Dict) (int, error) {
	switch v := d.Get("Length").(type) {
	case Int:
		if v < 0 {
			return 0, fmt.Errorf("negative stream length %d", v)
		}
		return int(v), nil
	case IndirectRef:
		if p.resolver == nil {
			return 0, fmt.Errorf("stream length %s needs a resolver", v)
		}
		obj, err := p.resolver.ResolveReference(v)
		if err != nil {
			return 0, fmt.Errorf("resolving stream length %s: %w", v, err)
		}
		n, ok := obj.(Int)
		if !ok || n < 0 {
			return 0, fmt.Errorf("stream length %s resolved to %v", v, obj)
		}
		return int(n), nil
	case nil:
		return 0, fmt.Errorf("stream dictionary has no Length")
	default:
		return 0, fmt.Errorf("stream Length is %T, want an integer", v)
	}
}
