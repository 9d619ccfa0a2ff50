package core

import (
	"bufio"
	"fmt"
	"io"
)

// TokenType classifies the lexemes of PDF syntax.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword     // obj, endobj, stream, true, null and friends
	TokenInteger     // 1376
	TokenReal        // 0.85
	TokenString      // (text) or <hex>, value already decoded to bytes
	TokenName        // /DeviceRGB
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
	TokenIndirectRef // the bare R operator
)

// A Token is one lexeme plus the byte offset where it started.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

// Lexer splits PDF syntax into tokens. It tracks the absolute byte
// offset consumed, which callers need to locate raw stream data.
type Lexer struct {
	br  *bufio.Reader
	off int64
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{br: bufio.NewReader(r)}
}

// next consumes and returns one byte.
func (l *Lexer) next() (byte, error) {
	b, err := l.br.ReadByte()
	if err == nil {
		l.off++
	}
	return b, err
}

// unread puts the byte from the last next call back.
func (l *Lexer) unread() {
	if l.br.UnreadByte() == nil {
		l.off--
	}
}

// skipSpace consumes whitespace, nulls included, and returns the first
// byte after it.
func (l *Lexer) skipSpace() (byte, error) {
	for {
		b, err := l.next()
		if err != nil {
			return 0, err
		}
		if !isSpace(b) {
			return b, nil
		}
	}
}

// NextToken returns the next token from the input. At end of input it
// returns a TokenEOF token rather than an error.
func (l *Lexer) NextToken() (*Token, error) {
	b, err := l.skipSpace()
	if err == io.EOF {
		return &Token{Type: TokenEOF, Pos: l.off}, nil
	}
	if err != nil {
		return nil, err
	}

	at := l.off - 1
	switch b {
	case '%':
		return l.comment(at)
	case '(':
		return l.literalString(at)
	case '[':
		return &Token{Type: TokenArrayStart, Value: []byte("["), Pos: at}, nil
	case ']':
		return &Token{Type: TokenArrayEnd, Value: []byte("]"), Pos: at}, nil
	case '/':
		return l.name(at)
	case '<':
		if c, err := l.next(); err == nil {
			if c == '<' {
				return &Token{Type: TokenDictStart, Value: []byte("<<"), Pos: at}, nil
			}
			l.unread()
		}
		return l.hexString(at)
	case '>':
		if c, err := l.next(); err == nil && c == '>' {
			return &Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: at}, nil
		}
		return nil, fmt.Errorf("unmatched '>' at offset %d", at)
	}

	switch {
	case isDigit(b), b == '-', b == '+', b == '.':
		return l.number(b, at)
	case isAlpha(b):
		return l.keyword(b, at)
	}
	return nil, fmt.Errorf("unexpected byte %q at offset %d", b, at)
}

// comment reads from % through the end of the line. The value keeps
// the % but not the line terminator.
func (l *Lexer) comment(at int64) (*Token, error) {
	text := []byte{'%'}
	for {
		b, err := l.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if b == '\n' {
			break
		}
		if b == '\r' {
			if c, err := l.next(); err == nil && c != '\n' {
				l.unread()
			}
			break
		}
		text = append(text, b)
	}
	return &Token{Type: TokenComment, Value: text, Pos: at}, nil
}

// literalString reads a parenthesized string. Parens nest; only the
// balanced outer pair is stripped from the value.
func (l *Lexer) literalString(at int64) (*Token, error) {
	var text []byte
	depth := 1
	for depth > 0 {
		b, err := l.next()
		if err != nil {
			return nil, fmt.Errorf("unterminated string at offset %d", at)
		}
		switch b {
		case '(':
			depth++
			text = append(text, b)
		case ')':
			depth--
			if depth > 0 {
				text = append(text, b)
			}
		case '\\':
			text, err = l.escapeSeq(text)
			if err != nil {
				return nil, err
			}
		default:
			text = append(text, b)
		}
	}
	return &Token{Type: TokenString, Value: text, Pos: at}, nil
}

// escapeSeq decodes the sequence after a backslash inside a literal
// string, appending the result to out. A backslash before an end of
// line joins the lines, contributing nothing.
func (l *Lexer) escapeSeq(out []byte) ([]byte, error) {
	b, err := l.next()
	if err != nil {
		return nil, err
	}
	switch b {
	case 'n':
		return append(out, '\n'), nil
	case 'r':
		return append(out, '\r'), nil
	case 't':
		return append(out, '\t'), nil
	case 'b':
		return append(out, '\b'), nil
	case 'f':
		return append(out, '\f'), nil
	case '\n':
		return out, nil
	case '\r':
		if c, err := l.next(); err == nil && c != '\n' {
			l.unread()
		}
		return out, nil
	}
	if b >= '0' && b <= '7' {
		v := int(b - '0')
		for i := 0; i < 2; i++ {
			d, err := l.next()
			if err != nil {
				break
			}
			if d < '0' || d > '7' {
				l.unread()
				break
			}
			v = v<<3 | int(d-'0')
		}
		return append(out, byte(v)), nil
	}
	// Anything else, parens and backslash included, stands for itself.
	return append(out, b), nil
}

// hexString decodes digit pairs up to the closing angle bracket.
// Whitespace between digits is allowed; an odd digit count reads as
// if a trailing zero were present.
func (l *Lexer) hexString(at int64) (*Token, error) {
	var out []byte
	hi := -1
	for {
		b, err := l.next()
		if err != nil {
			return nil, fmt.Errorf("unterminated hex string at offset %d", at)
		}
		if b == '>' {
			break
		}
		if isSpace(b) {
			continue
		}
		v := hexVal(b)
		if v < 0 {
			return nil, fmt.Errorf("bad hex digit %q at offset %d", b, l.off-1)
		}
		if hi < 0 {
			hi = v
		} else {
			out = append(out, byte(hi<<4|v))
			hi = -1
		}
	}
	if hi >= 0 {
		out = append(out, byte(hi<<4))
	}
	return &Token{Type: TokenString, Value: out, Pos: at}, nil
}

// name reads the bytes after a solidus, decoding #xx escapes. The
// value excludes the solidus itself.
func (l *Lexer) name(at int64) (*Token, error) {
	var text []byte
	for {
		b, err := l.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isSpace(b) || isDelim(b) {
			l.unread()
			break
		}
		if b == '#' {
			hi, err := l.next()
			if err != nil {
				return nil, err
			}
			lo, err := l.next()
			if err != nil {
				return nil, err
			}
			h, v := hexVal(hi), hexVal(lo)
			if h < 0 || v < 0 {
				return nil, fmt.Errorf("bad #xx escape in name at offset %d", l.off-2)
			}
			text = append(text, byte(h<<4|v))
			continue
		}
		text = append(text, b)
	}
	return &Token{Type: TokenName, Value: text, Pos: at}, nil
}

// number reads digits and at most one decimal point after the already
// consumed first byte, which may be a sign.
func (l *Lexer) number(first byte, at int64) (*Token, error) {
	text := []byte{first}
	isReal := first == '.'
	for {
		b, err := l.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if b == '.' && !isReal {
			isReal = true
			text = append(text, b)
			continue
		}
		if isDigit(b) {
			text = append(text, b)
			continue
		}
		l.unread()
		break
	}
	t := TokenInteger
	if isReal {
		t = TokenReal
	}
	return &Token{Type: t, Value: text, Pos: at}, nil
}

// keyword reads a run of alphanumerics. A bare R is the indirect
// reference operator and gets its own token type.
func (l *Lexer) keyword(first byte, at int64) (*Token, error) {
	text := []byte{first}
	for {
		b, err := l.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !isAlpha(b) && !isDigit(b) {
			l.unread()
			break
		}
		text = append(text, b)
	}
	if len(text) == 1 && text[0] == 'R' {
		return &Token{Type: TokenIndirectRef, Value: text, Pos: at}, nil
	}
	return &Token{Type: TokenKeyword, Value: text, Pos: at}, nil
}

// SkipStreamEOL consumes the end-of-line marker after the stream
// keyword. Writers are supposed to emit CRLF or LF here; a bare CR
// and no marker at all both occur and are accepted.
func (l *Lexer) SkipStreamEOL() error {
	b, err := l.next()
	if err != nil {
		return err
	}
	switch b {
	case '\n':
	case '\r':
		if c, err := l.next(); err == nil && c != '\n' {
			l.unread()
		}
	default:
		l.unread()
	}
	return nil
}

// ReadBytes reads exactly n bytes of raw data, bypassing tokenization.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(l.br, buf)
	l.off += int64(read)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return buf[:read], fmt.Errorf("stream data truncated: want %d bytes, have %d", n, read)
	}
	if err != nil {
		return buf[:read], err
	}
	return buf, nil
}

// Pos reports the number of bytes consumed from the input.
func (l *Lexer) Pos() int64 {
	return l.off
}

// isSpace reports whether b is PDF whitespace. The null byte counts.
func isSpace(b byte) bool {
	switch b {
	case '\x00', '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// isDelim reports whether b terminates a name or keyword.
func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isAlpha(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// hexVal returns the value of a hex digit, or -1 for anything else.
func hexVal(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b - '0')
	case 'a' <= b && b <= 'f':
		return int(b-'a') + 10
	case 'A' <= b && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}
