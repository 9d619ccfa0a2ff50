package filters

import (
	"bytes"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
	"io"
)

// ASCIIHexDecode decodes ASCII hexadecimal encoded data. Whitespace is
// ignored, > marks end of data, and an odd final digit is padded with 0.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	digits := make([]byte, 0, len(data))
	for _, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit: %c", c)
		}
		digits = append(digits, c)
	}

	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}

	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("hex decode failed: %w", err)
	}
	return out, nil
}

// ASCII85Decode decodes ASCII base-85 encoded data. The optional <~ opener
// and the ~> end-of-data marker are stripped before decoding; whitespace
// inside the body is ignored by the decoder.
func ASCII85Decode(data []byte) ([]byte, error) {
	body := data
	if bytes.HasPrefix(body, []byte("<~")) {
		body = body[2:]
	}
	if i := bytes.Index(body, []byte("~>")); i >= 0 {
		body = body[:i]
	}

	decoder := ascii85.NewDecoder(bytes.NewReader(body))
	out, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("ascii85 decode failed: %w", err)
	}
	return out, nil
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

// isHexDigit reports whether c is a hexadecimal digit.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}
