package filters

import (
	"bytes"
	"fmt"
)

// RunLengthDecode decodes run-length encoded data. Each run starts with a
// length byte L: 0-127 copies the next L+1 bytes literally, 129-255 repeats
// the next byte 257-L times, and 128 marks end of data.
func RunLengthDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer

	i := 0
	for i < len(data) {
		length := int(data[i])
		i++

		switch {
		case length == 128:
			return out.Bytes(), nil

		case length < 128:
			n := length + 1
			if i+n > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes exceeds input", n)
			}
			out.Write(data[i : i+n])
			i += n

		default:
			if i >= len(data) {
				return nil, fmt.Errorf("repeated run missing its byte")
			}
			out.Write(bytes.Repeat(data[i:i+1], 257-length))
			i++
		}
	}

	// Data ended without the 128 marker; everything decoded is returned.
	return out.Bytes(), nil
}
