package core

import (
	"fmt"
)

// parseXRefStream parses a PDF 1.5 cross-reference stream at the current
// position. The stream object's own dictionary doubles as the trailer.
// Its /Length must be direct: resolving a reference would need the very
// table being parsed.
func (x *XRefParser) parseXRefStream() (*XRefTable, error) {
	parser := NewParser(x.reader)
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse cross-reference stream object: %w", err)
	}

	stream, ok := indObj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("cross-reference object %d is not a stream", indObj.Ref.Number)
	}
	dict := stream.Dict

	if typ, ok := dict.GetName("Type"); !ok || typ != "XRef" {
		return nil, fmt.Errorf("cross-reference stream has /Type %q, want /XRef", typ)
	}

	size, ok := dict.GetInt("Size")
	if !ok {
		return nil, fmt.Errorf("cross-reference stream missing /Size")
	}

	wArr, ok := dict.GetArray("W")
	if !ok {
		return nil, fmt.Errorf("cross-reference stream missing /W")
	}
	if wArr.Len() != 3 {
		return nil, fmt.Errorf("cross-reference stream /W has %d elements, want 3", wArr.Len())
	}
	w := make([]int, 3)
	for i := range w {
		wi, ok := wArr.GetInt(i)
		if !ok || wi < 0 || wi > 8 {
			return nil, fmt.Errorf("cross-reference stream /W[%d] invalid: %v", i, wArr.Get(i))
		}
		w[i] = int(wi)
	}
	if w[0]+w[1]+w[2] == 0 {
		return nil, fmt.Errorf("cross-reference stream /W is all zero")
	}

	// Subsection ranges: /Index [start count ...], default [0 Size].
	index := []int{0, int(size)}
	if idxArr, ok := dict.GetArray("Index"); ok {
		if idxArr.Len()%2 != 0 {
			return nil, fmt.Errorf("cross-reference stream /Index has odd length %d", idxArr.Len())
		}
		index = index[:0]
		for i := 0; i < idxArr.Len(); i++ {
			v, ok := idxArr.GetInt(i)
			if !ok || v < 0 {
				return nil, fmt.Errorf("cross-reference stream /Index[%d] invalid: %v", i, idxArr.Get(i))
			}
			index = append(index, int(v))
		}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode cross-reference stream: %w", err)
	}

	table := NewXRefTable()
	table.Trailer = dict
	table.IsStream = true

	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			entry, n, err := x.parseXRefStreamEntry(data[pos:], w)
			if err != nil {
				return nil, fmt.Errorf("cross-reference stream entry for object %d: %w", start+j, err)
			}
			pos += n
			table.Set(start+j, entry)
		}
	}

	return table, nil
}

// parseXRefStreamEntry decodes one binary entry according to the field
// widths in w. It returns the entry and the number of bytes consumed.
//
// Field 1 is the entry type (default 1 when its width is zero): 0 free,
// 1 uncompressed at a byte offset, 2 compressed inside an object stream.
func (x *XRefParser) parseXRefStreamEntry(data []byte, w []int) (*XRefEntry, int, error) {
	need := w[0] + w[1] + w[2]
	if len(data) < need {
		return nil, 0, fmt.Errorf("truncated entry: need %d bytes, have %d", need, len(data))
	}

	pos := 0
	entryType := int64(XRefEntryUncompressed)
	if w[0] > 0 {
		entryType = readBigEndianInt(data[pos:], w[0])
		pos += w[0]
	}
	field2 := readBigEndianInt(data[pos:], w[1])
	pos += w[1]
	field3 := readBigEndianInt(data[pos:], w[2])

	entry := &XRefEntry{}
	switch entryType {
	case 0:
		entry.Type = XRefEntryFree
		entry.Offset = field2
		entry.Generation = int(field3)
	case 1:
		entry.Type = XRefEntryUncompressed
		entry.Offset = field2
		entry.Generation = int(field3)
		entry.InUse = true
	case 2:
		entry.Type = XRefEntryCompressed
		entry.StreamNum = int(field2)
		entry.StreamIdx = int(field3)
		entry.InUse = true
	default:
		// Unknown types refer to the null object; treat as free.
		entry.Type = XRefEntryFree
	}

	return entry, need, nil
}

// readBigEndianInt reads a big-endian unsigned integer of the given byte
// width. A width of zero yields zero.
func readBigEndianInt(data []byte, width int) int64 {
	var v int64
	for i := 0; i < width; i++ {
		v = v<<8 | int64(data[i])
	}
	return v
}
