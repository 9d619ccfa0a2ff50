package core

import (
	"bytes"
	"fmt"
)

// ObjectStream represents a PDF object stream (/Type /ObjStm), introduced in
// PDF 1.5. Object streams pack multiple non-stream objects into one
// compressed stream; cross-reference streams point into them with type 2
// entries.
type ObjectStream struct {
	stream  *Stream
	n       int            // number of objects in the stream
	first   int            // byte offset of the first object in the decoded data
	extends *IndirectRef   // optional /Extends reference
	objects map[int]Object // parsed objects by index
	offsets []objStmOffset
	decoded []byte
}

// objStmOffset pairs an object number with its byte offset relative to First.
type objStmOffset struct {
	ObjNum int
	Offset int
}

// NewObjectStream wraps a stream object carrying /Type /ObjStm.
// The required /N and /First entries are validated up front; the stream
// data itself is not decoded until an object is requested.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}

	if typ, ok := stream.Dict.GetName("Type"); !ok || typ != "ObjStm" {
		return nil, fmt.Errorf("stream is not an object stream, got type: %v", stream.Dict.Get("Type"))
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok {
		return nil, fmt.Errorf("object stream missing /N")
	}
	if n < 0 {
		return nil, fmt.Errorf("invalid /N value: %d", n)
	}

	first, ok := stream.Dict.GetInt("First")
	if !ok {
		return nil, fmt.Errorf("object stream missing /First")
	}
	if first < 0 {
		return nil, fmt.Errorf("invalid /First value: %d", first)
	}

	var extends *IndirectRef
	if obj := stream.Dict.Get("Extends"); obj != nil {
		ref, ok := obj.(IndirectRef)
		if !ok {
			return nil, fmt.Errorf("invalid /Extends type: %T", obj)
		}
		extends = &ref
	}

	return &ObjectStream{
		stream:  stream,
		n:       int(n),
		first:   int(first),
		extends: extends,
		objects: make(map[int]Object),
	}, nil
}

// N returns the number of objects stored in the stream.
func (os *ObjectStream) N() int {
	return os.n
}

// First returns the byte offset of the first object in the decoded data.
// The header of object number/offset pairs occupies the bytes before it.
func (os *ObjectStream) First() int {
	return os.first
}

// Extends returns the reference to the object stream this one extends,
// or false when there is none.
func (os *ObjectStream) Extends() (IndirectRef, bool) {
	if os.extends == nil {
		return IndirectRef{}, false
	}
	return *os.extends, true
}

// decode decodes the stream data and parses the header on first use.
func (os *ObjectStream) decode() error {
	if os.decoded != nil {
		return nil
	}

	decoded, err := os.stream.Decode()
	if err != nil {
		return fmt.Errorf("failed to decode object stream: %w", err)
	}
	os.decoded = decoded

	if err := os.parseHeader(); err != nil {
		return fmt.Errorf("failed to parse object stream header: %w", err)
	}
	return nil
}

// parseHeader reads the N pairs of integers that precede First:
// "objNum1 offset1 objNum2 offset2 ...". The pairs are plain integers,
// so the lexer is enough here.
func (os *ObjectStream) parseHeader() error {
	if os.first > len(os.decoded) {
		return fmt.Errorf("/First offset %d exceeds decoded length %d", os.first, len(os.decoded))
	}

	lexer := NewLexer(bytes.NewReader(os.decoded[:os.first]))
	readInt := func() (int, error) {
		tok, err := lexer.NextToken()
		if err != nil {
			return 0, err
		}
		if tok.Type != TokenInteger {
			return 0, fmt.Errorf("expected integer, got %v", tok.Type)
		}
		var v int
		if _, err := fmt.Sscanf(string(tok.Value), "%d", &v); err != nil {
			return 0, err
		}
		return v, nil
	}

	os.offsets = make([]objStmOffset, 0, os.n)
	for i := 0; i < os.n; i++ {
		objNum, err := readInt()
		if err != nil {
			return fmt.Errorf("pair %d: object number: %w", i, err)
		}
		offset, err := readInt()
		if err != nil {
			return fmt.Errorf("pair %d: offset: %w", i, err)
		}
		os.offsets = append(os.offsets, objStmOffset{ObjNum: objNum, Offset: offset})
	}
	return nil
}

// GetObjectByIndex extracts the object at the given header index (0-based)
// and returns it with its object number. Parsed objects are cached.
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}

	if index < 0 || index >= len(os.offsets) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.offsets))
	}

	if obj, ok := os.objects[index]; ok {
		return obj, os.offsets[index].ObjNum, nil
	}

	// Each object's bytes run to the next object's offset, or to the end
	// of the decoded data for the last one.
	start := os.first + os.offsets[index].Offset
	end := len(os.decoded)
	if index+1 < len(os.offsets) {
		end = os.first + os.offsets[index+1].Offset
	}
	if start >= len(os.decoded) {
		return nil, 0, fmt.Errorf("object offset %d exceeds decoded length %d", start, len(os.decoded))
	}
	if end > len(os.decoded) {
		end = len(os.decoded)
	}

	parser := NewParser(bytes.NewReader(os.decoded[start:end]))
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse object at index %d: %w", index, err)
	}

	os.objects[index] = obj
	return obj, os.offsets[index].ObjNum, nil
}

// GetObjectByNumber finds an object by its object number and returns it
// with its index within the stream.
func (os *ObjectStream) GetObjectByNumber(objNum int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}

	for i, entry := range os.offsets {
		if entry.ObjNum == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, i, err
		}
	}
	return nil, 0, fmt.Errorf("object %d not found in object stream", objNum)
}

// ObjectNumbers returns the object numbers stored in this stream, in
// header order.
func (os *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := os.decode(); err != nil {
		return nil, err
	}

	nums := make([]int, len(os.offsets))
	for i, entry := range os.offsets {
		nums[i] = entry.ObjNum
	}
	return nums, nil
}

// ContainsObject reports whether the given object number is stored here.
func (os *ObjectStream) ContainsObject(objNum int) (bool, error) {
	if err := os.decode(); err != nil {
		return false, err
	}

	for _, entry := range os.offsets {
		if entry.ObjNum == objNum {
			return true, nil
		}
	}
	return false, nil
}
