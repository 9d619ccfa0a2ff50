package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// XRefEntryType classifies a cross-reference entry.
type XRefEntryType int

const (
	// XRefEntryFree marks an unused object number.
	XRefEntryFree XRefEntryType = iota
	// XRefEntryUncompressed locates an object at a byte offset in the file.
	XRefEntryUncompressed
	// XRefEntryCompressed locates an object inside an object stream.
	XRefEntryCompressed
)

// XRefEntry represents a single cross-reference entry
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64 // byte offset (uncompressed) or next free object number (free)
	Generation int
	InUse      bool
	StreamNum  int // object number of the containing object stream (compressed)
	StreamIdx  int // index within the object stream (compressed)
}

// XRefTable represents a PDF cross-reference table
type XRefTable struct {
	Entries  map[int]*XRefEntry // Map from object number to XRef entry
	Trailer  Dict               // Trailer dictionary (the stream dict for xref streams)
	IsStream bool               // true when parsed from a cross-reference stream
}

// NewXRefTable creates a new empty XRef table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

// Get retrieves an XRef entry by object number
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

// Set adds or updates an XRef entry
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

// Size returns the number of entries in the table
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// XRefParser parses PDF cross-reference data, both the classic ASCII table
// form and the PDF 1.5 cross-reference stream form.
type XRefParser struct {
	reader io.ReadSeeker
}

// NewXRefParser creates a new XRef parser
func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{
		reader: r,
	}
}

// FindXRef finds the byte offset of the last cross-reference section by
// scanning backward from EOF for "startxref\n<offset>\n%%EOF".
func (x *XRefParser) FindXRef() (int64, error) {
	fileSize, err := x.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to seek to end: %w", err)
	}

	readSize := int64(1024)
	if fileSize < readSize {
		readSize = fileSize
	}

	_, err = x.reader.Seek(fileSize-readSize, io.SeekStart)
	if err != nil {
		return 0, fmt.Errorf("failed to seek to startxref area: %w", err)
	}

	buf := make([]byte, readSize)
	n, err := io.ReadFull(x.reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("failed to read startxref area: %w", err)
	}
	buf = buf[:n]

	content := string(buf)
	idx := strings.LastIndex(content, "startxref")
	if idx == -1 {
		return 0, fmt.Errorf("startxref not found in PDF")
	}

	// The offset is the first integer after the keyword; tolerate any
	// line-ending convention.
	fields := strings.Fields(content[idx+len("startxref"):])
	if len(fields) == 0 {
		return 0, fmt.Errorf("invalid startxref format")
	}
	offset, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid xref offset: %w", err)
	}

	return offset, nil
}

// ParseXRef parses the cross-reference section at the given byte offset,
// dispatching on its form: a classic table begins with the "xref" keyword,
// a cross-reference stream with an indirect object header.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to xref: %w", err)
	}

	isStream, err := x.isXRefStream()
	if err != nil {
		return nil, err
	}

	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to xref: %w", err)
	}

	if isStream {
		return x.parseXRefStream()
	}
	return x.parseXRefTable()
}

// isXRefStream inspects the bytes at the current position without deciding
// more than the section form: "xref" means a classic table, "N G obj" means
// a cross-reference stream, anything else is malformed.
func (x *XRefParser) isXRefStream() (bool, error) {
	pos, err := x.reader.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, err
	}

	buf := make([]byte, 32)
	n, err := x.reader.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}
	buf = buf[:n]

	if _, err := x.reader.Seek(pos, io.SeekStart); err != nil {
		return false, err
	}

	content := strings.TrimLeft(string(buf), " \t\r\n\x00")
	if strings.HasPrefix(content, "xref") {
		return false, nil
	}

	// "N G obj" header
	fields := strings.Fields(content)
	if len(fields) >= 3 {
		_, err1 := strconv.Atoi(fields[0])
		_, err2 := strconv.Atoi(fields[1])
		if err1 == nil && err2 == nil && strings.HasPrefix(fields[2], "obj") {
			return true, nil
		}
	}

	return false, fmt.Errorf("cross-reference section has neither 'xref' keyword nor object header")
}

// parseXRefTable parses a classic cross-reference table at the current
// position.
func (x *XRefParser) parseXRefTable() (*XRefTable, error) {
	scanner := bufio.NewScanner(x.reader)

	if !scanner.Scan() {
		return nil, fmt.Errorf("failed to read xref keyword")
	}
	line := strings.TrimSpace(scanner.Text())
	if line != "xref" {
		return nil, fmt.Errorf("expected 'xref' keyword, got '%s'", line)
	}

	table := NewXRefTable()
	foundTrailer := false

	for scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "trailer" {
			trailer, err := x.parseTrailer(scanner)
			if err != nil {
				return nil, fmt.Errorf("failed to parse trailer: %w", err)
			}
			table.Trailer = trailer
			foundTrailer = true
			break
		}

		// Subsection header: firstObjNum count
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid subsection header: %s", line)
		}

		firstObjNum, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid first object number: %w", err)
		}

		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid count: %w", err)
		}

		for i := 0; i < count; i++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected end of xref subsection")
			}

			entry, err := x.parseEntry(scanner.Text())
			if err != nil {
				return nil, fmt.Errorf("failed to parse xref entry: %w", err)
			}

			table.Set(firstObjNum+i, entry)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	if !foundTrailer {
		return nil, fmt.Errorf("xref table missing trailer")
	}

	return table, nil
}

// parseEntry parses a single classic entry line.
// Format: "nnnnnnnnnn ggggg n" (in use) or "nnnnnnnnnn ggggg f" (free).
func (x *XRefParser) parseEntry(line string) (*XRefEntry, error) {
	if len(line) < 18 {
		return nil, fmt.Errorf("xref entry too short: %q", line)
	}

	offsetStr := strings.TrimSpace(line[0:10])
	genStr := strings.TrimSpace(line[10:16])
	flag := strings.TrimSpace(line[16:18])

	offset, err := strconv.ParseInt(offsetStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid offset %q: %w", offsetStr, err)
	}

	generation, err := strconv.Atoi(genStr)
	if err != nil {
		return nil, fmt.Errorf("invalid generation %q: %w", genStr, err)
	}

	entry := &XRefEntry{
		Offset:     offset,
		Generation: generation,
	}
	switch flag {
	case "n":
		entry.Type = XRefEntryUncompressed
		entry.InUse = true
	case "f":
		entry.Type = XRefEntryFree
	default:
		return nil, fmt.Errorf("invalid in-use flag: %q", flag)
	}

	return entry, nil
}

// parseTrailer parses the trailer dictionary after the "trailer" keyword.
// Lines are collected until the << >> nesting balances, then handed to the
// object parser.
func (x *XRefParser) parseTrailer(scanner *bufio.Scanner) (Dict, error) {
	var dictText strings.Builder
	depth := 0
	started := false

	for scanner.Scan() {
		line := scanner.Text()
		dictText.WriteString(line)
		dictText.WriteString("\n")

		for i := 0; i+1 < len(line); i++ {
			switch {
			case line[i] == '<' && line[i+1] == '<':
				depth++
				started = true
				i++
			case line[i] == '>' && line[i+1] == '>':
				depth--
				i++
			}
		}
		if started && depth <= 0 {
			break
		}
	}

	parser := NewParser(strings.NewReader(dictText.String()))
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trailer dictionary: %w", err)
	}

	dict, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is not a dictionary, got %T", obj)
	}

	return dict, nil
}

// ParseXRefFromEOF finds and parses the newest cross-reference section.
func (x *XRefParser) ParseXRefFromEOF() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, fmt.Errorf("failed to find xref: %w", err)
	}

	table, err := x.ParseXRef(offset)
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref: %w", err)
	}

	return table, nil
}

// MergeXRefTables merges cross-reference tables from incremental updates.
// Tables are given oldest first; later entries override earlier ones.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	if len(tables) == 0 {
		return NewXRefTable()
	}

	merged := NewXRefTable()
	for _, table := range tables {
		for objNum, entry := range table.Entries {
			merged.Set(objNum, entry)
		}
		merged.Trailer = table.Trailer
		merged.IsStream = table.IsStream
	}

	return merged
}

// ParseAllXRefs parses the newest cross-reference section and follows the
// /Prev chain through every incremental update, returning tables oldest
// first. Hybrid files (classic table plus /XRefStm) have the stream's
// entries layered over the table's within the same update.
func (x *XRefParser) ParseAllXRefs() ([]*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, fmt.Errorf("failed to find xref: %w", err)
	}

	var tables []*XRefTable
	visited := make(map[int64]bool)

	for {
		if visited[offset] {
			return nil, fmt.Errorf("cross-reference /Prev chain loops at offset %d", offset)
		}
		visited[offset] = true

		table, err := x.ParseXRef(offset)
		if err != nil {
			return nil, fmt.Errorf("failed to parse xref at offset %d: %w", offset, err)
		}

		// Hybrid file: the classic trailer points at a cross-reference
		// stream holding the entries for object-stream members.
		if stm, ok := table.Trailer.GetInt("XRefStm"); ok && !table.IsStream {
			stmTable, err := x.ParseXRef(int64(stm))
			if err != nil {
				return nil, fmt.Errorf("failed to parse hybrid xref stream: %w", err)
			}
			for objNum, entry := range stmTable.Entries {
				table.Set(objNum, entry)
			}
		}

		// Prepend: oldest table must end up first.
		tables = append([]*XRefTable{table}, tables...)

		prev, ok := table.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}

	return tables, nil
}
