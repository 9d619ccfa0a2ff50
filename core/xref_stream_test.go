package core

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// xrefStreamObject assembles an indirect cross-reference stream object
// with zlib-compressed entry data. The meta string carries the fields
// that vary per fixture, such as /Size, /W, and /Index.
func xrefStreamObject(t *testing.T, meta string, entries []byte) []byte {
	t.Helper()

	compressed := flateEncode(entries)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "5 0 obj\n<< /Type /XRef %s /Filter /FlateDecode /Length %d >>\nstream\n",
		meta, len(compressed))
	buf.Write(compressed)
	buf.WriteString("\nendstream\nendobj\n")
	return buf.Bytes()
}

func TestSectionFormDetection(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantStream bool
		wantErr    bool
	}{
		{
			name:    "classic keyword",
			content: "xref\n0 6\n",
		},
		{
			name:       "object header",
			content:    "5 0 obj\n<< /Type /XRef >>",
			wantStream: true,
		},
		{
			name:       "leading whitespace before header",
			content:    " \r\n12 0 obj\n<< /Type /XRef >>",
			wantStream: true,
		},
		{
			name:    "neither form",
			content: "invalid content",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewXRefParser(strings.NewReader(tt.content))
			isStream, err := parser.isXRefStream()
			if tt.wantErr {
				if err == nil {
					t.Fatal("isXRefStream succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("isXRefStream failed: %v", err)
			}
			if isStream != tt.wantStream {
				t.Errorf("isXRefStream = %v, want %v", isStream, tt.wantStream)
			}
		})
	}
}

func TestReadBigEndianInt(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		width int
		want  int64
	}{
		{"one byte", []byte{0x42}, 1, 0x42},
		{"two bytes", []byte{0x12, 0x34}, 2, 0x1234},
		{"three bytes", []byte{0x12, 0x34, 0x56}, 3, 0x123456},
		{"four bytes", []byte{0x00, 0x00, 0x10, 0x00}, 4, 4096},
		{"zero width", []byte{0xFF}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readBigEndianInt(tt.data, tt.width); got != tt.want {
				t.Errorf("readBigEndianInt = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseStreamEntry(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		w        []int
		want     XRefEntry
		wantRead int
		wantErr  bool
	}{
		{
			name:     "uncompressed",
			data:     []byte{0x01, 0x10, 0x00, 0x00},
			w:        []int{1, 2, 1},
			want:     XRefEntry{Type: XRefEntryUncompressed, Offset: 4096, InUse: true},
			wantRead: 4,
		},
		{
			name:     "free",
			data:     []byte{0x00, 0x00, 0x05, 0x03},
			w:        []int{1, 2, 1},
			want:     XRefEntry{Type: XRefEntryFree, Offset: 5, Generation: 3},
			wantRead: 4,
		},
		{
			name:     "compressed",
			data:     []byte{0x02, 0x00, 0x0A, 0x02},
			w:        []int{1, 2, 1},
			want:     XRefEntry{Type: XRefEntryCompressed, StreamNum: 10, StreamIdx: 2, InUse: true},
			wantRead: 4,
		},
		{
			name:     "implicit type for zero width",
			data:     []byte{0x03, 0xE8, 0x00},
			w:        []int{0, 2, 1},
			want:     XRefEntry{Type: XRefEntryUncompressed, Offset: 1000, InUse: true},
			wantRead: 3,
		},
		{
			name:     "unknown type treated as free",
			data:     []byte{0x05, 0x00, 0x01, 0x00},
			w:        []int{1, 2, 1},
			want:     XRefEntry{Type: XRefEntryFree},
			wantRead: 4,
		},
		{
			name:    "truncated",
			data:    []byte{0x01},
			w:       []int{1, 2, 1},
			wantErr: true,
		},
	}

	parser := NewXRefParser(strings.NewReader(""))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, n, err := parser.parseXRefStreamEntry(tt.data, tt.w)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseXRefStreamEntry succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseXRefStreamEntry failed: %v", err)
			}
			if n != tt.wantRead {
				t.Errorf("bytes read = %d, want %d", n, tt.wantRead)
			}
			if *entry != tt.want {
				t.Errorf("entry = %+v, want %+v", *entry, tt.want)
			}
		})
	}
}

func TestParseXRefStream(t *testing.T) {
	entries := []byte{
		0x00, 0x00, 0x00, 0xFF, 0xFF, // object 0: free, generation 65535
		0x01, 0x00, 0x0F, 0x00, 0x00, // object 1: offset 15
		0x01, 0x00, 0x64, 0x00, 0x00, // object 2: offset 100
	}
	content := xrefStreamObject(t, "/Size 3 /W [1 2 2] /Root 1 0 R", entries)

	parser := NewXRefParser(bytes.NewReader(content))
	table, err := parser.ParseXRef(0)
	if err != nil {
		t.Fatalf("ParseXRef failed: %v", err)
	}

	if !table.IsStream {
		t.Error("IsStream = false for a cross-reference stream")
	}
	if table.Size() != 3 {
		t.Errorf("table size = %d, want 3", table.Size())
	}

	want := []XRefEntry{
		{Type: XRefEntryFree, Generation: 65535},
		{Type: XRefEntryUncompressed, Offset: 15, InUse: true},
		{Type: XRefEntryUncompressed, Offset: 100, InUse: true},
	}
	for objNum, w := range want {
		entry, ok := table.Get(objNum)
		if !ok {
			t.Errorf("object %d missing from table", objNum)
			continue
		}
		if *entry != w {
			t.Errorf("object %d = %+v, want %+v", objNum, *entry, w)
		}
	}

	root, ok := table.Trailer.GetIndirectRef("Root")
	if !ok {
		t.Fatal("stream dictionary missing /Root")
	}
	if root.Number != 1 {
		t.Errorf("/Root number = %d, want 1", root.Number)
	}
}

// TestParseXRefStreamIndex covers the /Index array: subsection pairs
// replace the default [0 Size] numbering.
func TestParseXRefStreamIndex(t *testing.T) {
	entries := []byte{
		0x01, 0x00, 0x64, 0x00, // object 10: offset 100
		0x01, 0x00, 0xC8, 0x00, // object 11: offset 200
		0x01, 0x01, 0x2C, 0x00, // object 20: offset 300
		0x01, 0x01, 0x90, 0x00, // object 21: offset 400
	}
	content := xrefStreamObject(t, "/Size 22 /Index [10 2 20 2] /W [1 2 1]", entries)

	parser := NewXRefParser(bytes.NewReader(content))
	table, err := parser.ParseXRef(0)
	if err != nil {
		t.Fatalf("ParseXRef failed: %v", err)
	}

	if table.Size() != 4 {
		t.Errorf("table size = %d, want 4", table.Size())
	}

	wantOffsets := map[int]int64{10: 100, 11: 200, 20: 300, 21: 400}
	for objNum, wantOffset := range wantOffsets {
		entry, ok := table.Get(objNum)
		if !ok {
			t.Errorf("object %d missing from table", objNum)
			continue
		}
		if entry.Offset != wantOffset {
			t.Errorf("object %d offset = %d, want %d", objNum, entry.Offset, wantOffset)
		}
	}
	for _, objNum := range []int{0, 15} {
		if _, ok := table.Get(objNum); ok {
			t.Errorf("object %d present, want absent", objNum)
		}
	}
}

func TestParseXRefStreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing /Type",
			content: "5 0 obj\n<< /Size 1 /W [1 2 1] /Length 0 >>\nstream\nendstream\nendobj\n",
		},
		{
			name:    "wrong /Type",
			content: "5 0 obj\n<< /Type /Page /Size 1 /W [1 2 1] /Length 0 >>\nstream\nendstream\nendobj\n",
		},
		{
			name:    "missing /Size",
			content: "5 0 obj\n<< /Type /XRef /W [1 2 1] /Length 0 >>\nstream\nendstream\nendobj\n",
		},
		{
			name:    "missing /W",
			content: "5 0 obj\n<< /Type /XRef /Size 10 /Length 0 >>\nstream\nendstream\nendobj\n",
		},
		{
			name:    "short /W",
			content: "5 0 obj\n<< /Type /XRef /Size 10 /W [1 2] /Length 0 >>\nstream\nendstream\nendobj\n",
		},
		{
			name:    "oversized /W field",
			content: "5 0 obj\n<< /Type /XRef /Size 10 /W [1 9 1] /Length 0 >>\nstream\nendstream\nendobj\n",
		},
		{
			name:    "all-zero /W",
			content: "5 0 obj\n<< /Type /XRef /Size 10 /W [0 0 0] /Length 0 >>\nstream\nendstream\nendobj\n",
		},
		{
			name:    "odd /Index length",
			content: "5 0 obj\n<< /Type /XRef /Size 10 /W [1 2 1] /Index [10] /Length 0 >>\nstream\nendstream\nendobj\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewXRefParser(strings.NewReader(tt.content))
			if _, err := parser.parseXRefStream(); err == nil {
				t.Error("parseXRefStream succeeded, want error")
			}
		})
	}
}

// TestParseXRefDispatch verifies that ParseXRef picks the right parser
// for each section form.
func TestParseXRefDispatch(t *testing.T) {
	t.Run("classic table", func(t *testing.T) {
		content := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 >>\n"
		parser := NewXRefParser(strings.NewReader(content))
		table, err := parser.ParseXRef(0)
		if err != nil {
			t.Fatalf("ParseXRef failed: %v", err)
		}
		if table.IsStream {
			t.Error("IsStream = true for a classic table")
		}
	})

	t.Run("cross-reference stream", func(t *testing.T) {
		content := xrefStreamObject(t, "/Size 1 /W [1 2 2]", []byte{0x00, 0x00, 0x00, 0xFF, 0xFF})
		parser := NewXRefParser(bytes.NewReader(content))
		table, err := parser.ParseXRef(0)
		if err != nil {
			t.Fatalf("ParseXRef failed: %v", err)
		}
		if !table.IsStream {
			t.Error("IsStream = false for a cross-reference stream")
		}
	})
}

// TestParseAllXRefsHybrid builds a hybrid file: a classic table whose
// trailer names a /XRefStm holding the entries for object-stream
// members. The stream's entries layer over the table's.
func TestParseAllXRefsHybrid(t *testing.T) {
	var doc bytes.Buffer
	doc.WriteString("%PDF-1.4\n")

	stmOffset := doc.Len()
	doc.Write(xrefStreamObject(t, "/Size 3 /Index [2 1] /W [1 2 1]", []byte{
		0x02, 0x00, 0x05, 0x00, // object 2: in object stream 5, index 0
	}))

	tableOffset := doc.Len()
	fmt.Fprintf(&doc, "xref\n0 2\n0000000000 65535 f \n0000000017 00000 n \ntrailer\n<< /Size 3 /Root 1 0 R /XRefStm %d >>\n", stmOffset)
	fmt.Fprintf(&doc, "startxref\n%d\n%%%%EOF\n", tableOffset)

	parser := NewXRefParser(bytes.NewReader(doc.Bytes()))
	tables, err := parser.ParseAllXRefs()
	if err != nil {
		t.Fatalf("ParseAllXRefs failed: %v", err)
	}

	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	table := tables[0]
	if table.IsStream {
		t.Error("IsStream = true, want the classic table's form")
	}
	if table.Size() != 3 {
		t.Errorf("table size = %d, want 3", table.Size())
	}

	entry, ok := table.Get(1)
	if !ok {
		t.Fatal("object 1 missing from table")
	}
	if entry.Type != XRefEntryUncompressed || entry.Offset != 17 {
		t.Errorf("object 1 = %+v, want uncompressed at offset 17", entry)
	}

	entry, ok = table.Get(2)
	if !ok {
		t.Fatal("object 2 missing from table")
	}
	if entry.Type != XRefEntryCompressed || entry.StreamNum != 5 || entry.StreamIdx != 0 {
		t.Errorf("object 2 = %+v, want compressed in stream 5 index 0", entry)
	}
}
