package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tsawler/imprint/core"
)

// pdfHeader is the version line plus a binary comment marking the file
// as 8-bit data for transfer tools.
const pdfHeader = "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"

// Bytes serializes the document: header, objects in ascending number
// order, a classic cross-reference table, and a trailer naming the
// catalog and Info dictionary.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo serializes the document to w. It implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	b, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

func (d *Document) serialize(buf *bytes.Buffer) error {
	if d.root.Number == 0 {
		return errors.New("document has no catalog")
	}
	for i, obj := range d.objs {
		if obj == nil {
			return fmt.Errorf("object %d reserved but never set", i+1)
		}
	}

	buf.WriteString(pdfHeader)

	offsets := make([]int64, len(d.objs))
	for i, obj := range d.objs {
		offsets[i] = int64(buf.Len())
		fmt.Fprintf(buf, "%d 0 obj\n", i+1)
		writeObject(buf, obj)
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", len(d.objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(buf, "%010d 00000 n \n", off)
	}

	trailer := core.Dict{
		"Size": core.Int(len(d.objs) + 1),
		"Root": d.root,
	}
	if d.info.Number != 0 {
		trailer.Set("Info", d.info)
	}
	buf.WriteString("trailer\n")
	writeObject(buf, trailer)
	fmt.Fprintf(buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return nil
}

// writeObject serializes obj in PDF syntax. Dictionary keys are written
// in sorted order so output is deterministic.
func writeObject(buf *bytes.Buffer, obj core.Object) {
	switch o := obj.(type) {
	case core.Dict:
		buf.WriteString("<<")
		for _, key := range o.SortedKeys() {
			buf.WriteString(" /")
			buf.WriteString(key)
			buf.WriteByte(' ')
			writeObject(buf, o[key])
		}
		buf.WriteString(" >>")

	case core.Array:
		buf.WriteByte('[')
		for i, item := range o {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeObject(buf, item)
		}
		buf.WriteByte(']')

	case core.String:
		buf.WriteByte('(')
		for i := 0; i < len(o); i++ {
			c := o[i]
			if c == '(' || c == ')' || c == '\\' {
				buf.WriteByte('\\')
			}
			buf.WriteByte(c)
		}
		buf.WriteByte(')')

	case *core.Stream:
		writeObject(buf, o.Dict)
		buf.WriteString("\nstream\n")
		buf.Write(o.Data)
		buf.WriteString("\nendstream")

	case nil:
		buf.WriteString("null")

	default:
		// Name, Int, Real, Bool, Null, and IndirectRef all print
		// their PDF form.
		buf.WriteString(o.String())
	}
}
