package contentstream

import (
	"bytes"
	"strconv"
)

// Builder assembles a content stream from drawing operations. Operators
// are written one per line, in the order the methods are called.
type Builder struct {
	buf bytes.Buffer
}

// NewBuilder creates an empty content stream builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SaveState pushes the graphics state (the q operator).
func (b *Builder) SaveState() *Builder {
	b.buf.WriteString("q\n")
	return b
}

// RestoreState pops the graphics state (the Q operator).
func (b *Builder) RestoreState() *Builder {
	b.buf.WriteString("Q\n")
	return b
}

// Transform concatenates the matrix [scaleX skewY skewX scaleY translateX
// translateY] onto the current transformation matrix (the cm operator).
func (b *Builder) Transform(scaleX, skewY, skewX, scaleY, translateX, translateY float64) *Builder {
	for _, v := range [6]float64{scaleX, skewY, skewX, scaleY, translateX, translateY} {
		b.buf.WriteString(formatNumber(v))
		b.buf.WriteByte(' ')
	}
	b.buf.WriteString("cm\n")
	return b
}

// DrawXObject paints the named XObject (the Do operator).
func (b *Builder) DrawXObject(name string) *Builder {
	b.buf.WriteByte('/')
	b.buf.WriteString(name)
	b.buf.WriteString(" Do\n")
	return b
}

// Bytes returns the assembled content stream.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// Len returns the assembled length in bytes.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// formatNumber renders a coordinate with the fewest digits that survive
// a round trip.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
