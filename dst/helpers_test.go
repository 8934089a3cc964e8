package dst

import (
	"bytes"
	"fmt"
)

// makeHeader builds a header block with the given label, laid out the way
// digitizing software writes it.
func makeHeader(label string, stitches int) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "LA:%-16s\r", label)
	fmt.Fprintf(&b, "ST:%7d\r", stitches)
	fmt.Fprintf(&b, "CO:%3d\r", 0)
	fmt.Fprintf(&b, "+X:%5d\r-X:%5d\r+Y:%5d\r-Y:%5d\r", 120, 80, 200, 10)
	fmt.Fprintf(&b, "AX:+%5d\rAY:-%5d\rMX:+%5d\rMY:+%5d\r", 3, 14, 0, 0)
	b.WriteString("PD:******\r")
	b.WriteByte(headerEOF)
	for b.Len() < HeaderSize {
		b.WriteByte(' ')
	}
	return b.Bytes()
}

// makeDesign returns a header followed by the given records.
func makeDesign(label string, records ...Record) []byte {
	buf := makeHeader(label, len(records))
	for _, r := range records {
		buf = append(buf, r[:]...)
	}
	return buf
}

func join(records ...Record) []byte {
	result := []byte{}
	for _, r := range records {
		result = append(result, r[:]...)
	}
	return result
}
