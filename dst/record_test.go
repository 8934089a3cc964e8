package dst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	var table = []struct {
		input  Record
		output Kind
	}{
		{Record{0x00, 0x00, 0xF0}, ColorChange},
		{Record{0x12, 0x34, 0xF0}, ColorChange},
		{Record{0x00, 0x00, 0xF3}, End},
		{Record{0xF3, 0xF0, 0xF3}, End},
		{Record{0x00, 0x00, 0x00}, Stitch},
		{Record{0x00, 0x00, 0x03}, Stitch},
		{Record{0x00, 0x00, 0x83}, Stitch}, // jump
		{Record{0xF0, 0xF3, 0x01}, Stitch},
		{Record{0x00, 0x00, 0xF1}, Stitch},
		{Record{0x00, 0x00, 0xC3}, Stitch},
	}
	for _, row := range table {
		assert.Equal(t, row.output, Classify(row.input), "record % x", row.input[:])
	}
}

func TestClassifyAllThirdBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		k := Classify(Record{0x55, 0xAA, byte(b)})
		switch b {
		case 0xF0:
			assert.Equal(t, ColorChange, k)
		case 0xF3:
			assert.Equal(t, End, k)
		default:
			assert.Equal(t, Stitch, k, "third byte %#x", b)
		}
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "stitch", Stitch.String())
	assert.Equal(t, "color-change", ColorChange.String())
	assert.Equal(t, "end", End.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
