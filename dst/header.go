package dst

import (
	"bytes"
	"strconv"
	"strings"
)

// Header holds the fields found in a DST header block. It is only used to
// describe a design; a merged design always carries the header bytes of its
// first input unchanged.
type Header struct {
	Label        string // LA
	StitchCount  int    // ST
	ColorChanges int    // CO
	PlusX        int    // +X, in 0.1 mm
	MinusX       int    // -X
	PlusY        int    // +Y
	MinusY       int    // -Y
	AX, AY       int    // offset of the last stitch
	MX, MY       int    // offset of the previous file in a multi-volume design
	PD           string

	// Fields has the raw value of every field found, keyed by its two
	// character name. Values are trimmed of surrounding spaces.
	Fields map[string]string
}

// headerEOF ends the text part of the header.
const headerEOF = 0x1A

// ParseHeader reads the text fields of a header block. It never fails:
// fields that are missing or not numbers are left as zero, and anything it
// cannot recognize is skipped.
func ParseHeader(block []byte) Header {
	h := Header{Fields: make(map[string]string)}
	if i := bytes.IndexByte(block, headerEOF); i >= 0 {
		block = block[:i]
	}
	lines := bytes.FieldsFunc(block, func(r rune) bool { return r == '\r' || r == '\n' })
	for _, line := range lines {
		if len(line) < 3 || line[2] != ':' {
			continue
		}
		key := string(line[:2])
		value := strings.TrimSpace(string(line[3:]))
		h.Fields[key] = value
		switch key {
		case "LA":
			h.Label = value
		case "ST":
			h.StitchCount = atoi(value)
		case "CO":
			h.ColorChanges = atoi(value)
		case "+X":
			h.PlusX = atoi(value)
		case "-X":
			h.MinusX = atoi(value)
		case "+Y":
			h.PlusY = atoi(value)
		case "-Y":
			h.MinusY = atoi(value)
		case "AX":
			h.AX = atoi(value)
		case "AY":
			h.AY = atoi(value)
		case "MX":
			h.MX = atoi(value)
		case "MY":
			h.MY = atoi(value)
		case "PD":
			h.PD = value
		}
	}
	return h
}

// atoi parses signed numbers that may have spaces between the sign and the
// digits, e.g. "+   12". Anything else gives 0.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.Replace(s, " ", "", -1))
	if err != nil {
		return 0
	}
	return n
}
