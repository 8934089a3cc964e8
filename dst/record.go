package dst

const (
	// HeaderSize is the size in bytes of the header block at the start of
	// every design.
	HeaderSize = 512

	// RecordSize is the size in bytes of one stitch record.
	RecordSize = 3

	// CodeColorChange in the third byte of a record marks a color change.
	CodeColorChange = 0xF0

	// CodeEnd in the third byte of a record marks the end of the design.
	CodeEnd = 0xF3

	// Extension is the file extension used for designs.
	Extension = ".dst"
)

// A Record is a single stitch record.
type Record [RecordSize]byte

var (
	// ColorChangeRecord is the color change written at the start of a merged
	// design.
	ColorChangeRecord = Record{0x00, 0x00, CodeColorChange}

	// EndRecord is the end marker written at the end of a merged design.
	EndRecord = Record{0x00, 0x00, CodeEnd}
)

// Kind is the classification of a stitch record.
type Kind int

const (
	Stitch      Kind = iota // a movement stitch; the record is data
	ColorChange             // a color change command
	End                     // the end of design marker
)

func (k Kind) String() string {
	switch k {
	case Stitch:
		return "stitch"
	case ColorChange:
		return "color-change"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Classify returns the kind of the given record. Only the third byte is
// looked at.
func Classify(r Record) Kind {
	switch r[2] {
	case CodeColorChange:
		return ColorChange
	case CodeEnd:
		return End
	}
	return Stitch
}

// recordAt returns the record starting at offset i of b.
func recordAt(b []byte, i int) Record {
	return Record{b[i], b[i+1], b[i+2]}
}
