package dst

import (
	"github.com/pkg/errors"
)

var (
	// ErrMalformedRecordStream means a stitch region is not a whole number
	// of records.
	ErrMalformedRecordStream = errors.New("Malformed record stream")

	// ErrShortDesign means a buffer is too small to hold a header block.
	ErrShortDesign = errors.New("Design is shorter than the header block")

	// ErrHeaderSize means a header block is not exactly HeaderSize bytes.
	ErrHeaderSize = errors.New("Header block has the wrong size")

	// ErrEmptyMergeRequest means there were no designs to merge.
	ErrEmptyMergeRequest = errors.New("No designs to merge")
)

// A Design is one design buffer split into its two regions. Both slices
// share memory with the buffer given to Split.
type Design struct {
	Header   []byte
	Stitches []byte
}

// Split separates a design buffer into its header block and stitch region.
// Nothing is copied.
func Split(buf []byte) (Design, error) {
	if len(buf) < HeaderSize {
		return Design{}, errors.Wrapf(ErrShortDesign, "%d bytes", len(buf))
	}
	d := Design{
		Header:   buf[:HeaderSize:HeaderSize],
		Stitches: buf[HeaderSize:],
	}
	if len(d.Stitches)%RecordSize != 0 {
		return Design{}, errors.Wrapf(ErrMalformedRecordStream, "stitch region is %d bytes", len(d.Stitches))
	}
	return d, nil
}

// Filter returns the movement stitches of the given stitch region in their
// original order. Every color change and end marker is removed, wherever it
// appears. The records kept are copied unchanged into a new slice.
func Filter(stitches []byte) ([]byte, error) {
	if len(stitches)%RecordSize != 0 {
		return nil, errors.Wrapf(ErrMalformedRecordStream, "stitch region is %d bytes", len(stitches))
	}
	result := make([]byte, 0, len(stitches))
	for i := 0; i < len(stitches); i += RecordSize {
		if Classify(recordAt(stitches, i)) != Stitch {
			continue
		}
		result = append(result, stitches[i:i+RecordSize]...)
	}
	return result, nil
}

// Merge joins filtered stitch streams in the order given, and wraps them
// with a leading color change and a trailing end marker. The result has
// length 6 plus the total length of the streams. The streams are not checked
// for control records; pass them through Filter first.
func Merge(streams [][]byte) ([]byte, error) {
	if len(streams) == 0 {
		return nil, ErrEmptyMergeRequest
	}
	n := 2 * RecordSize
	for _, s := range streams {
		n += len(s)
	}
	result := make([]byte, n)
	offset := copy(result, ColorChangeRecord[:])
	for _, s := range streams {
		offset += copy(result[offset:], s)
	}
	copy(result[offset:], EndRecord[:])
	return result, nil
}

// AttachHeader returns header followed by payload. The header is copied as
// is; fields such as the stitch count are not recomputed.
func AttachHeader(header, payload []byte) ([]byte, error) {
	if len(header) != HeaderSize {
		return nil, errors.Wrapf(ErrHeaderSize, "%d bytes", len(header))
	}
	result := make([]byte, len(header)+len(payload))
	n := copy(result, header)
	copy(result[n:], payload)
	return result, nil
}

// MergeDesigns merges complete design buffers, given in stitching order, into
// a single design. Every buffer is validated and filtered before anything is
// assembled, so an error in any input means no output is produced. Errors
// name the zero based index of the offending design.
//
// The header of the result is the header of bufs[0].
func MergeDesigns(bufs [][]byte) ([]byte, error) {
	if len(bufs) == 0 {
		return nil, ErrEmptyMergeRequest
	}
	var header []byte
	filtered := make([][]byte, len(bufs))
	for i, buf := range bufs {
		d, err := Split(buf)
		if err != nil {
			return nil, errors.WithMessagef(err, "design %d", i)
		}
		if i == 0 {
			header = d.Header
		}
		filtered[i], err = Filter(d.Stitches)
		if err != nil {
			return nil, errors.WithMessagef(err, "design %d", i)
		}
	}
	payload, err := Merge(filtered)
	if err != nil {
		return nil, err
	}
	return AttachHeader(header, payload)
}

// Counts is the number of records of each kind in a stitch region.
type Counts struct {
	Stitches     int
	ColorChanges int
	Ends         int
}

// Records returns the total number of records counted.
func (c Counts) Records() int {
	return c.Stitches + c.ColorChanges + c.Ends
}

// Count tallies the records in a stitch region by kind.
func Count(stitches []byte) (Counts, error) {
	var c Counts
	if len(stitches)%RecordSize != 0 {
		return c, errors.Wrapf(ErrMalformedRecordStream, "stitch region is %d bytes", len(stitches))
	}
	for i := 0; i < len(stitches); i += RecordSize {
		switch Classify(recordAt(stitches, i)) {
		case Stitch:
			c.Stitches++
		case ColorChange:
			c.ColorChanges++
		case End:
			c.Ends++
		}
	}
	return c, nil
}
