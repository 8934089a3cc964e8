package monogram

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ndlib/monogram/dst"
	"github.com/ndlib/monogram/letters"
)

// Result is a merged design for a word.
type Result struct {
	Word    string // the normalized word
	Letters []byte // the letters which were merged, in order
	Data    []byte // the DST file
}

// Filename is the name the design should be delivered under.
func (r *Result) Filename() string {
	return r.Word + dst.Extension
}

// Generate makes the design for word using letter designs loaded by f.
// The word is normalized first, so "o'brien" produces OBRIEN.dst.
//
// The errors returned can be tested with errors.Is against
// letters.ErrEmptyWord, letters.ErrTooManyLetters, letters.ErrMissingLetter,
// and dst.ErrMalformedRecordStream. No partial design is ever returned.
func Generate(ctx context.Context, f *letters.Fetcher, word string) (*Result, error) {
	norm, err := letters.Normalize(word)
	if err != nil {
		return nil, err
	}
	designs, err := f.Fetch(ctx, norm)
	if err != nil {
		return nil, err
	}
	data, err := dst.MergeDesigns(designs)
	if err != nil {
		return nil, errors.WithMessagef(err, "word %s", norm)
	}
	return &Result{
		Word:    string(norm),
		Letters: norm,
		Data:    data,
	}, nil
}
