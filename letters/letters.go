// Package letters finds and loads the single letter designs a word is built
// from.
//
// Letter sets are stored once per word length, since shorter words are
// stitched with larger letters. The layout is
//
//	letters1/A1.dst ... letters10/Z10.dst
//	letters1112/A.dst ... letters1112/Z.dst
//
// where words of 11 and 12 letters share one set.
package letters

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ndlib/monogram/dst"
	"github.com/ndlib/monogram/store"
)

// MaxLetters is the longest word that can be made.
const MaxLetters = 12

var (
	// ErrEmptyWord means the word has no letters between A and Z. It
	// matches dst.ErrEmptyMergeRequest with errors.Is.
	ErrEmptyWord = errors.WithMessage(dst.ErrEmptyMergeRequest, "Word has no letters A-Z")

	// ErrTooManyLetters means the word is longer than MaxLetters.
	ErrTooManyLetters = errors.Errorf("Word has more than %d letters", MaxLetters)

	// ErrMissingLetter is matched by every MissingLetterError.
	ErrMissingLetter = errors.New("Letter design is missing")
)

// Normalize upper-cases word and keeps only the letters A through Z. Other
// characters, including spaces and digits, are dropped.
func Normalize(word string) ([]byte, error) {
	word = strings.ToUpper(strings.TrimSpace(word))
	var result []byte
	for i := 0; i < len(word); i++ {
		if c := word[i]; 'A' <= c && c <= 'Z' {
			result = append(result, c)
		}
	}
	switch {
	case len(result) == 0:
		return nil, ErrEmptyWord
	case len(result) > MaxLetters:
		return nil, ErrTooManyLetters
	}
	return result, nil
}

// setName returns the directory holding the letter set for words of the
// given length.
func setName(wordLen int) string {
	if wordLen == 11 || wordLen == 12 {
		return "letters1112"
	}
	if wordLen < 1 {
		wordLen = 1
	} else if wordLen > 10 {
		wordLen = 10
	}
	return fmt.Sprintf("letters%d", wordLen)
}

// Key returns the storage key of the design for letter in a word of
// wordLen letters. Lengths outside 1 to 12 are clamped to 1 to 10.
func Key(wordLen int, letter byte) string {
	set := setName(wordLen)
	if set == "letters1112" {
		return fmt.Sprintf("%s/%c%s", set, letter, dst.Extension)
	}
	return fmt.Sprintf("%s/%c%s%s", set, letter, strings.TrimPrefix(set, "letters"), dst.Extension)
}

// Available returns the letters which have a design in s for words of the
// given length, in alphabetical order.
func Available(s store.ROStore, wordLen int) ([]byte, error) {
	keys, err := s.ListPrefix(setName(wordLen) + "/")
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	var result []byte
	for c := byte('A'); c <= 'Z'; c++ {
		if present[Key(wordLen, c)] {
			result = append(result, c)
		}
	}
	return result, nil
}

// A MissingLetterError is returned when the design for a letter could not be
// loaded.
type MissingLetterError struct {
	Letter byte
	Key    string
	Err    error // the error from the store
}

func (e *MissingLetterError) Error() string {
	return fmt.Sprintf("No design for letter %c (%s): %v", e.Letter, e.Key, e.Err)
}

// Is lets errors.Is(err, ErrMissingLetter) match.
func (e *MissingLetterError) Is(target error) bool {
	return target == ErrMissingLetter
}

func (e *MissingLetterError) Unwrap() error { return e.Err }
