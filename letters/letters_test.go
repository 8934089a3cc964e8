package letters

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndlib/monogram/dst"
	"github.com/ndlib/monogram/store"
)

func TestNormalize(t *testing.T) {
	var table = []struct {
		input  string
		output string
		err    error
	}{
		{"a", "A", nil},
		{"  Hello ", "HELLO", nil},
		{"o'brien", "OBRIEN", nil},
		{"R2D2", "RD", nil},
		{"abcdefghijkl", "ABCDEFGHIJKL", nil},
		{"abcdefghijklm", "", ErrTooManyLetters},
		{"", "", ErrEmptyWord},
		{"   ", "", ErrEmptyWord},
		{"1234!", "", ErrEmptyWord},
		{"ÉCOLE", "COLE", nil},
	}
	for _, row := range table {
		result, err := Normalize(row.input)
		assert.Equal(t, row.err, err, "input %q", row.input)
		assert.Equal(t, row.output, string(result), "input %q", row.input)
	}
}

func TestEmptyWordIsEmptyMergeRequest(t *testing.T) {
	assert.True(t, errors.Is(ErrEmptyWord, dst.ErrEmptyMergeRequest))
}

func TestKey(t *testing.T) {
	var table = []struct {
		length int
		letter byte
		key    string
	}{
		{1, 'A', "letters1/A1.dst"},
		{3, 'Q', "letters3/Q3.dst"},
		{10, 'Z', "letters10/Z10.dst"},
		{11, 'B', "letters1112/B.dst"},
		{12, 'C', "letters1112/C.dst"},
		{0, 'A', "letters1/A1.dst"},
		{-4, 'A', "letters1/A1.dst"},
		{13, 'A', "letters10/A10.dst"},
	}
	for _, row := range table {
		assert.Equal(t, row.key, Key(row.length, row.letter))
	}
}

func TestAvailable(t *testing.T) {
	s := store.NewMemory()
	for _, k := range []string{
		"letters2/C2.dst",
		"letters2/A2.dst",
		"letters2/notes.txt",
		"letters2/A3.dst",
		"letters1112/B.dst",
		"letters3/B3.dst",
	} {
		s.Set(k, []byte("x"))
	}
	result, err := Available(s, 2)
	require.NoError(t, err)
	assert.Equal(t, "AC", string(result))

	result, err = Available(s, 11)
	require.NoError(t, err)
	assert.Equal(t, "B", string(result))

	result, err = Available(s, 7)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestMissingLetterError(t *testing.T) {
	var err error = &MissingLetterError{Letter: 'Q', Key: "letters1/Q1.dst", Err: store.ErrNotExist}
	assert.True(t, errors.Is(err, ErrMissingLetter))
	assert.True(t, errors.Is(err, store.ErrNotExist))
	assert.Contains(t, err.Error(), "letter Q")
	assert.Contains(t, err.Error(), "letters1/Q1.dst")

	wrapped := errors.Wrap(err, "generate")
	var mle *MissingLetterError
	require.True(t, errors.As(wrapped, &mle))
	assert.Equal(t, byte('Q'), mle.Letter)
}
