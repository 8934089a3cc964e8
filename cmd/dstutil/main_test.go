package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndlib/monogram/dst"
)

func header(label string) []byte {
	h := bytes.Repeat([]byte{' '}, dst.HeaderSize)
	copy(h, "LA:"+label+"\rST:      2\rCO:  1\r\x1a")
	return h
}

func design(label string, stitches ...byte) []byte {
	return append(header(label), stitches...)
}

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path string, data []byte) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, data, 0644))
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.dst")
	b := filepath.Join(dir, "B.dst")
	writeFile(t, a, design("A", 0x00, 0x00, 0x01, 0x00, 0x00, 0xF3))
	writeFile(t, b, design("B", 0x00, 0x00, 0xF0, 0x10, 0x10, 0x02))
	out := filepath.Join(dir, "AB.dst")

	text, err := run(t, "merge", "-o", out, a, b)
	require.NoError(t, err)
	assert.Contains(t, text, "from 2 designs")

	data, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	expected := append(header("A"),
		0x00, 0x00, 0xF0,
		0x00, 0x00, 0x01,
		0x10, 0x10, 0x02,
		0x00, 0x00, 0xF3)
	assert.Equal(t, expected, data)
}

func TestMergeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.dst")
	empty := filepath.Join(dir, "empty.dst")
	writeFile(t, bad, design("X", 0x01))
	writeFile(t, empty, nil)
	out := filepath.Join(dir, "out.dst")

	_, err := run(t, "merge", "-o", out, bad)
	assert.True(t, errors.Is(err, dst.ErrMalformedRecordStream), "received %v", err)
	_, err = run(t, "merge", "-o", out, empty)
	assert.True(t, errors.Is(err, dst.ErrShortDesign), "received %v", err)
	_, err = run(t, "merge", "-o", out, filepath.Join(dir, "missing.dst"))
	assert.Error(t, err)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.dst")
	writeFile(t, path, design("LETTER A", 0x00, 0x00, 0xF0, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x00, 0x00, 0xF3))

	text, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, text, "LETTER A")
	assert.Regexp(t, `records\s+4`, text)
	assert.Regexp(t, `stitch\s+2`, text)
	assert.Regexp(t, `color-change\s+1`, text)
	assert.Regexp(t, `end\s+1`, text)
}

func TestWordCommand(t *testing.T) {
	dir := t.TempDir()
	lettersDir := filepath.Join(dir, "letters")
	for _, c := range "HI" {
		key := fmt.Sprintf("letters2/%c2.dst", c)
		writeFile(t, filepath.Join(lettersDir, key), design(string(c), 0x01, byte(c), 0x03))
	}
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0755))

	text, err := run(t, "word", "-l", lettersDir, "-o", outDir, "hi")
	require.NoError(t, err)
	assert.Contains(t, text, "HI.dst")
	data, err := ioutil.ReadFile(filepath.Join(outDir, "HI.dst"))
	require.NoError(t, err)
	assert.Len(t, data, dst.HeaderSize+6+6)

	_, err = run(t, "word", "-l", lettersDir, "-o", outDir, "ho")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "letter O")
}

func TestHistoryCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history" || r.FormValue("n") != "2" {
			w.WriteHeader(404)
			return
		}
		fmt.Fprint(w, `{"history":[
			{"word":"AB","letters":"AB","size":530,"status":"ok","created":"2020-05-01T12:00:00Z"},
			{"word":"Q","letters":"Q","size":0,"status":"missing-letter","created":"2020-05-01T11:00:00Z"}]}`)
	}))
	defer ts.Close()

	text, err := run(t, "history", "-s", ts.URL+"/", "-n", "2")
	require.NoError(t, err)
	assert.Regexp(t, `2020-05-01T12:00:00Z\s+AB\s+ok\s+530`, text)
	assert.Regexp(t, `Q\s+missing-letter\s+0`, text)

	_, err = run(t, "history", "-s", ts.URL, "-n", "5")
	assert.Error(t, err)
}
