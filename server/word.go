package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cznic/zappy"
	"github.com/facebookgo/stats"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"github.com/ndlib/monogram"
	"github.com/ndlib/monogram/dst"
	"github.com/ndlib/monogram/letters"
	"github.com/ndlib/monogram/store"
)

// maximum size of a POST to /merge
const maxMergeUpload = 32 << 20

// WordHandler returns the merged design for a word. Anything other than
// the letters A to Z in the word is ignored.
func (s *RESTServer) WordHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	defer s.Stats.BumpTime("word.time").End()
	stats.BumpSum(s.Stats, "word.requests", 1)

	word := ps.ByName("word")
	norm, err := letters.Normalize(word)
	if err != nil {
		s.record(word, nil, 0, "invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, shared, err := s.words.Get(string(norm))
	if shared {
		stats.BumpSum(s.Stats, "word.shared", 1)
	}
	if err != nil {
		status, kind := classify(err)
		s.record(string(norm), norm, 0, kind)
		if status == http.StatusInternalServerError {
			s.internalError(w, r, err)
			return
		}
		writeError(w, status, err.Error())
		return
	}
	result := v.(*monogram.Result)
	s.record(result.Word, result.Letters, int64(len(result.Data)), "ok")
	s.writeDesign(w, r, result.Filename(), result.Data)
}

// makeWord returns the design for a normalized word, from the cache if
// possible. Designs which are made are added to the cache.
func (s *RESTServer) makeWord(word string) (interface{}, error) {
	key := word + dst.Extension
	data, err := s.cacheGet(key)
	if err != nil {
		logError(err, map[string]string{"key": key})
	}
	if data != nil {
		stats.BumpSum(s.Stats, "cache.hit", 1)
		return &monogram.Result{
			Word:    word,
			Letters: []byte(word),
			Data:    data,
		}, nil
	}
	stats.BumpSum(s.Stats, "cache.miss", 1)
	// requests share this result, so it is not tied to any one of them
	result, err := monogram.Generate(context.Background(), s.fetcher, word)
	if err != nil {
		return nil, err
	}
	stats.BumpSum(s.Stats, "word.generated", 1)
	s.cachePut(key, result.Data)
	return result, nil
}

// cacheGet returns the uncompressed item at key, or nil if it is not in the
// cache.
func (s *RESTServer) cacheGet(key string) ([]byte, error) {
	rac, _, err := s.Cache.Get(key)
	if rac == nil || err != nil {
		return nil, err
	}
	defer rac.Close()
	compressed, err := ioutil.ReadAll(store.NewReader(rac))
	if err != nil {
		return nil, err
	}
	return zappy.Decode(nil, compressed)
}

func (s *RESTServer) cachePut(key string, data []byte) {
	compressed, err := zappy.Encode(nil, data)
	if err != nil {
		logError(err, map[string]string{"key": key})
		return
	}
	w, err := s.Cache.Put(key)
	if err != nil {
		// someone else is saving it
		return
	}
	_, err = w.Write(compressed)
	err2 := w.Close()
	if err == nil {
		err = err2
	}
	if err != nil {
		// it did not fit. The design is still good.
		return
	}
	stats.BumpSum(s.Stats, "cache.bytes", float64(len(compressed)))
}

// writeDesign sends a design to the client as a file attachment. The ETag
// is a hash of the design; a matching If-None-Match gets a 304.
func (s *RESTServer) writeDesign(w http.ResponseWriter, r *http.Request, filename string, data []byte) {
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(data))
	w.Header().Set("ETag", etag)
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	stats.BumpSum(s.Stats, "design.bytes", float64(len(data)))
	if r.Method == "HEAD" {
		return
	}
	w.Write(data)
}

// etagMatch returns true if etag is in the If-None-Match header value.
func etagMatch(header, etag string) bool {
	for _, v := range strings.Split(header, ",") {
		v = strings.TrimSpace(v)
		if v == "*" || strings.TrimPrefix(v, "W/") == etag {
			return true
		}
	}
	return false
}

// classify maps an error from making a design to an HTTP status and a
// history status.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, letters.ErrMissingLetter):
		return http.StatusNotFound, "missing-letter"
	case errors.Is(err, dst.ErrEmptyMergeRequest),
		errors.Is(err, letters.ErrTooManyLetters):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, dst.ErrMalformedRecordStream),
		errors.Is(err, dst.ErrShortDesign),
		errors.Is(err, dst.ErrHeaderSize):
		return http.StatusUnprocessableEntity, "malformed"
	}
	return http.StatusInternalServerError, "error"
}

// MergeHandler merges the designs uploaded in the form field "design", in
// the order given. The name of the result may be given with the parameter
// "name".
func (s *RESTServer) MergeHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	defer s.Stats.BumpTime("merge.time").End()
	stats.BumpSum(s.Stats, "merge.requests", 1)

	r.Body = http.MaxBytesReader(w, r.Body, maxMergeUpload)
	err := r.ParseMultipartForm(maxMergeUpload)
	if err != nil && err != http.ErrNotMultipart {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := cleanName(r.FormValue("name"))
	if name == "" {
		name = "merged"
	}
	var designs [][]byte
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["design"] {
			data, err := readPart(fh)
			if err != nil {
				s.internalError(w, r, err)
				return
			}
			designs = append(designs, data)
		}
	}
	data, err := dst.MergeDesigns(designs)
	if err != nil {
		status, kind := classify(err)
		s.record(name, nil, 0, kind)
		writeError(w, status, err.Error())
		return
	}
	s.record(name, nil, int64(len(data)), "ok")
	s.writeDesign(w, r, name+dst.Extension, data)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var buf bytes.Buffer
	_, err = io.Copy(&buf, f)
	return buf.Bytes(), err
}

// cleanName keeps only the characters of name which are safe in a
// Content-Disposition filename.
func cleanName(name string) string {
	name = strings.TrimSuffix(name, dst.Extension)
	return strings.Map(func(c rune) rune {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '-', c == '_':
			return c
		}
		return -1
	}, name)
}

// LettersHandler lists the letters which have designs for words of a
// given length.
func (s *RESTServer) LettersHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	size, err := strconv.Atoi(ps.ByName("size"))
	if err != nil || size < 1 || size > letters.MaxLetters {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Size must be between 1 and %d", letters.MaxLetters))
		return
	}
	available, err := letters.Available(s.Letters, size)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"size":    size,
		"letters": string(available),
	})
}
