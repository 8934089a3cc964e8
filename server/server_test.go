package server

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndlib/monogram/blobcache"
	"github.com/ndlib/monogram/dst"
	"github.com/ndlib/monogram/store"
)

func header(label string) []byte {
	h := bytes.Repeat([]byte{' '}, dst.HeaderSize)
	copy(h, "LA:"+label+"\r")
	return h
}

func design(label string, stitches ...byte) []byte {
	return append(header(label), stitches...)
}

var (
	designA2 = design("A2", 0x00, 0x00, 0x01, 0x00, 0x00, 0xF3)
	designB2 = design("B2", 0x00, 0x00, 0xF0, 0x10, 0x10, 0x02)

	// the merge of designA2 and designB2
	designAB = append(header("A2"),
		0x00, 0x00, 0xF0,
		0x00, 0x00, 0x01,
		0x10, 0x10, 0x02,
		0x00, 0x00, 0xF3)
)

func newTestServer(t *testing.T) (*RESTServer, *httptest.Server) {
	letterStore := store.NewMemory()
	letterStore.Set("letters2/A2.dst", designA2)
	letterStore.Set("letters2/B2.dst", designB2)
	letterStore.Set("letters1/A1.dst", design("A1", 0x01, 0x01, 0x01))
	letterStore.Set("letters1/M1.dst", design("M1", 0x01, 0x01))

	s := &RESTServer{
		Letters:   letterStore,
		CacheSize: 1 << 20,
		Clock:     clock.NewMock(),
	}
	err := s.init()
	if err != nil {
		t.Fatalf("Received %s", err.Error())
	}
	ts := httptest.NewServer(s.addRoutes())
	return s, ts
}

func TestWelcome(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()
	text := getbody(t, "GET", ts.URL+"/", 200)
	if !strings.HasPrefix(text, "Monogram") {
		t.Errorf("Received %q", text)
	}
}

func TestWord(t *testing.T) {
	s, ts := newTestServer(t)
	defer ts.Close()

	resp := checkRoute(t, "GET", ts.URL+"/word/ab", 200)
	require.NotNil(t, resp)
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, designAB, body)
	assert.Equal(t, `attachment; filename="AB.dst"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	etag := resp.Header.Get("ETag")
	assert.NotEmpty(t, etag)

	assert.True(t, s.Cache.Contains("AB.dst"))

	// the second time comes from the cache
	text := getbody(t, "GET", ts.URL+"/word/AB", 200)
	assert.Equal(t, string(designAB), text)

	req, _ := http.NewRequest("GET", ts.URL+"/word/Ab", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 304, resp.StatusCode)

	text = getbody(t, "HEAD", ts.URL+"/word/ab", 200)
	assert.Equal(t, "", text)
}

func TestWordErrors(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	var table = []struct {
		word   string
		status int
		text   string
	}{
		{"q", 404, "letter Q"},
		{"aq", 404, "letter Q"},
		{"1234", 400, "no letters"},
		{"abcdefghijklmn", 400, "more than 12"},
		{"m", 422, "Malformed"},
	}
	for _, row := range table {
		text := getbody(t, "GET", ts.URL+"/word/"+row.word, row.status)
		if !strings.Contains(text, row.text) {
			t.Errorf("%s: Received %q, expected it to contain %q", row.word, text, row.text)
		}
	}
}

func TestWordCached(t *testing.T) {
	s, ts := newTestServer(t)
	defer ts.Close()

	checkStatus(t, "GET", ts.URL+"/word/a", 200)
	// the design stays available after the letter is removed
	s.Letters.(*store.Memory).Delete("letters1/A1.dst")
	checkStatus(t, "GET", ts.URL+"/word/a", 200)

	s.Cache = blobcache.EmptyCache{}
	checkStatus(t, "GET", ts.URL+"/word/a", 404)
}

func uploadDesigns(t *testing.T, url string, designs ...[]byte) *http.Response {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, d := range designs {
		fw, err := mw.CreateFormFile("design", string(rune('a'+i))+".dst")
		require.NoError(t, err)
		fw.Write(d)
	}
	require.NoError(t, mw.Close())
	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func TestMerge(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	resp := uploadDesigns(t, ts.URL+"/merge?name=logo", designA2, designB2)
	body, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, designAB, body)
	assert.Equal(t, `attachment; filename="logo.dst"`, resp.Header.Get("Content-Disposition"))

	resp = uploadDesigns(t, ts.URL+"/merge", designB2)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, `attachment; filename="merged.dst"`, resp.Header.Get("Content-Disposition"))

	resp = uploadDesigns(t, ts.URL+"/merge")
	resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)

	resp = uploadDesigns(t, ts.URL+"/merge", designA2, designA2[:dst.HeaderSize+4])
	body, _ = ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, 422, resp.StatusCode)
	assert.Contains(t, string(body), "design 1")
}

func TestLetters(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	text := getbody(t, "GET", ts.URL+"/letters/2", 200)
	var v struct {
		Size    int
		Letters string
	}
	require.NoError(t, json.Unmarshal([]byte(text), &v))
	assert.Equal(t, 2, v.Size)
	assert.Equal(t, "AB", v.Letters)

	checkStatus(t, "GET", ts.URL+"/letters/0", 400)
	checkStatus(t, "GET", ts.URL+"/letters/x", 400)
	checkStatus(t, "GET", ts.URL+"/letters/13", 400)
}

func TestHistory(t *testing.T) {
	s, ts := newTestServer(t)
	defer ts.Close()
	mock := s.Clock.(*clock.Mock)

	for _, word := range []string{"ab", "q", "a"} {
		mock.Add(time.Second)
		resp, err := http.Get(ts.URL + "/word/" + word)
		require.NoError(t, err)
		resp.Body.Close()
	}

	text := getbody(t, "GET", ts.URL+"/history?n=2", 200)
	var v struct {
		History []HistoryEntry
	}
	require.NoError(t, json.Unmarshal([]byte(text), &v))
	require.Len(t, v.History, 2)
	assert.Equal(t, "A", v.History[0].Word)
	assert.Equal(t, "ok", v.History[0].Status)
	assert.Equal(t, "Q", v.History[1].Word)
	assert.Equal(t, "missing-letter", v.History[1].Status)

	checkStatus(t, "GET", ts.URL+"/history?n=abc", 400)
	checkStatus(t, "GET", ts.URL+"/history?n=-1", 400)
}

func TestVars(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()
	checkStatus(t, "GET", ts.URL+"/word/ab", 200)
	text := getbody(t, "GET", ts.URL+"/debug/vars", 200)
	if !strings.Contains(text, `"monogram"`) || !strings.Contains(text, "word.requests") {
		t.Errorf("Received %q", text)
	}
}

func getbody(t *testing.T, verb, route string, expstatus int) string {
	resp := checkRoute(t, verb, route, expstatus)
	if resp != nil {
		body, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(route, err)
		}
		resp.Body.Close()
		return string(body)
	}
	return ""
}

func checkStatus(t *testing.T, verb, route string, expstatus int) {
	resp := checkRoute(t, verb, route, expstatus)
	if resp != nil {
		resp.Body.Close()
	}
}

func checkRoute(t *testing.T, verb, route string, expstatus int) *http.Response {
	req, err := http.NewRequest(verb, route, nil)
	if err != nil {
		t.Fatal("Problem creating request", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(route, err)
		return nil
	}
	if resp.StatusCode != expstatus {
		t.Errorf("%s: Expected status %d and received %d",
			route,
			expstatus,
			resp.StatusCode)
		resp.Body.Close()
		return nil
	}
	return resp
}
