package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

// HistoryEntry records one request for a merged design.
type HistoryEntry struct {
	Word    string    `json:"word"`
	Letters string    `json:"letters"`
	Size    int64     `json:"size"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
}

// HistoryDB keeps a log of the designs that have been requested.
type HistoryDB interface {
	// Record adds an entry to the log.
	Record(e HistoryEntry) error
	// Recent returns up to n entries, newest first.
	Recent(n int) ([]HistoryEntry, error)
}

const (
	defaultHistory = 50
	maxHistory     = 1000
)

// HistoryHandler lists the most recent requests. The number returned can be
// given with the parameter n.
func (s *RESTServer) HistoryHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n := defaultHistory
	if v := r.FormValue("n"); v != "" {
		var err error
		n, err = strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Bad value for n")
			return
		}
		if n > maxHistory {
			n = maxHistory
		}
	}
	entries, err := s.History.Recent(n)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	writeJSON(w, map[string]interface{}{"history": entries})
}

// record saves a history entry, logging any problem. A request is never
// failed because its history could not be saved.
func (s *RESTServer) record(word string, letters []byte, size int64, status string) {
	err := s.History.Record(HistoryEntry{
		Word:    word,
		Letters: string(letters),
		Size:    size,
		Status:  status,
		Created: s.Clock.Now(),
	})
	if err != nil {
		logError(err, map[string]string{"word": word})
	}
}
