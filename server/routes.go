package server

import (
	"encoding/json"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // for pprof server
	"os"
	"path/filepath"
	"time"

	"github.com/facebookgo/clock"
	"github.com/facebookgo/httpdown"
	"github.com/facebookgo/stats"
	raven "github.com/getsentry/raven-go"
	"github.com/julienschmidt/httprouter"

	"github.com/ndlib/monogram/blobcache"
	"github.com/ndlib/monogram/letters"
	"github.com/ndlib/monogram/store"
)

// RESTServer holds the configuration for a monogram REST API server.
//
// Set all the public fields and then call Run. Run will listen on the given
// port and handle requests. Do not change any fields after calling Run.
//
// It should be enough to only set Letters and CacheDir. The other fields are
// exposed to allow more customization.
type RESTServer struct {
	// Port number to run on. defaults to 14000
	PortNumber string
	PProfPort  string

	// Letters holds the letter designs. Run will panic if Letters is nil.
	Letters store.ROStore

	// CacheDir is the path to put the design cache and the history
	// database in the filesystem. If CacheDir is empty then everything is
	// kept in memory.
	CacheDir  string
	CacheSize int64 // in bytes. 0 means no cache

	// Pass in a dial command to use a MySQL server for the history log.
	// Otherwise a lightweight internal database is used, and placed inside
	// the CacheDir directory.
	// e.g. "user:password@tcp(localhost:5555)/dbname"
	MySQL string

	// The number of letter designs read from storage at once.
	MaxConcurrentFetch int

	// How long to wait for requests to finish when stopping.
	StopTimeout time.Duration

	// --- The following fields are more advanced and only need to be
	// set in special situations. ---

	// Cache keeps recently made designs. If nil, one is made using
	// CacheDir and CacheSize.
	Cache blobcache.Cache

	// History logs the requests for designs. If nil, one is made using
	// MySQL or CacheDir.
	History HistoryDB

	Stats stats.Client
	Clock clock.Clock

	fetcher *letters.Fetcher
	words   *singleflight
	server  httpdown.Server // used to close our listening socket
}

// Run initializes the server. It then blocks listening for and handling
// http requests.
func (s *RESTServer) Run() error {
	log.Println("==========")
	log.Printf("Starting Monogram Server version %s", Version)
	log.Printf("CacheDir = %s", s.CacheDir)
	log.Printf("CacheSize = %d", s.CacheSize)

	err := s.init()
	if err != nil {
		log.Println(err)
		return err
	}

	// for pprof
	if s.PProfPort != "" {
		log.Println("Starting PProf on port", s.PProfPort)
		go func() {
			log.Println(http.ListenAndServe(":"+s.PProfPort, nil))
		}()
	}
	if s.PortNumber == "" {
		s.PortNumber = "14000"
	}
	log.Println("Listening on", s.PortNumber)

	h := httpdown.HTTP{
		StopTimeout: s.StopTimeout,
		Stats:       s.Stats,
		Clock:       s.Clock,
	}
	s.server, err = h.ListenAndServe(&http.Server{
		Addr:    ":" + s.PortNumber,
		Handler: s.addRoutes(),
	})
	if err != nil {
		log.Println(err)
		return err
	}
	return s.server.Wait()
}

// Stop will stop the server and return when all the server goroutines have
// exited and the socket closed.
func (s *RESTServer) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Stop()
}

// init fills in any fields which were not set.
func (s *RESTServer) init() error {
	if s.Letters == nil {
		panic("No letter storage given. Letters is nil.")
	}
	if s.Clock == nil {
		s.Clock = clock.New()
	}
	if s.Stats == nil {
		s.Stats = newExpvarStats()
	}
	if s.CacheDir != "" {
		os.MkdirAll(s.CacheDir, 0755)
	}

	// init database
	if s.History == nil {
		var err error
		if s.MySQL != "" {
			log.Printf("Using MySQL")
			s.History, err = NewMysqlHistory(s.MySQL)
		} else {
			path := "memory"
			if s.CacheDir != "" {
				path = filepath.Join(s.CacheDir, "monogram.ql")
			}
			log.Printf("Using internal database at %s", path)
			s.History, err = NewQlHistory(path)
		}
		if err != nil {
			return err
		}
	}

	// init design cache
	if s.Cache == nil {
		if s.CacheSize <= 0 {
			log.Println("Not using design cache")
			s.Cache = blobcache.EmptyCache{}
		} else {
			var cs store.Store = store.NewMemory()
			if s.CacheDir != "" {
				path := filepath.Join(s.CacheDir, "designs")
				os.MkdirAll(path, 0755)
				cs = store.NewFileSystem(path)
			}
			c := blobcache.NewLRU(cs, s.CacheSize)
			go c.Scan()
			s.Cache = c
		}
	}

	s.fetcher = letters.NewFetcher(s.Letters, s.MaxConcurrentFetch)
	s.words = &singleflight{F: s.makeWord}
	return nil
}

func (s *RESTServer) addRoutes() http.Handler {
	var routes = []struct {
		method  string
		route   string
		handler httprouter.Handle
	}{
		{"GET", "/word/:word", s.WordHandler},
		{"HEAD", "/word/:word", s.WordHandler},
		{"POST", "/merge", s.MergeHandler},
		{"GET", "/letters/:size", s.LettersHandler},
		{"GET", "/history", s.HistoryHandler},

		// other
		{"GET", "/", WelcomeHandler},
		{"GET", "/debug/vars", VarHandler}, // standard route for expvars data
	}

	r := httprouter.New()
	for _, route := range routes {
		r.Handle(route.method,
			route.route,
			logWrapper(route.handler))
	}
	return r
}

// General route handlers and convenience functions

// VarHandler adapts the expvar default handler to the httprouter three parameter handler.
func VarHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	// this code is taken from the stdlib expvar package.
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprintf(w, "{\n")
	first := true
	expvar.Do(func(kv expvar.KeyValue) {
		if !first {
			fmt.Fprintf(w, ",\n")
		}
		first = false
		fmt.Fprintf(w, "%q: %s", kv.Key, kv.Value)
	})
	fmt.Fprintf(w, "\n}\n")
}

func writeJSON(w http.ResponseWriter, val interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(val)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintln(w, msg)
}

// internalError reports err and returns a 500 to the client.
func (s *RESTServer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logError(err, map[string]string{"method": r.Method, "url": r.URL.String()})
	stats.BumpSum(s.Stats, "http.5xx", 1)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// logError logs err and passes it on to sentry, if configured.
func logError(err error, tags map[string]string) {
	log.Println(err, tags)
	raven.CaptureError(err, tags)
}

// logWrapper takes a handler and returns a handler which does the same thing,
// after first logging the request URL.
func logWrapper(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		log.Println(r.Method, r.URL)
		handler(w, r, ps)
	}
}
