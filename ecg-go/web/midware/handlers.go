package midware

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/codegangsta/negroni"
)

// Wrap wraps the provided handler with the default set of middleware.
func Wrap(handler http.Handler) http.Handler {
	if handler == nil {
		handler = http.DefaultServeMux
	}
	return negroni.New(
		NewRecovery(),
		NewLogger(log.New(os.Stdout, "[web] ", log.LstdFlags|log.Lmicroseconds)),
		negroni.Wrap(handler),
	)
}

// Logger is a HTTP request logger for use as negroni middleware.
type Logger struct {
	logger *log.Logger
}

// NewLogger returns a Logger negroni.Handler that will log requests
// to the provided logger.
func NewLogger(logger *log.Logger) *Logger {
	return &Logger{
		logger: logger,
	}
}

// ServeHTTP implements negroni.Handler
func (l *Logger) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(w, r)
	url := r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.Query().Encode()
	}

	if rw, ok := w.(negroni.ResponseWriter); ok {
		l.logger.Println(r.Method, url, rw.Status(), rw.Size(), time.Since(start))
		return
	}
	l.logger.Println(r.Method, url, time.Since(start))
}

// --

// Recovery is a panic recovery middleware handler for negroni.
type Recovery struct {
	PrintStack bool
	StackAll   bool
	StackSize  int
}

// NewRecovery returns a new Recovery negroni.Handler
func NewRecovery() *Recovery {
	return &Recovery{
		PrintStack: true,
		StackAll:   true,
		StackSize:  1028 * 8,
	}
}

// ServeHTTP implements negroni.Handler
func (rec *Recovery) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	defer func(req *http.Request) {
		if err := recover(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)

			stack := make([]byte, rec.StackSize)
			stack = stack[:runtime.Stack(stack, rec.StackAll)]
			log.Println("[recovery!]", req.Method, req.URL.Path, fmt.Sprintf("PANIC: %s\n%s", err, stack))
		}
	}(r)

	next(w, r)
}

// NoCache is a middleware handler for setting no-cache headers.
type NoCache struct{}

// NewNoCache returns a NoCache negroni.Handler that sets the no-cache headers.
func NewNoCache() *NoCache {
	return &NoCache{}
}

// ServeHTTP implements negroni.Handler
func (nc *NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	newRw := negroni.NewResponseWriter(w)

	// must occur before the response has been written
	newRw.Before(func(rw negroni.ResponseWriter) {
		h := rw.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
	})

	next(newRw, r)
}
