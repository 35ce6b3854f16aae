package httputil

import (
	"net/http"
	"runtime"
	"time"

	"github.com/meetbrief/backend/libs/golog"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *loggingResponseWriter) WriteHeader(status int) {
	w.statusCode = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *loggingResponseWriter) Write(bytes []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(bytes)
}

type loggingHandler struct {
	h       http.Handler
	appName string
}

// LoggingHandler wraps a handler to log every request, its status code, and
// response time. Panics in sub handlers are logged and turned into 500s.
func LoggingHandler(h http.Handler, appName string) http.Handler {
	return &loggingHandler{h: h, appName: appName}
}

func (h *loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
	startTime := time.Now()
	defer func() {
		rerr := recover()
		if rerr != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			if !logrw.wroteHeader {
				w.WriteHeader(http.StatusInternalServerError)
			}
			logrw.statusCode = http.StatusInternalServerError
			golog.Criticalf("http: panic: %v\n%s", rerr, buf)
		}
		golog.Context(
			"App", h.appName,
			"Method", r.Method,
			"URL", r.URL.String(),
			"UserAgent", r.UserAgent(),
			"RemoteAddr", r.RemoteAddr,
			"StatusCode", logrw.statusCode,
			"ResponseTime", time.Since(startTime),
		).Infof(h.appName + " httprequest")
	}()
	h.h.ServeHTTP(logrw, r)
}
