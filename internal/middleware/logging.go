package middleware

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/finsheet/internal/auth"
)

// responseWriter captures the status code and body size of a response
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += n
	return n, err
}

// LoggingMiddleware logs one [HTTP] line per request with the organization
// scope header and the upload size, so ingestion requests can be traced per
// tenant.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		log.Print(requestLine(r, rw.statusCode, rw.bytes, time.Since(start)))
	})
}

func requestLine(r *http.Request, status, written int, duration time.Duration) string {
	var b strings.Builder
	b.WriteString("[HTTP] ")
	b.WriteString(r.Method)
	b.WriteByte(' ')
	b.WriteString(r.URL.Path)
	writeField(&b, "status", strconv.Itoa(status))
	writeField(&b, "out", strconv.Itoa(written)+"B")
	if r.ContentLength > 0 {
		writeField(&b, "in", strconv.FormatInt(r.ContentLength, 10)+"B")
	}
	if org := strings.TrimSpace(r.Header.Get(auth.HeaderOrganizationID)); org != "" {
		writeField(&b, "org", org)
	}
	writeField(&b, "took", duration.Round(time.Microsecond).String())
	writeField(&b, "from", r.RemoteAddr)
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
}
