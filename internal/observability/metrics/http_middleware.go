package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPMetricsMiddleware instruments requests with Prometheus metrics. The
// path label is normalized so per-listing and per-seller ids do not blow up
// label cardinality.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)
		dur := time.Since(start)
		ObserveHTTPRequest(r.Method, routeLabel(r.URL.Path), strconv.Itoa(ww.status), dur)
	})
}

// routeLabel collapses the id segment of resource paths: the segment after
// /api/products, /api/catalog, /api/sellers, /api/threads and /ws/threads is
// always an opaque id.
func routeLabel(path string) string {
	for _, prefix := range []string{"/api/products/", "/api/catalog/", "/api/sellers/", "/api/threads/", "/ws/threads/"} {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok {
			continue
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return prefix + "{id}" + rest[i:]
		}
		return prefix + "{id}"
	}
	return path
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
