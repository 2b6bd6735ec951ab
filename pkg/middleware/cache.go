package middleware

import "net/http"

// Revalidate lets clients store 200 and 304 responses to GET and HEAD but
// requires them to check back with the server, typically via ETag, before
// every reuse. Error responses are never marked.
func Revalidate() func(http.Handler) http.Handler {
	const value = "private, no-cache"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(&cacheWriter{ResponseWriter: w, value: value}, r)
		})
	}
}

type cacheWriter struct {
	http.ResponseWriter
	value   string
	decided bool
}

func (c *cacheWriter) WriteHeader(code int) {
	if !c.decided {
		c.decided = true
		if code == http.StatusOK || code == http.StatusNotModified {
			c.Header().Set("Cache-Control", c.value)
		}
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *cacheWriter) Write(b []byte) (int, error) {
	if !c.decided {
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(b)
}

func (c *cacheWriter) Unwrap() http.ResponseWriter {
	return c.ResponseWriter
}
