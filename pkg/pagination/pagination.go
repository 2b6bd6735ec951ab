package pagination

import (
	"net/http"
	"strconv"
)

// MaxPerPage caps the page size a client may request.
const MaxPerPage = 100

// Params holds LIMIT/OFFSET values derived from page and per_page query parameters.
type Params struct {
	Page    int
	PerPage int
	Offset  int
}

// FromRequest reads page and per_page from the query string. The second
// return value is false when the client asked for neither, meaning the
// caller should return the full list.
func FromRequest(r *http.Request) (Params, bool) {
	q := r.URL.Query()
	rawPage, rawPer := q.Get("page"), q.Get("per_page")
	if rawPage == "" && rawPer == "" {
		return Params{}, false
	}

	p := Params{Page: 1, PerPage: 20}
	if v, err := strconv.Atoi(rawPage); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(rawPer); err == nil && v > 0 {
		p.PerPage = min(v, MaxPerPage)
	}
	p.Offset = (p.Page - 1) * p.PerPage
	return p, true
}
