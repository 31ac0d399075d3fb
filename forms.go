package vellum

import (
	"fmt"
	"net/http"

	"github.com/vellum-ws/vellum/multidict"
)

// maxFormSize bounds form bodies read into memory.
const maxFormSize = 1 << 20

// ParseQuery returns the request's query parameters as an ordered multi-dict.
func ParseQuery(req *http.Request) *multidict.Dict[string] {
	return multidict.FromValues(req.URL.Query())
}

// ParseForm parses the request body and returns the form values as an
// ordered multi-dict.
func ParseForm(req *http.Request) (*multidict.Dict[string], error) {
	req.Body = http.MaxBytesReader(nil, req.Body, maxFormSize)
	if err := req.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form : %w", err)
	}
	return multidict.FromValues(req.PostForm), nil
}
