package catalog

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// RequestFailure is returned for any catalog request that did not produce
// a usable result: a non-2xx status, a transport error or an undecodable body.
type RequestFailure struct {
	StatusCode int    // 0 when no response was received
	Status     string // status text, e.g. "Not Found"
	Body       string // best-effort response body, empty if unreadable
	Err        error  // underlying transport or decode error, if any
}

func (e *RequestFailure) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("API request failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("API %d %s: %v", e.StatusCode, e.Status, e.Err)
	default:
		return fmt.Sprintf("API %d %s – %s", e.StatusCode, e.Status, e.Body)
	}
}

func (e *RequestFailure) Unwrap() error {
	return e.Err
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
