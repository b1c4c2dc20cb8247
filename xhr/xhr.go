package xhr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ReadyState mirrors the XMLHttpRequest readyState values.
type ReadyState int

const (
	// Unsent means Open has not been called, or the call was aborted.
	Unsent ReadyState = iota
	// Opened means Open was called; headers may be set and Send invoked.
	Opened
	// HeadersReceived means the response status line and headers arrived.
	HeadersReceived
	// Loading means the response body is being buffered.
	Loading
	// Done means the call completed or failed.
	Done
)

// String returns the readyState name.
func (s ReadyState) String() string {
	switch s {
	case Unsent:
		return "UNSENT"
	case Opened:
		return "OPENED"
	case HeadersReceived:
		return "HEADERS_RECEIVED"
	case Loading:
		return "LOADING"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// XMLHttpRequest is the legacy event-driven transport primitive.
//
// A call is configured with Open, SetRequestHeader and SetWithCredentials,
// started with Send, and finishes by firing exactly one of the load or error
// callbacks. Abort suppresses both. Response accessors are stable once the
// load callback has fired.
type XMLHttpRequest interface {
	Open(method, url string, async bool)
	SetRequestHeader(name, value string)
	SetWithCredentials(enabled bool)
	WithCredentials() bool
	Send(body []byte)
	Abort()

	SetOnLoad(fn func())
	SetOnError(fn func(err error))

	ReadyState() ReadyState
	Status() int
	StatusText() string
	ResponseURL() string
	ResponseText() string
	Response() []byte
	GetAllResponseHeaders() string
}

// ErrInvalidState is delivered to the error callback when Send is called
// before Open or while a call is already in flight.
var ErrInvalidState = errors.New("xhr: invalid state")

// NetworkError is the error payload for transport-level failures
// (connection refused, DNS, TLS, malformed URL, truncated body).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("xhr: %s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// standardMethods are upper-cased on the wire when matched case-insensitively.
var standardMethods = []string{
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPost,
	http.MethodPut,
}

// NormalizeMethod upper-cases the standard method names and returns any
// other method unchanged.
func NormalizeMethod(method string) string {
	for _, m := range standardMethods {
		if strings.EqualFold(method, m) {
			return m
		}
	}
	return method
}

// FormatHeaders renders response headers in the getAllResponseHeaders
// format: lower-cased names in sorted order, repeated values joined with
// ", ", one "name: value\r\n" line per name. Set-Cookie headers are never
// exposed.
func FormatHeaders(h http.Header) string {
	lines := make(map[string][]string, len(h))
	names := make([]string, 0, len(h))
	for k, v := range h {
		name := strings.ToLower(k)
		if name == "set-cookie" || name == "set-cookie2" {
			continue
		}
		if _, ok := lines[name]; !ok {
			names = append(names, name)
		}
		lines[name] = append(lines[name], v...)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(strings.Join(lines[name], ", "))
		b.WriteString("\r\n")
	}
	return b.String()
}
