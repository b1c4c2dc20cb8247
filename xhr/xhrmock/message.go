package xhrmock

import (
	"net/http"
	"strings"
)

// Request is what the mock received from Send.
type Request struct {
	method          string
	url             string
	header          http.Header
	body            []byte
	withCredentials bool
}

func (r *Request) Method() string        { return r.method }
func (r *Request) URL() string           { return r.url }
func (r *Request) Body() []byte          { return r.body }
func (r *Request) WithCredentials() bool { return r.withCredentials }

// Header returns the value set for name and whether it was set at all.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.header[http.CanonicalHeaderKey(name)]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// HeaderCount returns the number of distinct request headers.
func (r *Request) HeaderCount() int {
	return len(r.header)
}

type headerLine struct {
	name  string
	value string
}

// Response is built by a Handler. The zero value answers 200 with an empty
// body.
type Response struct {
	status int
	reason string
	url    string
	lines  []headerLine
	raw    *string
	body   []byte
}

// Status sets the status code.
func (r *Response) Status(code int) *Response {
	r.status = code
	return r
}

// Reason overrides the status text, which otherwise defaults to the
// standard reason phrase for the status code.
func (r *Response) Reason(text string) *Response {
	r.reason = text
	return r
}

// URL sets the final response URL, as if redirects had been followed.
func (r *Response) URL(u string) *Response {
	r.url = u
	return r
}

// Header appends one header line. Repeated names produce repeated lines.
func (r *Response) Header(name, value string) *Response {
	r.lines = append(r.lines, headerLine{name: name, value: value})
	return r
}

// RawHeaders replaces the header dump returned by GetAllResponseHeaders.
func (r *Response) RawHeaders(blob string) *Response {
	r.raw = &blob
	return r
}

// Body sets a text body.
func (r *Response) Body(s string) *Response {
	r.body = []byte(s)
	return r
}

// BodyBytes sets a binary body.
func (r *Response) BodyBytes(b []byte) *Response {
	r.body = append([]byte(nil), b...)
	return r
}

func (r *Response) statusText() string {
	if r.reason != "" {
		return r.reason
	}
	return http.StatusText(r.status)
}

func (r *Response) headerDump() string {
	if r.raw != nil {
		return *r.raw
	}
	var b strings.Builder
	for _, l := range r.lines {
		b.WriteString(l.name)
		b.WriteString(": ")
		b.WriteString(l.value)
		b.WriteString("\r\n")
	}
	return b.String()
}
