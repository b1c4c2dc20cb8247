package fetch

import (
	"bytes"

	json "github.com/goccy/go-json"

	"github.com/kbukum/gofetch/xhr"
)

// body is the completed transport state a Response reads from. It is taken
// once, inside the load callback, and never changes afterwards.
type body struct {
	status     int
	statusText string
	url        string
	text       string
	payload    []byte
}

func snapshot(x xhr.XMLHttpRequest) *body {
	return &body{
		status:     x.Status(),
		statusText: x.StatusText(),
		url:        x.ResponseURL(),
		text:       x.ResponseText(),
		payload:    bytes.Clone(x.Response()),
	}
}

// Response is the result of a completed call. Any status is a completed
// call: 4xx and 5xx responses have OK set to false and are not errors.
//
// Text, JSON and Blob do not consume anything; each may be called any number
// of times in any order, on the Response or on its clones.
type Response struct {
	// OK is true for 2xx statuses.
	OK         bool
	Status     int
	StatusText string
	// URL is the final URL after redirects.
	URL     string
	Headers *Headers

	body *body
}

func newResponse(b *body, h *Headers) *Response {
	return &Response{
		OK:         b.status/100 == 2,
		Status:     b.status,
		StatusText: b.statusText,
		URL:        b.url,
		Headers:    h,
		body:       b,
	}
}

// Text returns the response body as text.
func (r *Response) Text() string {
	return r.body.text
}

// JSON decodes the body text into v. A malformed body fails here, not when
// the response was received.
func (r *Response) JSON(v any) error {
	return json.Unmarshal([]byte(r.body.text), v)
}

// Blob returns the raw response payload.
func (r *Response) Blob() *Blob {
	return newBlob(r.body.payload)
}

// Clone returns a new Response over the same completed call.
func (r *Response) Clone() *Response {
	return newResponse(r.body, r.Headers)
}

// DecodeJSON decodes the body of r into a new T.
func DecodeJSON[T any](r *Response) (T, error) {
	var v T
	err := r.JSON(&v)
	return v, err
}
