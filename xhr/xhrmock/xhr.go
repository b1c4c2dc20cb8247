package xhrmock

import (
	"net/http"

	"github.com/kbukum/gofetch/xhr"
)

// XHR is the mock XMLHttpRequest. Handlers run on a background goroutine,
// so callbacks fire asynchronously just like the real backends.
type XHR struct {
	xhr.State
	mock *Mock
}

var _ xhr.XMLHttpRequest = (*XHR)(nil)

func (x *XHR) Send(body []byte) {
	c, onError, ok := x.Begin(body, nil)
	if !ok {
		if onError != nil {
			go onError(xhr.ErrInvalidState)
		}
		return
	}
	req := &Request{
		method:          c.Method,
		url:             c.URL,
		header:          c.Header,
		body:            c.Body,
		withCredentials: c.WithCredentials,
	}
	x.mock.record(req)
	go x.run(c.Gen, req)
}

func (x *XHR) run(gen uint64, req *Request) {
	handler := x.mock.match(req.method, req.url)
	if handler == nil {
		handler = Respond(http.StatusNotFound, "")
	}
	res, err := handler(req, &Response{status: http.StatusOK})
	if err != nil {
		if notify, ok := x.Fail(gen, err); ok {
			notify()
		}
		return
	}
	if res == nil {
		res = &Response{status: http.StatusOK}
	}
	respURL := res.url
	if respURL == "" {
		respURL = req.url
	}
	x.Loading(gen)
	notify, ok := x.Complete(gen, xhr.Result{
		Status:     res.status,
		StatusText: res.statusText(),
		URL:        respURL,
		RawHeaders: res.headerDump(),
		Body:       res.body,
	})
	if ok {
		notify()
	}
}
