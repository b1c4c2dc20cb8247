// Package xhrmock provides an in-process xhr.XMLHttpRequest whose responses
// come from registered route handlers instead of the network.
//
//	mock := xhrmock.New()
//	mock.Get("/api", func(req *xhrmock.Request, res *xhrmock.Response) (*xhrmock.Response, error) {
//	    return res.Status(200).Body(`{"a":"b"}`), nil
//	})
//	req := fetch.New("/api", fetch.RequestInit{}, fetch.WithTransport(mock.Factory()))
package xhrmock

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/gofetch/xhr"
)

// Handler produces the response for a matched request. Returning a non-nil
// error makes the transport fire its error callback with that error.
type Handler func(req *Request, res *Response) (*Response, error)

type route struct {
	method  string
	path    string
	handler Handler
}

// Mock is a route table shared by every XHR it creates.
type Mock struct {
	mu       sync.Mutex
	routes   []route
	requests []*Request
}

// New returns an empty mock. Unmatched requests complete with 404.
func New() *Mock {
	return &Mock{}
}

// Use registers a handler for method and path. An empty method matches any.
func (m *Mock) Use(method, path string, h Handler) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{method: method, path: path, handler: h})
	return m
}

func (m *Mock) Get(path string, h Handler) *Mock    { return m.Use(http.MethodGet, path, h) }
func (m *Mock) Post(path string, h Handler) *Mock   { return m.Use(http.MethodPost, path, h) }
func (m *Mock) Put(path string, h Handler) *Mock    { return m.Use(http.MethodPut, path, h) }
func (m *Mock) Patch(path string, h Handler) *Mock  { return m.Use(http.MethodPatch, path, h) }
func (m *Mock) Delete(path string, h Handler) *Mock { return m.Use(http.MethodDelete, path, h) }

// Error makes every request to path fail with err at the transport level.
func (m *Mock) Error(path string, err error) *Mock {
	return m.Use("", path, func(*Request, *Response) (*Response, error) {
		return nil, err
	})
}

// Requests returns the requests sent so far, in send order.
func (m *Mock) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// NewXHR returns a fresh XMLHttpRequest bound to this mock.
func (m *Mock) NewXHR() xhr.XMLHttpRequest {
	return &XHR{mock: m}
}

// Factory returns a constructor suitable for fetch.WithTransport.
func (m *Mock) Factory() func() xhr.XMLHttpRequest {
	return m.NewXHR
}

func (m *Mock) record(r *Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r)
	m.mu.Unlock()
}

func (m *Mock) match(method, rawURL string) Handler {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rt := range m.routes {
		if rt.method != "" && !strings.EqualFold(rt.method, method) {
			continue
		}
		if rt.path == path || rt.path == rawURL {
			return rt.handler
		}
	}
	return nil
}

// Delay wraps h so that its response is delivered after d.
func Delay(h Handler, d time.Duration) Handler {
	return func(req *Request, res *Response) (*Response, error) {
		time.Sleep(d)
		return h(req, res)
	}
}

// Respond returns a handler that always answers with status and body.
func Respond(status int, body string) Handler {
	return func(_ *Request, res *Response) (*Response, error) {
		return res.Status(status).Body(body), nil
	}
}
