package xhr

import (
	"net/http"
	"sync"
)

// Call is the immutable snapshot of a configured request taken by Begin.
type Call struct {
	Gen             uint64
	Method          string
	URL             string
	Header          http.Header
	Body            []byte
	WithCredentials bool
}

// Result is a fully buffered response handed to Complete.
type Result struct {
	Status     int
	StatusText string
	URL        string
	Header     http.Header
	// RawHeaders, when set, is returned by GetAllResponseHeaders verbatim
	// instead of the FormatHeaders rendering of Header.
	RawHeaders string
	Body       []byte
}

// State implements the configuration and readyState half of
// XMLHttpRequest. A transport embeds it, adds Send, and drives each call
// through Begin, Loading and then Complete or Fail.
//
// Every Begin gets a generation number; Abort and Open bump it, so a late
// Complete or Fail from an older call reports ok=false and fires nothing.
type State struct {
	mu sync.Mutex

	readyState      ReadyState
	method          string
	url             string
	header          http.Header
	withCredentials bool
	sent            bool
	gen             uint64
	cancel          func()

	onLoad  func()
	onError func(error)

	res Result
}

func (s *State) Open(method, url string, _ bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
	s.readyState = Opened
	s.method = method
	s.url = url
	s.header = http.Header{}
	s.sent = false
	s.res = Result{}
}

func (s *State) SetRequestHeader(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readyState != Opened || s.sent {
		return
	}
	if prev := s.header.Get(name); prev != "" {
		s.header.Set(name, prev+", "+value)
		return
	}
	s.header.Set(name, value)
}

func (s *State) SetWithCredentials(enabled bool) {
	s.mu.Lock()
	s.withCredentials = enabled
	s.mu.Unlock()
}

func (s *State) WithCredentials() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withCredentials
}

func (s *State) SetOnLoad(fn func()) {
	s.mu.Lock()
	s.onLoad = fn
	s.mu.Unlock()
}

func (s *State) SetOnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

func (s *State) ReadyState() ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyState
}

func (s *State) Status() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res.Status
}

func (s *State) StatusText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res.StatusText
}

func (s *State) ResponseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res.URL
}

func (s *State) ResponseText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.res.Body)
}

// Response returns the buffered response payload. Callers must not modify it.
func (s *State) Response() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res.Body
}

func (s *State) GetAllResponseHeaders() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readyState < HeadersReceived {
		return ""
	}
	if s.res.RawHeaders != "" {
		return s.res.RawHeaders
	}
	if s.res.Header == nil {
		return ""
	}
	return FormatHeaders(s.res.Header)
}

func (s *State) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
}

func (s *State) abortLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	if s.readyState != Unsent {
		s.readyState = Unsent
		s.sent = false
		s.res = Result{}
	}
}

// Begin validates that a call may start and snapshots it. cancel, if not
// nil, is invoked by Abort and Open while the call is in flight. ok is
// false when Send was called in the wrong state; onError is then the
// callback to notify with ErrInvalidState.
func (s *State) Begin(body []byte, cancel func()) (c Call, onError func(error), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readyState != Opened || s.sent {
		return Call{}, s.onError, false
	}
	s.sent = true
	s.gen++
	s.cancel = cancel
	return Call{
		Gen:             s.gen,
		Method:          NormalizeMethod(s.method),
		URL:             s.url,
		Header:          s.header.Clone(),
		Body:            body,
		WithCredentials: s.withCredentials,
	}, nil, true
}

// Loading records that headers arrived and the body is being read.
func (s *State) Loading(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen && s.sent {
		s.readyState = Loading
	}
}

// Complete publishes a buffered response and returns the function that
// fires the load callback. ok is false when the call was aborted or
// superseded. Callers finish their own bookkeeping before calling notify.
func (s *State) Complete(gen uint64, r Result) (notify func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.sent {
		return nil, false
	}
	s.res = r
	s.readyState = Done
	s.sent = false
	s.cancel = nil
	onLoad := s.onLoad
	return func() {
		if onLoad != nil {
			onLoad()
		}
	}, true
}

// Fail is Complete for a network failure: notify fires the error callback.
func (s *State) Fail(gen uint64, err error) (notify func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.sent {
		return nil, false
	}
	s.res = Result{}
	s.readyState = Done
	s.sent = false
	s.cancel = nil
	onError := s.onError
	return func() {
		if onError != nil {
			onError(err)
		}
	}, true
}
