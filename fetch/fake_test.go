package fetch

import (
	"sync"

	"github.com/kbukum/gofetch/xhr"
)

// recordingXHR records every setup call and lets tests fire the signals by
// hand, on the test goroutine.
type recordingXHR struct {
	mu sync.Mutex

	openMethod string
	openURL    string
	openAsync  bool
	headers    [][2]string
	withCreds  bool
	sends      int
	body       []byte
	aborted    bool

	onLoad  func()
	onError func(error)

	status     int
	statusText string
	url        string
	text       string
	payload    []byte
	rawHeaders string

	// loadOnSend fires the load callback synchronously from Send.
	loadOnSend bool
}

var _ xhr.XMLHttpRequest = (*recordingXHR)(nil)

func (f *recordingXHR) Open(method, url string, async bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openMethod, f.openURL, f.openAsync = method, url, async
}

func (f *recordingXHR) SetRequestHeader(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headers = append(f.headers, [2]string{name, value})
}

func (f *recordingXHR) SetWithCredentials(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withCreds = enabled
}

func (f *recordingXHR) WithCredentials() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.withCreds
}

func (f *recordingXHR) Send(body []byte) {
	f.mu.Lock()
	f.sends++
	f.body = body
	load := f.loadOnSend
	f.mu.Unlock()
	if load {
		f.load()
	}
}

func (f *recordingXHR) Abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = true
}

func (f *recordingXHR) SetOnLoad(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onLoad = fn
}

func (f *recordingXHR) SetOnError(fn func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onError = fn
}

func (f *recordingXHR) load() {
	f.mu.Lock()
	fn := f.onLoad
	f.mu.Unlock()
	fn()
}

func (f *recordingXHR) fail(err error) {
	f.mu.Lock()
	fn := f.onError
	f.mu.Unlock()
	fn(err)
}

func (f *recordingXHR) ReadyState() xhr.ReadyState { return xhr.Done }
func (f *recordingXHR) Status() int                { return f.status }
func (f *recordingXHR) StatusText() string         { return f.statusText }
func (f *recordingXHR) ResponseURL() string        { return f.url }
func (f *recordingXHR) ResponseText() string       { return f.text }
func (f *recordingXHR) Response() []byte           { return f.payload }

func (f *recordingXHR) GetAllResponseHeaders() string { return f.rawHeaders }

func withFake(f *recordingXHR) Option {
	return WithTransport(func() xhr.XMLHttpRequest { return f })
}
