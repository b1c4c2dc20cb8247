package fetch

import (
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/gofetch/logger"
	"github.com/kbukum/gofetch/util"
	"github.com/kbukum/gofetch/xhr"
)

// DefaultMethod is used when RequestInit.Method is empty. It is passed to
// the transport as-is; transports upper-case standard method names.
const DefaultMethod = "get"

// Credentials controls whether stored cookies are sent with a request.
type Credentials string

const (
	CredentialsOmit       Credentials = "omit"
	CredentialsSameOrigin Credentials = "same-origin"
	// CredentialsInclude is the only mode with an effect: it sets the
	// transport's withCredentials flag.
	CredentialsInclude Credentials = "include"
)

// RequestInit configures a Request. It is not modified by New.
type RequestInit struct {
	// Method defaults to DefaultMethod.
	Method string
	// Headers are forwarded unmodified, in ascending name order.
	Headers map[string]string
	// Body is the opaque payload. Nil or empty sends no body.
	Body        []byte
	Credentials Credentials
}

type options struct {
	newTransport func() xhr.XMLHttpRequest
	log          *logger.Logger
}

// Option configures a Request.
type Option func(*options)

// WithTransport sets the constructor for the transport primitive a Request
// owns. The default is xhr.New with default options.
func WithTransport(fn func() xhr.XMLHttpRequest) Option {
	return func(o *options) { o.newTransport = fn }
}

// WithLogger sets the logger for debug output.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// Request adapts one XMLHttpRequest call into a Promise of a Response.
//
// A Request owns its transport handle for its whole lifetime. The handle is
// exposed through XHR so a caller can abort the call; an aborted call never
// settles its promise.
type Request struct {
	url  string
	init RequestInit
	xhr  xhr.XMLHttpRequest
	log  *logger.Logger

	once    sync.Once
	promise *Promise[*Response]
}

// New creates the transport handle and configures it for url and init.
// Nothing is sent until Fetch is called.
func New(url string, init RequestInit, opts ...Option) *Request {
	o := options{
		newTransport: func() xhr.XMLHttpRequest { return xhr.New() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("fetch")
	}

	r := &Request{
		url:  url,
		init: init,
		xhr:  o.newTransport(),
		log:  o.log,
	}
	r.setup()
	return r
}

func (r *Request) setup() {
	method := r.init.Method
	if method == "" {
		method = DefaultMethod
	}
	r.xhr.Open(method, r.url, true)
	r.xhr.SetWithCredentials(r.init.Credentials == CredentialsInclude)
	for _, name := range slices.Sorted(maps.Keys(r.init.Headers)) {
		r.xhr.SetRequestHeader(name, r.init.Headers[name])
	}

	r.log.Debug("request configured", logger.Fields(
		logger.FieldMethod, method,
		logger.FieldURL, r.url,
		"headers", util.RedactHeaders(r.init.Headers),
		"credentials", string(r.init.Credentials),
	))
}

// XHR returns the transport handle owned by r.
func (r *Request) XHR() xhr.XMLHttpRequest {
	return r.xhr
}

// Cancel aborts the call. It is equivalent to XHR().Abort(): the promise
// returned by Fetch stays pending forever.
func (r *Request) Cancel() {
	r.xhr.Abort()
}

// Fetch sends the request and returns a promise for its Response.
//
// The promise is fulfilled for every completed call regardless of status,
// and rejected with the transport's error value, unwrapped, when the call
// fails at the network level. A Request sends at most once: later calls
// return the same promise.
func (r *Request) Fetch() *Promise[*Response] {
	r.once.Do(func() {
		p := newPromise[*Response]()
		r.promise = p

		r.xhr.SetOnLoad(func() {
			headers := ParseHeaders(r.xhr.GetAllResponseHeaders())
			res := newResponse(snapshot(r.xhr), headers)
			r.log.Debug("request loaded", logger.Fields(
				logger.FieldStatus, res.Status,
				logger.FieldURL, res.URL,
			))
			p.resolve(res)
		})
		r.xhr.SetOnError(func(err error) {
			r.log.Debug("request failed", logger.MergeWithError(nil, err))
			p.reject(err)
		})

		var body []byte
		if len(r.init.Body) > 0 {
			body = r.init.Body
		}
		r.xhr.Send(body)
	})
	return r.promise
}
