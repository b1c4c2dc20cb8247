package xhr

import (
	"crypto/tls"
	"net/http"
	"net/http/cookiejar"

	"github.com/valyala/fasthttp"
	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/gofetch/logger"
)

const defaultMaxRedirects = 20

type options struct {
	log          *logger.Logger
	jar          http.CookieJar
	roundTripper http.RoundTripper
	fastClient   *fasthttp.Client
	tlsConfig    *tls.Config
	maxRedirects int
}

// Option configures a transport backend.
type Option func(*options)

// WithLogger sets the logger used for per-call debug logs.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithCookieJar sets the cookie store consulted when withCredentials is set.
// Requests without credentials never read from or write to the jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithRoundTripper sets the net/http transport used by New.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) { o.roundTripper = rt }
}

// WithFastClient sets the fasthttp client used by NewFast.
func WithFastClient(c *fasthttp.Client) Option {
	return func(o *options) { o.fastClient = c }
}

// WithTLSConfig sets the client TLS settings. It applies to the default
// net/http transport and fasthttp client only; a transport passed with
// WithRoundTripper or WithFastClient keeps its own settings. Each backend
// built with a TLS config gets its own connection pool.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// WithMaxRedirects caps the number of redirects followed per call.
func WithMaxRedirects(n int) Option {
	return func(o *options) { o.maxRedirects = n }
}

func newOptions(opts []Option) options {
	o := options{maxRedirects: defaultMaxRedirects}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("xhr")
	}
	if o.jar == nil {
		o.jar = sharedJar
	}
	if o.roundTripper == nil {
		o.roundTripper = http.DefaultTransport
		if o.tlsConfig != nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			t.TLSClientConfig = o.tlsConfig
			o.roundTripper = t
		}
	}
	if o.fastClient == nil {
		o.fastClient = sharedFastClient
		if o.tlsConfig != nil {
			o.fastClient = &fasthttp.Client{TLSConfig: o.tlsConfig}
		}
	}
	return o
}

// sharedJar plays the role of the browser cookie store: every transport
// built without WithCookieJar shares it.
var sharedJar = NewCookieJar()

var sharedFastClient = &fasthttp.Client{}

// NewCookieJar returns an in-memory cookie jar using the public suffix list
// to scope domain cookies.
func NewCookieJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails today.
		panic(err)
	}
	return jar
}
