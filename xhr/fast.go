package xhr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/kbukum/gofetch/logger"
)

const backendFastHTTP = "fasthttp"

// FastRequest is an XMLHttpRequest backed by fasthttp.
//
// fasthttp has no per-call cancellation, so Abort only guarantees that
// neither callback fires; the underlying exchange runs to completion in the
// background.
type FastRequest struct {
	State
	opts options
}

var _ XMLHttpRequest = (*FastRequest)(nil)

// NewFast creates a fasthttp backed XMLHttpRequest in the UNSENT state.
func NewFast(opts ...Option) *FastRequest {
	return &FastRequest{opts: newOptions(opts)}
}

// Send starts the call on a background goroutine and returns immediately.
func (x *FastRequest) Send(body []byte) {
	c, onError, ok := x.Begin(body, nil)
	if !ok {
		if onError != nil {
			go onError(ErrInvalidState)
		}
		return
	}
	go x.run(c)
}

func (x *FastRequest) run(c Call) {
	callID := uuid.NewString()
	tel := telemetry()
	ctx, span := tel.start(context.Background(), backendFastHTTP, c, callID)
	log := x.opts.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldCallID, callID,
		logger.FieldMethod, c.Method,
		logger.FieldURL, c.URL,
	))
	started := time.Now()

	log.Debug("xhr send")

	res, err := x.do(c)
	elapsed := time.Since(started)
	if err != nil {
		nerr := &NetworkError{Method: c.Method, URL: c.URL, Err: err}
		if notify, ok := x.Fail(c.Gen, nerr); ok {
			log.Debug("xhr error", logger.MergeWithError(logger.DurationFields("send", elapsed), nerr))
			tel.finish(ctx, span, backendFastHTTP, 0, "error", nerr, elapsed)
			notify()
			return
		}
		log.Debug("xhr aborted")
		tel.finish(ctx, span, backendFastHTTP, 0, "aborted", nil, elapsed)
		return
	}

	notify, ok := x.Complete(c.Gen, res)
	if !ok {
		log.Debug("xhr aborted")
		tel.finish(ctx, span, backendFastHTTP, res.Status, "aborted", nil, elapsed)
		return
	}
	log.Debug("xhr load", logger.Fields(
		logger.FieldStatus, res.Status,
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	tel.finish(ctx, span, backendFastHTTP, res.Status, "load", nil, elapsed)
	notify()
}

// do follows redirects hop by hop with net/http's rules. The jar is read
// and updated on every hop and credential headers only go to the initial
// host or its subdomains. 301/302/303 turn a non-GET request into a
// bodiless GET.
func (x *FastRequest) do(c Call) (Result, error) {
	initial, err := url.Parse(c.URL)
	if err != nil {
		return Result{}, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	hop := initial
	method, body, header := c.Method, c.Body, c.Header
	for redirects := 0; ; redirects++ {
		req.Reset()
		resp.Reset()
		req.SetRequestURI(hop.String())
		req.Header.SetMethod(method)
		for name, values := range redirectHeader(header, initial, hop) {
			for _, v := range values {
				req.Header.Add(name, v)
			}
		}
		if body != nil {
			req.SetBody(body)
		}
		if c.WithCredentials {
			for _, ck := range x.opts.jar.Cookies(hop) {
				req.Header.SetCookie(ck.Name, ck.Value)
			}
		}

		if err := x.opts.fastClient.Do(req, resp); err != nil {
			return Result{}, err
		}
		if c.WithCredentials {
			if cookies := setCookies(&resp.Header); len(cookies) > 0 {
				x.opts.jar.SetCookies(hop, cookies)
			}
		}

		status := resp.StatusCode()
		loc := string(resp.Header.Peek(fasthttp.HeaderLocation))
		if !isRedirect(status) || loc == "" {
			break
		}
		if redirects >= x.opts.maxRedirects {
			return Result{}, errTooManyRedirects
		}
		next, err := hop.Parse(loc)
		if err != nil {
			return Result{}, fmt.Errorf("parse redirect location %q: %w", loc, err)
		}
		if status != fasthttp.StatusTemporaryRedirect && status != fasthttp.StatusPermanentRedirect {
			if method != fasthttp.MethodGet && method != fasthttp.MethodHead {
				method = fasthttp.MethodGet
			}
			if body != nil {
				body = nil
				header = header.Clone()
				header.Del("Content-Type")
				header.Del("Content-Length")
			}
		}
		hop = next
	}

	x.Loading(c.Gen)

	header = http.Header{}
	resp.Header.VisitAll(func(k, v []byte) {
		header.Add(string(k), string(v))
	})
	status := resp.StatusCode()
	return Result{
		Status:     status,
		StatusText: fasthttp.StatusMessage(status),
		URL:        hop.String(),
		Header:     header,
		Body:       append([]byte(nil), resp.Body()...),
	}, nil
}

func isRedirect(status int) bool {
	switch status {
	case fasthttp.StatusMovedPermanently, fasthttp.StatusFound, fasthttp.StatusSeeOther,
		fasthttp.StatusTemporaryRedirect, fasthttp.StatusPermanentRedirect:
		return true
	}
	return false
}

// credentialHeaders are only forwarded to the initial host or its
// subdomains.
var credentialHeaders = []string{"Authorization", "Www-Authenticate", "Cookie", "Cookie2"}

// redirectHeader returns the headers to send to dst for a call that started
// at initial. The port is ignored when comparing hosts.
func redirectHeader(h http.Header, initial, dst *url.URL) http.Header {
	ihost := strings.ToLower(initial.Hostname())
	dhost := strings.ToLower(dst.Hostname())
	if dhost == ihost || strings.HasSuffix(dhost, "."+ihost) {
		return h
	}
	h = h.Clone()
	for _, name := range credentialHeaders {
		h.Del(name)
	}
	return h
}

func setCookies(h *fasthttp.ResponseHeader) []*http.Cookie {
	var cookies []*http.Cookie
	h.VisitAllCookie(func(_, v []byte) {
		if ck, err := http.ParseSetCookie(string(v)); err == nil {
			cookies = append(cookies, ck)
		}
	})
	return cookies
}
