package xhr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/gofetch/logger"
)

const backendNetHTTP = "net/http"

// HTTPRequest is an XMLHttpRequest backed by net/http.
type HTTPRequest struct {
	State
	opts options
}

var _ XMLHttpRequest = (*HTTPRequest)(nil)

// New creates a net/http backed XMLHttpRequest in the UNSENT state.
func New(opts ...Option) *HTTPRequest {
	return &HTTPRequest{opts: newOptions(opts)}
}

// Send starts the call on a background goroutine and returns immediately.
// A nil body sends no payload.
func (x *HTTPRequest) Send(body []byte) {
	ctx, cancel := context.WithCancel(context.Background())
	c, onError, ok := x.Begin(body, cancel)
	if !ok {
		cancel()
		if onError != nil {
			go onError(ErrInvalidState)
		}
		return
	}
	go x.run(ctx, cancel, c)
}

func (x *HTTPRequest) run(ctx context.Context, cancel context.CancelFunc, c Call) {
	defer cancel()

	callID := uuid.NewString()
	tel := telemetry()
	ctx, span := tel.start(ctx, backendNetHTTP, c, callID)
	log := x.opts.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldCallID, callID,
		logger.FieldMethod, c.Method,
		logger.FieldURL, c.URL,
	))
	started := time.Now()

	log.Debug("xhr send")

	res, err := x.roundTrip(ctx, c)
	elapsed := time.Since(started)
	if err != nil {
		nerr := &NetworkError{Method: c.Method, URL: c.URL, Err: err}
		if notify, ok := x.Fail(c.Gen, nerr); ok {
			log.Debug("xhr error", logger.MergeWithError(logger.DurationFields("send", elapsed), nerr))
			tel.finish(ctx, span, backendNetHTTP, 0, "error", nerr, elapsed)
			notify()
			return
		}
		log.Debug("xhr aborted")
		tel.finish(ctx, span, backendNetHTTP, 0, "aborted", nil, elapsed)
		return
	}

	notify, ok := x.Complete(c.Gen, res)
	if !ok {
		log.Debug("xhr aborted")
		tel.finish(ctx, span, backendNetHTTP, res.Status, "aborted", nil, elapsed)
		return
	}
	log.Debug("xhr load", logger.Fields(
		logger.FieldStatus, res.Status,
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	tel.finish(ctx, span, backendNetHTTP, res.Status, "load", nil, elapsed)
	notify()
}

func (x *HTTPRequest) roundTrip(ctx context.Context, c Call) (Result, error) {
	var body io.Reader
	if c.Body != nil {
		body = bytes.NewReader(c.Body)
	}
	req, err := http.NewRequestWithContext(ctx, c.Method, c.URL, body)
	if err != nil {
		return Result{}, err
	}
	req.Header = c.Header

	client := &http.Client{
		Transport:     x.opts.roundTripper,
		CheckRedirect: x.checkRedirect,
	}
	if c.WithCredentials {
		client.Jar = x.opts.jar
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	x.Loading(c.Gen)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response body: %w", err)
	}

	return Result{
		Status:     resp.StatusCode,
		StatusText: reasonPhrase(resp),
		URL:        resp.Request.URL.String(),
		Header:     resp.Header,
		Body:       data,
	}, nil
}

var errTooManyRedirects = errors.New("too many redirects")

func (x *HTTPRequest) checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) > x.opts.maxRedirects {
		return errTooManyRedirects
	}
	return nil
}

// reasonPhrase extracts the server's reason phrase from a "200 OK" status line.
func reasonPhrase(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
