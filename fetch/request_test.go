package fetch

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/gofetch/logger"
	"github.com/kbukum/gofetch/xhr/xhrmock"
)

func await[T any](t *testing.T, p *Promise[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := p.Await(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("promise did not settle in time")
	}
	return v, err
}

func TestNew_DefaultsSetup(t *testing.T) {
	f := &recordingXHR{}
	New("/api", RequestInit{}, withFake(f))

	if f.openMethod != "get" {
		t.Errorf("expected default method get, got %q", f.openMethod)
	}
	if f.openURL != "/api" {
		t.Errorf("expected url /api, got %q", f.openURL)
	}
	if !f.openAsync {
		t.Error("expected async open")
	}
	if f.withCreds {
		t.Error("expected withCredentials=false by default")
	}
	if len(f.headers) != 0 {
		t.Errorf("expected no request headers, got %v", f.headers)
	}
	if f.sends != 0 {
		t.Error("New must not send")
	}
}

func TestNew_DebugLogRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json", Output: "stderr"}, "test", &buf)

	ri := RequestInit{Headers: map[string]string{"Accept": "text/plain"}}.WithAuth(BearerAuth("s3cret"))
	New("/api", ri, withFake(&recordingXHR{}), WithLogger(log))

	out := buf.String()
	if !strings.Contains(out, "request configured") || !strings.Contains(out, "Bearer ***") {
		t.Errorf("expected redacted setup log, got %q", out)
	}
	if strings.Contains(out, "s3cret") {
		t.Errorf("token leaked into log: %q", out)
	}
	if !strings.Contains(out, "text/plain") {
		t.Errorf("expected plain headers to be logged, got %q", out)
	}
}

func TestNew_MethodVerbatim(t *testing.T) {
	f := &recordingXHR{}
	New("/api", RequestInit{Method: "pAtCh"}, withFake(f))
	if f.openMethod != "pAtCh" {
		t.Errorf("expected method passed verbatim, got %q", f.openMethod)
	}
}

func TestNew_Credentials(t *testing.T) {
	tests := []struct {
		creds Credentials
		want  bool
	}{
		{"", false},
		{CredentialsOmit, false},
		{CredentialsSameOrigin, false},
		{"Include", false},
		{CredentialsInclude, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.creds), func(t *testing.T) {
			f := &recordingXHR{}
			New("/api", RequestInit{Credentials: tt.creds}, withFake(f))
			if f.withCreds != tt.want {
				t.Errorf("credentials %q: withCredentials=%v, want %v", tt.creds, f.withCreds, tt.want)
			}
		})
	}
}

func TestNew_HeadersForwardedUnmodified(t *testing.T) {
	f := &recordingXHR{}
	New("/api", RequestInit{Headers: map[string]string{
		"X-Trace":      "abc",
		"Accept":       "application/json",
		"content-type": "text/plain",
	}}, withFake(f))

	want := [][2]string{
		{"Accept", "application/json"},
		{"X-Trace", "abc"},
		{"content-type", "text/plain"},
	}
	if !reflect.DeepEqual(f.headers, want) {
		t.Errorf("headers = %v, want %v", f.headers, want)
	}
}

func TestFetch_BodyForwarded(t *testing.T) {
	f := &recordingXHR{}
	New("/api", RequestInit{Method: "POST", Body: []byte("payload")}, withFake(f)).Fetch()
	if string(f.body) != "payload" {
		t.Errorf("expected body payload, got %q", f.body)
	}

	f = &recordingXHR{}
	New("/api", RequestInit{Body: []byte{}}, withFake(f)).Fetch()
	if f.body != nil {
		t.Errorf("expected nil body for empty payload, got %q", f.body)
	}
}

func TestFetch_JustLikeFetch(t *testing.T) {
	mock := xhrmock.New()
	var contentType atomic.Value
	mock.Get("/api", func(req *xhrmock.Request, res *xhrmock.Response) (*xhrmock.Response, error) {
		_, ok := req.Header("Content-Type")
		contentType.Store(ok)
		return res.Status(200).Body(`{"a":"b"}`), nil
	})

	p := Then(New("/api", RequestInit{}, WithTransport(mock.Factory())).Fetch(),
		DecodeJSON[map[string]any])

	got, err := await(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"a": "b"}) {
		t.Errorf("expected {a:b}, got %v", got)
	}
	if contentType.Load() != false {
		t.Error("expected no Content-Type request header")
	}
}

func TestFetch_Text(t *testing.T) {
	mock := xhrmock.New()
	mock.Get("/api", func(_ *xhrmock.Request, res *xhrmock.Response) (*xhrmock.Response, error) {
		return res.Status(200).Header("Content-Type", "text/plain").Body("hello"), nil
	})

	res, err := await(t, New("/api", RequestInit{}, WithTransport(mock.Factory())).Fetch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text() != "hello" {
		t.Errorf("expected hello, got %q", res.Text())
	}
	if res.Headers.Get("content-type") != "text/plain" {
		t.Errorf("expected text/plain, got %q", res.Headers.Get("content-type"))
	}
}

func TestFetch_DelayedJSONWithHeaders(t *testing.T) {
	mock := xhrmock.New()
	var accept atomic.Value
	mock.Get("/api", xhrmock.Delay(func(req *xhrmock.Request, res *xhrmock.Response) (*xhrmock.Response, error) {
		v, _ := req.Header("Accept")
		accept.Store(v)
		return res.Status(200).Body(`{"x":"y"}`), nil
	}, 50*time.Millisecond))

	var onSuccess, onError atomic.Int32
	var got atomic.Value
	req := New("/api", RequestInit{Headers: map[string]string{"Accept": "application/json"}},
		WithTransport(mock.Factory()))
	Then(req.Fetch(), DecodeJSON[map[string]string]).OnSettled(
		func(v map[string]string) { onSuccess.Add(1); got.Store(v) },
		func(error) { onError.Add(1) },
	)

	time.Sleep(250 * time.Millisecond)

	if onSuccess.Load() != 1 {
		t.Fatalf("expected onSuccess once, got %d", onSuccess.Load())
	}
	if onError.Load() != 0 {
		t.Errorf("expected no onError, got %d", onError.Load())
	}
	if v := got.Load().(map[string]string); v["x"] != "y" {
		t.Errorf("expected {x:y}, got %v", v)
	}
	if accept.Load() != "application/json" {
		t.Errorf("expected Accept header, got %v", accept.Load())
	}
}

func TestFetch_NetworkErrorRejectsWithTransportValue(t *testing.T) {
	netErr := errors.New("connection refused")
	mock := xhrmock.New().Error("/api", netErr)

	_, err := await(t, New("/api", RequestInit{}, WithTransport(mock.Factory())).Fetch())
	if err != netErr {
		t.Errorf("expected the transport error unwrapped, got %#v", err)
	}
}

func TestFetch_HTTPErrorStatusFulfills(t *testing.T) {
	mock := xhrmock.New()
	mock.Get("/missing", xhrmock.Respond(404, "nope"))

	res, err := await(t, New("/missing", RequestInit{}, WithTransport(mock.Factory())).Fetch())
	if err != nil {
		t.Fatalf("4xx must not reject: %v", err)
	}
	if res.OK {
		t.Error("expected OK=false for 404")
	}
	if res.Status != 404 || res.StatusText != "Not Found" {
		t.Errorf("unexpected status %d %q", res.Status, res.StatusText)
	}
	if res.Text() != "nope" {
		t.Errorf("expected body nope, got %q", res.Text())
	}
}

func TestFetch_OKMatchesStatusClass(t *testing.T) {
	for _, status := range []int{100, 199, 200, 201, 204, 299, 300, 304, 404, 500, 599} {
		f := &recordingXHR{status: status}
		p := New("/api", RequestInit{}, withFake(f)).Fetch()
		f.load()

		res, err := await(t, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := status >= 200 && status <= 299
		if res.OK != want {
			t.Errorf("status %d: OK=%v, want %v", status, res.OK, want)
		}
	}
}

func TestFetch_AbortNeverSettles(t *testing.T) {
	mock := xhrmock.New()
	mock.Get("/api", xhrmock.Delay(xhrmock.Respond(200, "late"), 100*time.Millisecond))

	var onSuccess, onError atomic.Int32
	req := New("/api", RequestInit{}, WithTransport(mock.Factory()))
	p := req.Fetch()
	p.OnSettled(func(*Response) { onSuccess.Add(1) }, func(error) { onError.Add(1) })

	req.XHR().Abort()

	time.Sleep(300 * time.Millisecond)

	if onSuccess.Load() != 0 || onError.Load() != 0 {
		t.Errorf("expected no callbacks after abort, got success=%d error=%d", onSuccess.Load(), onError.Load())
	}
	if p.Settled() {
		t.Error("aborted promise must stay pending")
	}
}

func TestFetch_CancelIsAbort(t *testing.T) {
	f := &recordingXHR{}
	req := New("/api", RequestInit{}, withFake(f))
	p := req.Fetch()
	req.Cancel()

	if !f.aborted {
		t.Error("Cancel should abort the transport")
	}
	if p.Settled() {
		t.Error("Cancel must not settle the promise")
	}
}

func TestFetch_SendsOnce(t *testing.T) {
	mock := xhrmock.New()
	mock.Get("/api", xhrmock.Respond(200, "ok"))

	req := New("/api", RequestInit{}, WithTransport(mock.Factory()))
	p1 := req.Fetch()
	p2 := req.Fetch()
	if p1 != p2 {
		t.Error("expected repeated Fetch to return the same promise")
	}
	if _, err := await(t, p1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(mock.Requests()); n != 1 {
		t.Errorf("expected a single send, got %d", n)
	}
}

func TestFetch_SynchronousTransport(t *testing.T) {
	f := &recordingXHR{status: 200, text: "sync", loadOnSend: true}
	p := New("/api", RequestInit{}, withFake(f)).Fetch()

	if !p.Settled() {
		t.Fatal("expected promise to settle during Send")
	}
	res, _ := await(t, p)
	if res.Text() != "sync" {
		t.Errorf("expected sync, got %q", res.Text())
	}
}

func TestFetch_ErrorFromFake(t *testing.T) {
	f := &recordingXHR{}
	p := New("/api", RequestInit{}, withFake(f)).Fetch()
	boom := errors.New("boom")
	f.fail(boom)

	if _, err := await(t, p); err != boom {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestFetch_DuplicateResponseHeaders(t *testing.T) {
	mock := xhrmock.New()
	mock.Get("/api", func(_ *xhrmock.Request, res *xhrmock.Response) (*xhrmock.Response, error) {
		return res.Header("Set-Thing", "a").Header("X-Other", "o").Header("set-thing", "b"), nil
	})

	res, err := await(t, New("/api", RequestInit{}, WithTransport(mock.Factory())).Fetch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Headers.Get("Set-Thing"); got != "a,b" {
		t.Errorf("expected a,b, got %q", got)
	}
	if n := len(res.Headers.Entries()); n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
}

func TestFetch_CredentialsReachTransport(t *testing.T) {
	mock := xhrmock.New()
	mock.Get("/api", xhrmock.Respond(200, ""))

	_, err := await(t, New("/api", RequestInit{Credentials: CredentialsInclude}, WithTransport(mock.Factory())).Fetch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reqs := mock.Requests()
	if len(reqs) != 1 || !reqs[0].WithCredentials() {
		t.Error("expected withCredentials on the sent request")
	}
	if reqs[0].Method() != "GET" {
		t.Errorf("expected normalized GET on the wire, got %s", reqs[0].Method())
	}
	if reqs[0].HeaderCount() != 0 {
		t.Errorf("expected no request headers, got %d", reqs[0].HeaderCount())
	}
}
