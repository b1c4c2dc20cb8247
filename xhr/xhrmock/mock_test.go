package xhrmock

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/gofetch/xhr"
)

func send(t *testing.T, x xhr.XMLHttpRequest, body []byte) error {
	t.Helper()
	done := make(chan error, 1)
	x.SetOnLoad(func() { done <- nil })
	x.SetOnError(func(err error) { done <- err })
	x.Send(body)
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("no signal fired")
		return nil
	}
}

func TestMock_RouteAndRecord(t *testing.T) {
	m := New()
	m.Post("/items", func(req *Request, res *Response) (*Response, error) {
		return res.Status(201).Reason("Made").URL("/items/1").Header("Location", "/items/1").Body(string(req.Body())), nil
	})

	x := m.NewXHR()
	x.Open("post", "/items?x=1", true)
	x.SetRequestHeader("Accept", "a")
	x.SetRequestHeader("accept", "b")
	x.SetWithCredentials(true)
	if err := send(t, x, []byte("data")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if x.Status() != 201 || x.StatusText() != "Made" {
		t.Errorf("unexpected status %d %q", x.Status(), x.StatusText())
	}
	if x.ResponseURL() != "/items/1" {
		t.Errorf("unexpected url %q", x.ResponseURL())
	}
	if x.ResponseText() != "data" {
		t.Errorf("unexpected body %q", x.ResponseText())
	}
	if x.GetAllResponseHeaders() != "Location: /items/1\r\n" {
		t.Errorf("unexpected header dump %q", x.GetAllResponseHeaders())
	}

	reqs := m.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(reqs))
	}
	r := reqs[0]
	if r.Method() != "POST" || r.URL() != "/items?x=1" || !r.WithCredentials() {
		t.Errorf("unexpected recorded request %+v", r)
	}
	if v, ok := r.Header("ACCEPT"); !ok || v != "a, b" {
		t.Errorf("expected combined accept header, got %q %v", v, ok)
	}
	if _, ok := r.Header("Content-Type"); ok {
		t.Error("expected Content-Type to be absent")
	}
}

func TestMock_UnmatchedIs404(t *testing.T) {
	m := New()
	x := m.NewXHR()
	x.Open("GET", "/nowhere", true)
	if err := send(t, x, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x.Status() != 404 || x.StatusText() != "Not Found" {
		t.Errorf("expected 404, got %d %q", x.Status(), x.StatusText())
	}
	if x.ResponseURL() != "/nowhere" {
		t.Errorf("expected request url as response url, got %q", x.ResponseURL())
	}
}

func TestMock_Error(t *testing.T) {
	boom := errors.New("boom")
	m := New().Error("/api", boom)
	x := m.NewXHR()
	x.Open("GET", "/api", true)

	if err := send(t, x, nil); err != boom {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestMock_RawHeaders(t *testing.T) {
	m := New()
	m.Get("/api", func(_ *Request, res *Response) (*Response, error) {
		return res.RawHeaders("A: 1\nB: 2"), nil
	})
	x := m.NewXHR()
	x.Open("GET", "http://example.com/api", true)
	if err := send(t, x, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x.GetAllResponseHeaders() != "A: 1\nB: 2" {
		t.Errorf("unexpected dump %q", x.GetAllResponseHeaders())
	}
}

func TestMock_DelayAndAbort(t *testing.T) {
	m := New()
	m.Get("/slow", Delay(Respond(200, "late"), 50*time.Millisecond))

	x := m.NewXHR()
	x.Open("GET", "/slow", true)
	var fired atomic.Int32
	x.SetOnLoad(func() { fired.Add(1) })
	x.SetOnError(func(error) { fired.Add(1) })
	x.Send(nil)
	x.Abort()

	time.Sleep(150 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("expected no signals after abort, got %d", fired.Load())
	}
	if x.ReadyState() != xhr.Unsent {
		t.Errorf("expected UNSENT, got %s", x.ReadyState())
	}
}

func TestMock_SendTwiceIsInvalid(t *testing.T) {
	m := New()
	m.Get("/api", Respond(200, "ok"))
	x := m.NewXHR()
	x.Open("GET", "/api", true)
	if err := send(t, x, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := send(t, x, nil); !errors.Is(err, xhr.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestMock_ReopenSupersedesInFlightCall(t *testing.T) {
	m := New()
	m.Get("/slow", Delay(Respond(200, "stale"), 50*time.Millisecond))
	m.Get("/fast", Respond(200, "fresh"))

	x := m.NewXHR()
	loads := make(chan string, 2)
	x.SetOnLoad(func() { loads <- x.ResponseText() })
	x.Open("GET", "/slow", true)
	x.Send(nil)

	x.Open("GET", "/fast", true)
	if x.GetAllResponseHeaders() != "" || x.Status() != 0 {
		t.Error("expected no response before the new call completes")
	}
	x.Send(nil)

	select {
	case got := <-loads:
		if got != "fresh" {
			t.Errorf("expected the reopened call's response, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no signal fired")
	}
	time.Sleep(100 * time.Millisecond)
	if len(loads) != 0 {
		t.Errorf("the superseded call must not fire onLoad, got %q", <-loads)
	}
	if x.ResponseText() != "fresh" || x.ReadyState() != xhr.Done {
		t.Errorf("unexpected final state %q %s", x.ResponseText(), x.ReadyState())
	}
	if len(m.Requests()) != 2 {
		t.Errorf("expected both sends recorded, got %d", len(m.Requests()))
	}
}
