package fetch

import (
	"bytes"
	"io"
	"reflect"
	"testing"

	"github.com/kbukum/gofetch/xhr/xhrmock"
)

func loadedResponse(t *testing.T, f *recordingXHR) *Response {
	t.Helper()
	p := New("/api", RequestInit{}, withFake(f)).Fetch()
	f.load()
	res, err := await(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestResponse_Snapshot(t *testing.T) {
	res := loadedResponse(t, &recordingXHR{
		status:     201,
		statusText: "Created",
		url:        "https://example.com/final",
		text:       "done",
		payload:    []byte("done"),
		rawHeaders: "Location: /x\r\n",
	})

	if !res.OK || res.Status != 201 || res.StatusText != "Created" {
		t.Errorf("unexpected status fields: %+v", res)
	}
	if res.URL != "https://example.com/final" {
		t.Errorf("expected final url, got %q", res.URL)
	}
	if res.Headers.Get("location") != "/x" {
		t.Errorf("expected location header, got %q", res.Headers.Get("location"))
	}
}

func TestResponse_BodyAccessorsRepeatable(t *testing.T) {
	res := loadedResponse(t, &recordingXHR{
		status:  200,
		text:    `{"n":1}`,
		payload: []byte(`{"n":1}`),
	})

	for i := 0; i < 3; i++ {
		if res.Text() != `{"n":1}` {
			t.Fatalf("Text() call %d changed: %q", i, res.Text())
		}

		var v map[string]int
		if err := res.JSON(&v); err != nil {
			t.Fatalf("JSON() call %d failed: %v", i, err)
		}
		if v["n"] != 1 {
			t.Fatalf("JSON() call %d = %v", i, v)
		}

		b := res.Blob()
		if b.Text() != `{"n":1}` || b.Size() != 7 {
			t.Fatalf("Blob() call %d = %q", i, b.Text())
		}
		data := b.Bytes()
		data[0] = 'X'
	}

	if !bytes.Equal(res.Blob().Bytes(), []byte(`{"n":1}`)) {
		t.Error("mutating Blob().Bytes() must not affect later reads")
	}
}

func TestResponse_TransportBufferNotAliased(t *testing.T) {
	f := &recordingXHR{status: 200, payload: []byte("abc")}
	res := loadedResponse(t, f)
	f.payload[0] = 'z'

	if got := res.Blob().Text(); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

func TestResponse_JSONMalformedFailsLazily(t *testing.T) {
	mock := xhrmock.New()
	mock.Get("/api", xhrmock.Respond(200, "not json"))

	res, err := await(t, New("/api", RequestInit{}, WithTransport(mock.Factory())).Fetch())
	if err != nil {
		t.Fatalf("malformed body must not reject the fetch: %v", err)
	}

	var v any
	if err := res.JSON(&v); err == nil {
		t.Error("expected a parse error from JSON()")
	}
	if res.Text() != "not json" {
		t.Errorf("Text() should still work, got %q", res.Text())
	}
}

func TestResponse_Clone(t *testing.T) {
	res := loadedResponse(t, &recordingXHR{
		status:     202,
		statusText: "Accepted",
		text:       "queued",
		payload:    []byte("queued"),
		rawHeaders: "A: 1\r\nB: 2\r\nA: 3\r\n",
	})

	c := res.Clone()
	if c == res {
		t.Fatal("Clone should return a new Response")
	}
	if c.Status != res.Status || c.OK != res.OK || c.StatusText != res.StatusText {
		t.Errorf("clone status differs: %+v vs %+v", c, res)
	}
	if !reflect.DeepEqual(c.Headers.Entries(), res.Headers.Entries()) {
		t.Error("clone headers differ")
	}
	if c.Text() != res.Text() {
		t.Error("clone text differs")
	}

	res.Status = 500
	if c.Clone().Status != 202 {
		t.Error("clone must reflect the completed call, not the mutated view")
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		A string `json:"a"`
	}
	res := loadedResponse(t, &recordingXHR{status: 200, text: `{"a":"b"}`})

	got, err := DecodeJSON[payload](res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.A != "b" {
		t.Errorf("expected b, got %q", got.A)
	}
}

func TestBlob_ReaderAndSlice(t *testing.T) {
	b := newBlob([]byte("hello world"))

	data, err := io.ReadAll(b.Reader())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("expected hello world, got %q", data)
	}

	tests := []struct {
		start, end int
		want       string
	}{
		{0, 5, "hello"},
		{6, 100, "world"},
		{-5, 11, "world"},
		{8, 2, ""},
		{-100, 2, "he"},
	}
	for _, tt := range tests {
		if got := b.Slice(tt.start, tt.end).Text(); got != tt.want {
			t.Errorf("Slice(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestBlob_Type(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if got := newBlob(png).Type(); got != "image/png" {
		t.Errorf("expected image/png, got %q", got)
	}
}
