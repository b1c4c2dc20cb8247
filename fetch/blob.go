package fetch

import (
	"bytes"
	"io"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// Blob is an immutable view over a binary response payload.
type Blob struct {
	data []byte

	typeOnce sync.Once
	mime     string
}

func newBlob(data []byte) *Blob {
	return &Blob{data: data}
}

// Size returns the payload length in bytes.
func (b *Blob) Size() int {
	return len(b.data)
}

// Bytes returns a copy of the payload.
func (b *Blob) Bytes() []byte {
	return bytes.Clone(b.data)
}

// Text returns the payload as a string.
func (b *Blob) Text() string {
	return string(b.data)
}

// Reader returns a fresh reader positioned at the start of the payload.
func (b *Blob) Reader() io.Reader {
	return bytes.NewReader(b.data)
}

// Slice returns a Blob over data[start:end]. Negative offsets count from the
// end and out-of-range offsets are clamped.
func (b *Blob) Slice(start, end int) *Blob {
	n := len(b.data)
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return max(0, min(i, n))
	}
	start, end = clamp(start), clamp(end)
	if end < start {
		end = start
	}
	return newBlob(b.data[start:end])
}

// Type returns the media type sniffed from the payload content.
func (b *Blob) Type() string {
	b.typeOnce.Do(func() {
		b.mime = mimetype.Detect(b.data).String()
	})
	return b.mime
}
