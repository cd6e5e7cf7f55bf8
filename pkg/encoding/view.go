package encoding

import "fmt"

// Writer hands out consecutive, non-overlapping regions of a fixed buffer.
// Asking for more than the buffer holds is a programming error and panics;
// callers validate sizes before any packing starts.
type Writer struct {
	buf []byte
	off int
}

// NewWriter returns a Writer over buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Next returns the next n bytes of the buffer for the caller to fill.
func (w *Writer) Next(n int) []byte {
	if n < 0 || w.off+n > len(w.buf) {
		panic(fmt.Sprintf("encoding: write of %d bytes at offset %d overflows %d-byte buffer", n, w.off, len(w.buf)))
	}
	b := w.buf[w.off : w.off+n : w.off+n]
	w.off += n
	return b
}

// Put copies b into the next len(b) bytes.
func (w *Writer) Put(b []byte) {
	copy(w.Next(len(b)), b)
}

// Offset returns the number of bytes handed out so far.
func (w *Writer) Offset() int { return w.off }

// Full reports whether the whole buffer has been handed out.
func (w *Writer) Full() bool { return w.off == len(w.buf) }

// Reader walks a fixed buffer in consecutive regions.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Next returns the next n bytes. The slice aliases the underlying buffer.
func (r *Reader) Next(n int) []byte {
	if n < 0 || r.off+n > len(r.buf) {
		panic(fmt.Sprintf("encoding: read of %d bytes at offset %d overflows %d-byte buffer", n, r.off, len(r.buf)))
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }
