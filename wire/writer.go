package wire

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Writer emits wire frames over an HTTP response. It requires the
// underlying ResponseWriter to support flushing so frames reach the
// client as they are produced.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter wraps w for frame emission. It returns an error when the
// ResponseWriter cannot flush, which would silently buffer the stream.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("wire: response writer does not support streaming")
	}
	return &Writer{w: w, flusher: flusher}, nil
}

// WriteHeaders commits the streaming response: event-stream content
// type, caching and proxy buffering disabled. Call once, before the
// first frame.
func (sw *Writer) WriteHeaders() {
	// Long-lived stream; the server's WriteTimeout must not cut it off.
	rc := http.NewResponseController(sw.w)
	_ = rc.SetWriteDeadline(time.Time{})

	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	sw.w.WriteHeader(http.StatusOK)
	sw.flusher.Flush()
}

// WriteEvent marshals ev into a single frame and flushes it. A write
// failure means the client is gone; the caller should stop streaming.
func (sw *Writer) WriteEvent(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("wire: marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(sw.w, "%s%s\n\n", dataPrefix, payload); err != nil {
		return fmt.Errorf("wire: write frame: %w", err)
	}
	sw.flusher.Flush()
	return nil
}

// WriteDelta emits an incremental fragment.
func (sw *Writer) WriteDelta(text string) error {
	return sw.WriteEvent(Delta(text))
}

// WriteDone emits the terminal success frame.
func (sw *Writer) WriteDone(text string) error {
	return sw.WriteEvent(Done(text))
}

// WriteError emits the terminal failure frame.
func (sw *Writer) WriteError(msg string) error {
	return sw.WriteEvent(Error(msg))
}
