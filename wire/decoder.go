package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// StreamError is the client-side form of a terminal error frame. It
// carries the message the server put on the wire.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("wire: stream error: %s", e.Message)
}

// Decoder incrementally reassembles wire frames from arbitrarily
// chunked network reads. Chunks may split lines, frames, and even
// multi-byte characters; the decoder buffers bytes and only acts on
// complete newline-terminated lines.
type Decoder struct {
	buf        []byte
	total      string
	onProgress func(string)
	terminated bool
}

// NewDecoder creates a Decoder. onProgress, when non-nil, is invoked
// with the running transcript after each delta.
func NewDecoder(onProgress func(string)) *Decoder {
	return &Decoder{onProgress: onProgress}
}

// Consume reads r to exhaustion and returns the final transcript.
// An error frame surfaces as *StreamError; transport read failures
// propagate as-is. A stream that ends without a done frame returns the
// deltas accumulated so far.
func Consume(r io.Reader, onProgress func(string)) (string, error) {
	d := NewDecoder(onProgress)
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if ferr := d.Feed(chunk[:n]); ferr != nil {
				return "", ferr
			}
			if d.terminated {
				return d.total, nil
			}
		}
		if err == io.EOF {
			return d.total, nil
		}
		if err != nil {
			return "", fmt.Errorf("wire: read stream: %w", err)
		}
	}
}

// Feed appends one network chunk and processes every complete line it
// unlocks. Returns nil unless a terminal error frame or a malformed
// frame is encountered.
func (d *Decoder) Feed(chunk []byte) error {
	d.buf = append(d.buf, chunk...)

	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			return nil
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]

		if err := d.processLine(line); err != nil {
			return err
		}
		if d.terminated {
			// An error frame aborts the stream; a done frame is
			// authoritative. Either way, discard the rest.
			d.buf = nil
			return nil
		}
	}
}

func (d *Decoder) processLine(line []byte) error {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return nil
	}
	payload := line[len(dataPrefix):]

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		// A syntax failure means the frame was truncated mid-line;
		// skip it and keep decoding. Anything else is a malformed
		// frame and fatal.
		if _, ok := err.(*json.SyntaxError); ok {
			return nil
		}
		return fmt.Errorf("wire: malformed frame: %w", err)
	}

	switch ev.Type {
	case EventDelta:
		d.total += ev.Text
		if d.onProgress != nil {
			d.onProgress(d.total)
		}
	case EventDone:
		// The final text replaces whatever the deltas built up.
		d.total = ev.Text
		d.terminated = true
	case EventError:
		d.terminated = true
		return &StreamError{Message: ev.Error}
	default:
		// Unknown event types are skipped so protocol additions do
		// not break older clients.
	}
	return nil
}

// Text returns the transcript accumulated so far.
func (d *Decoder) Text() string {
	return d.total
}
