package wire_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voxlab/scribe/wire"
)

func TestWriterFramesEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := wire.NewWriter(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w.WriteHeaders()
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("unexpected cache control: %q", cc)
	}
	if ab := rec.Header().Get("X-Accel-Buffering"); ab != "no" {
		t.Fatalf("unexpected accel buffering: %q", ab)
	}

	if err := w.WriteDelta("Hel"); err != nil {
		t.Fatalf("write delta: %v", err)
	}
	if err := w.WriteDone("Hello"); err != nil {
		t.Fatalf("write done: %v", err)
	}

	body := rec.Body.String()
	wantFrames := []string{
		"data: {\"type\":\"delta\",\"text\":\"Hel\"}\n\n",
		"data: {\"type\":\"done\",\"text\":\"Hello\"}\n\n",
	}
	if body != strings.Join(wantFrames, "") {
		t.Fatalf("unexpected body:\n%q", body)
	}
	if !rec.Flushed {
		t.Fatal("expected writer to flush")
	}
}

func TestWriterRoundTripsThroughDecoder(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := wire.NewWriter(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.WriteHeaders()
	_ = w.WriteDelta("one ")
	_ = w.WriteDelta("two")
	_ = w.WriteDone("one two three")

	got, err := wire.Consume(rec.Body, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "one two three" {
		t.Fatalf("expected %q, got %q", "one two three", got)
	}
}

func TestWriterErrorEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := wire.NewWriter(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.WriteHeaders()
	if err := w.WriteError("provider unavailable"); err != nil {
		t.Fatalf("write error frame: %v", err)
	}

	if _, err := wire.Consume(rec.Body, nil); err == nil {
		t.Fatal("expected decoder to surface the error frame")
	}
}

func TestNewWriterRequiresFlusher(t *testing.T) {
	if _, err := wire.NewWriter(nonFlusher{}); err == nil {
		t.Fatal("expected error for non-flushing writer")
	}
}

type nonFlusher struct{}

func (nonFlusher) Header() http.Header         { return http.Header{} }
func (nonFlusher) Write(p []byte) (int, error) { return len(p), nil }
func (nonFlusher) WriteHeader(int)             {}
