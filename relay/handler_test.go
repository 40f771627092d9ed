package relay_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/voxlab/scribe/convert"
	"github.com/voxlab/scribe/relay"
	"github.com/voxlab/scribe/transcription"
	"github.com/voxlab/scribe/wire"
)

// fakeProvider records the request it received and replays canned
// results. With chunks set it acts as a native streamer.
type fakeProvider struct {
	lastReq transcription.Request
	text    string
	err     error
	chunks  []transcription.Chunk
}

func (f *fakeProvider) Name() string                     { return "fake" }
func (f *fakeProvider) IsAvailable(context.Context) bool { return true }

func (f *fakeProvider) Transcribe(_ context.Context, req transcription.Request) (*transcription.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &transcription.Response{Text: f.text}, nil
}

type fakeStreamer struct{ fakeProvider }

func (f *fakeStreamer) TranscribeStream(_ context.Context, req transcription.Request) (<-chan transcription.Chunk, error) {
	f.lastReq = req
	ch := make(chan transcription.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

// brokenConverter has an ffmpeg path that cannot exist, so any
// conversion attempt fails loudly. Pass-through paths never touch it.
func brokenConverter(t *testing.T) *convert.Converter {
	t.Helper()
	conv, err := convert.New(convert.Config{
		FFmpegPath: filepath.Join(t.TempDir(), "definitely-missing"),
		TempDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new converter: %v", err)
	}
	return conv
}

// stubConverter runs a shell script in place of ffmpeg that writes a
// fixed payload to the output path.
func stubConverter(t *testing.T, output string) *convert.Converter {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\nfor last; do :; done\nprintf '%s' > \"$last\"\n", output)
	path := filepath.Join(t.TempDir(), "ffmpeg-stub")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	conv, err := convert.New(convert.Config{FFmpegPath: path, TempDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new converter: %v", err)
	}
	return conv
}

func newRouter(t *testing.T, p transcription.Provider, conv *convert.Converter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := transcription.NewRegistry()
	reg.Set("fake", p)
	h := relay.NewHandler(reg, "fake", conv, nil)
	engine := gin.New()
	h.RegisterRoutes(engine)
	return engine
}

func postJSON(engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

// wavPayload is a minimal RIFF header, enough for classification.
func wavPayload() []byte {
	return []byte("RIFF\x24\x00\x00\x00WAVEfmt rest-of-wav-data")
}

func webmPayload() []byte {
	return append([]byte{0x1A, 0x45, 0xDF, 0xA3}, bytes.Repeat([]byte{0x42}, 16)...)
}

// mp3Payload starts with an ID3 tag header.
func mp3Payload() []byte {
	return append([]byte("ID3\x03\x00"), bytes.Repeat([]byte{0x00}, 16)...)
}

func TestTranscribeSyncMissingAudio(t *testing.T) {
	engine := newRouter(t, &fakeProvider{}, brokenConverter(t))

	for _, path := range []string{"/v1/transcribe", "/v1/transcribe/stream"} {
		rec := postJSON(engine, path, map[string]string{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 for missing audio, got %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("%s: expected JSON error body, got %q", path, ct)
		}
	}
}

func TestTranscribeSyncInvalidBase64(t *testing.T) {
	engine := newRouter(t, &fakeProvider{}, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe", map[string]string{"audio": "!!! not base64 !!!"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTranscribeSyncWavPassthrough(t *testing.T) {
	p := &fakeProvider{text: "hello from wav"}
	// The broken converter guarantees that any conversion attempt fails:
	// a passing test proves wav bytes went through untouched.
	engine := newRouter(t, p, brokenConverter(t))

	original := wavPayload()
	rec := postJSON(engine, "/v1/transcribe", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(original),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.Text != "hello from wav" {
		t.Fatalf("unexpected text: %q", body.Data.Text)
	}
	if !bytes.Equal(p.lastReq.Audio, original) {
		t.Fatal("expected wav bytes to pass through unchanged")
	}
	if p.lastReq.Filename != "audio.wav" {
		t.Fatalf("unexpected filename: %q", p.lastReq.Filename)
	}
}

func TestTranscribeSyncMp3Passthrough(t *testing.T) {
	p := &fakeProvider{text: "hello from mp3"}
	engine := newRouter(t, p, brokenConverter(t))

	original := mp3Payload()
	rec := postJSON(engine, "/v1/transcribe", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(original),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(p.lastReq.Audio, original) {
		t.Fatal("expected mp3 bytes to pass through unchanged")
	}
	if p.lastReq.Filename != "audio.mp3" {
		t.Fatalf("unexpected filename: %q", p.lastReq.Filename)
	}
}

func TestTranscribeSyncConvertsWebM(t *testing.T) {
	p := &fakeProvider{text: "converted"}
	engine := newRouter(t, p, stubConverter(t, "RIFF-converted-bytes"))

	rec := postJSON(engine, "/v1/transcribe", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(webmPayload()),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(p.lastReq.Audio) != "RIFF-converted-bytes" {
		t.Fatalf("expected provider to receive converted bytes, got %q", p.lastReq.Audio)
	}
}

func TestTranscribeSyncConversionFailure(t *testing.T) {
	engine := newRouter(t, &fakeProvider{}, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(webmPayload()),
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for conversion failure, got %d", rec.Code)
	}
}

func TestTranscribeSyncUpstreamFailure(t *testing.T) {
	engine := newRouter(t, &fakeProvider{err: errors.New("api down")}, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(wavPayload()),
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestTranscribeSyncUnknownProvider(t *testing.T) {
	engine := newRouter(t, &fakeProvider{}, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe", map[string]string{
		"audio":    base64.StdEncoding.EncodeToString(wavPayload()),
		"provider": "nope",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown provider, got %d", rec.Code)
	}
}

func TestTranscribeStreamHappyPath(t *testing.T) {
	p := &fakeStreamer{}
	p.chunks = []transcription.Chunk{
		{Text: "Hel"},
		{Text: "lo"},
		{Text: "Hello!", Final: true},
	}
	engine := newRouter(t, p, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe/stream", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(wavPayload()),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %q", ct)
	}
	if ab := rec.Header().Get("X-Accel-Buffering"); ab != "no" {
		t.Fatalf("expected buffering disabled, got %q", ab)
	}

	var progress []string
	text, err := wire.Consume(rec.Body, func(total string) {
		progress = append(progress, total)
	})
	if err != nil {
		t.Fatalf("decode stream: %v", err)
	}
	if text != "Hello!" {
		t.Fatalf("expected final text 'Hello!', got %q", text)
	}
	if len(progress) != 2 || progress[1] != "Hello" {
		t.Fatalf("unexpected progress: %v", progress)
	}
}

func TestTranscribeStreamSyncProviderFallback(t *testing.T) {
	p := &fakeProvider{text: "one-shot result"}
	engine := newRouter(t, p, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe/stream", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(wavPayload()),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	text, err := wire.Consume(rec.Body, nil)
	if err != nil {
		t.Fatalf("decode stream: %v", err)
	}
	if text != "one-shot result" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestTranscribeStreamNoTerminalChunkEmitsDone(t *testing.T) {
	p := &fakeStreamer{}
	p.chunks = []transcription.Chunk{{Text: "a"}, {Text: "b"}}
	engine := newRouter(t, p, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe/stream", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(wavPayload()),
	})
	text, err := wire.Consume(rec.Body, nil)
	if err != nil {
		t.Fatalf("decode stream: %v", err)
	}
	if text != "ab" {
		t.Fatalf("expected accumulated 'ab', got %q", text)
	}
}

func TestTranscribeStreamErrorAfterCommit(t *testing.T) {
	// Conversion fails, but only after headers were flushed: the
	// failure must arrive as an error frame in a 200 event stream.
	engine := newRouter(t, &fakeProvider{}, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe/stream", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(webmPayload()),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected committed 200 stream, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", ct)
	}

	_, err := wire.Consume(rec.Body, nil)
	var streamErr *wire.StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("expected *wire.StreamError, got %T: %v", err, err)
	}
}

func TestTranscribeStreamUpstreamErrorFrame(t *testing.T) {
	p := &fakeStreamer{}
	p.chunks = []transcription.Chunk{
		{Text: "partial"},
		{Err: errors.New("upstream broke")},
	}
	engine := newRouter(t, p, brokenConverter(t))

	rec := postJSON(engine, "/v1/transcribe/stream", map[string]string{
		"audio": base64.StdEncoding.EncodeToString(wavPayload()),
	})
	_, err := wire.Consume(rec.Body, nil)
	var streamErr *wire.StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("expected *wire.StreamError, got %T: %v", err, err)
	}
}
