package transcription_test

import (
	"context"
	"errors"
	"testing"

	"github.com/voxlab/scribe/transcription"
)

type syncOnly struct {
	resp *transcription.Response
	err  error
}

func (s *syncOnly) Name() string                     { return "sync-only" }
func (s *syncOnly) IsAvailable(context.Context) bool { return true }
func (s *syncOnly) Transcribe(context.Context, transcription.Request) (*transcription.Response, error) {
	return s.resp, s.err
}

type nativeStreamer struct {
	syncOnly
	chunks []transcription.Chunk
}

func (n *nativeStreamer) TranscribeStream(context.Context, transcription.Request) (<-chan transcription.Chunk, error) {
	ch := make(chan transcription.Chunk, len(n.chunks))
	for _, c := range n.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func collect(t *testing.T, ch <-chan transcription.Chunk) []transcription.Chunk {
	t.Helper()
	var out []transcription.Chunk
	for c := range ch {
		out = append(out, c)
	}
	return out
}

func TestStreamAdaptsSyncProvider(t *testing.T) {
	p := &syncOnly{resp: &transcription.Response{Text: "hello"}}

	ch, err := transcription.Stream(context.Background(), p, transcription.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := collect(t, ch)
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if !chunks[0].Final || chunks[0].Text != "hello" {
		t.Fatalf("expected final chunk with full text, got %+v", chunks[0])
	}
}

func TestStreamAdaptsSyncError(t *testing.T) {
	want := errors.New("provider down")
	p := &syncOnly{err: want}

	ch, err := transcription.Stream(context.Background(), p, transcription.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := collect(t, ch)
	if len(chunks) != 1 || !errors.Is(chunks[0].Err, want) {
		t.Fatalf("expected single error chunk, got %+v", chunks)
	}
}

func TestStreamUsesNativeStreamer(t *testing.T) {
	p := &nativeStreamer{chunks: []transcription.Chunk{
		{Text: "a"},
		{Text: "b"},
		{Text: "ab!", Final: true},
	}}

	ch, err := transcription.Stream(context.Background(), p, transcription.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := collect(t, ch)
	if len(chunks) != 3 {
		t.Fatalf("expected native chunks to pass through, got %+v", chunks)
	}
	if !chunks[2].Final || chunks[2].Text != "ab!" {
		t.Fatalf("unexpected terminal chunk: %+v", chunks[2])
	}
}
