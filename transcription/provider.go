package transcription

import (
	"context"

	"github.com/voxlab/scribe/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// Streamer is implemented by backends that can deliver incremental
// results. The returned channel is closed after the terminal chunk.
// Chunks arrive in upstream order; delivery order is the contract.
type Streamer interface {
	Provider

	// TranscribeStream starts a streaming transcription. The error
	// return covers failures before any audio is sent; failures after
	// that arrive as a Chunk with Err set.
	TranscribeStream(ctx context.Context, req Request) (<-chan Chunk, error)
}
