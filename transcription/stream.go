package transcription

import "context"

// Stream starts a streaming transcription against any provider. Native
// streamers are used directly; sync-only providers are adapted by
// running Transcribe and emitting the result as a single final chunk,
// so callers get one code path regardless of backend capability.
func Stream(ctx context.Context, p Provider, req Request) (<-chan Chunk, error) {
	if s, ok := p.(Streamer); ok {
		return s.TranscribeStream(ctx, req)
	}

	ch := make(chan Chunk, 1)
	go func() {
		defer close(ch)
		resp, err := p.Transcribe(ctx, req)
		if err != nil {
			ch <- Chunk{Err: err}
			return
		}
		ch <- Chunk{Text: resp.Text, Final: true}
	}()
	return ch, nil
}
