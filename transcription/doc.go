// Package transcription defines the provider interface and common types
// for speech-to-text backends.
//
// Providers receive normalized audio bytes and return text, either in
// one shot (Provider) or as an ordered stream of incremental chunks
// (Streamer). Backends that cannot stream are adapted transparently by
// Stream, which emits the full result as a single final chunk.
//
// # Backends
//
//   - transcription/openai: OpenAI speech-to-text API (sync + streaming)
//   - transcription/whisper: faster-whisper HTTP sidecar (sync only)
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.Set(openai.ProviderName, openaiProvider)
//	p, _ := reg.Get(openai.ProviderName)
//	resp, err := p.Transcribe(ctx, req)
package transcription
