// Package relay implements the transcription endpoints: a synchronous
// JSON endpoint and a streaming endpoint that frames incremental
// transcript events. Both share one normalization pipeline — sniff the
// upload's format, pass wav/mp3 through untouched, convert everything
// else to WAV — before handing audio to the configured transcription
// provider.
//
// The streaming endpoint tracks whether response headers have been
// committed: failures before commit produce a JSON error body, failures
// after commit produce a terminal error frame. The two channels must
// not be collapsed; a client reading an event stream cannot parse a
// JSON error body mid-stream.
package relay
