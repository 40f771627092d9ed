package transcription

// Request holds parameters for a transcription call. Audio must already
// be in a format the provider accepts; the relay normalizes uploads
// before building a Request.
type Request struct {
	// Audio is the raw audio payload.
	Audio []byte `json:"-"`
	// Filename is a hint for the payload's container (e.g. "audio.wav").
	Filename string `json:"filename,omitempty"`
	// Language is the expected language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`
}

// Response holds the result of a synchronous transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Language is the detected or specified language, if reported.
	Language string `json:"language,omitempty"`
}

// Chunk is one element of a streaming transcription. Text carries an
// incremental fragment; Final marks the authoritative full transcript
// (Text then holds the whole thing, not a fragment); Err marks a
// terminal failure. A stream ends after a Final or Err chunk.
type Chunk struct {
	Text  string
	Final bool
	Err   error
}
