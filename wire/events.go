package wire

// Event types carried in the "type" field of a frame payload.
const (
	EventDelta = "delta"
	EventDone  = "done"
	EventError = "error"
)

// dataPrefix marks a frame-carrying line. Lines without it are ignored
// by the decoder.
const dataPrefix = "data: "

// Event is the JSON payload of one wire frame.
type Event struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Delta builds an incremental-fragment event.
func Delta(text string) Event {
	return Event{Type: EventDelta, Text: text}
}

// Done builds the terminal success event carrying the full transcript.
func Done(text string) Event {
	return Event{Type: EventDone, Text: text}
}

// Error builds the terminal failure event.
func Error(msg string) Event {
	return Event{Type: EventError, Error: msg}
}
