// Package wire implements the streaming transcript protocol shared by
// the relay server and its clients. Each event is one JSON payload
// carried in an SSE-style "data: <json>\n\n" frame. Three event types
// exist: delta (an incremental text fragment), done (the authoritative
// final text, replacing accumulated deltas), and error (terminal
// failure). The Writer emits frames server-side; the Decoder consumes
// them client-side, tolerating chunk boundaries that fall anywhere,
// including mid-character.
package wire
