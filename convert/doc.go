// Package convert normalizes arbitrary audio uploads into 16kHz mono
// PCM WAV using an external ffmpeg binary. Input and output travel
// through uniquely named temp files that are always removed, even when
// the conversion fails or the context is canceled. A bulkhead caps how
// many ffmpeg processes run at once.
package convert
