package audio

import "bytes"

// Format identifies an audio container format detected from file content.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatWebM    Format = "webm"
	FormatMP4     Format = "mp4"
	FormatOGG     Format = "ogg"
	FormatUnknown Format = "unknown"
)

// minDetectLen is the smallest buffer that can carry any signature we
// recognize: the MP4 "ftyp" marker sits at offset 4 and is 4 bytes wide,
// plus headroom for the box size preceding it.
const minDetectLen = 12

var (
	sigRIFF = []byte("RIFF")
	sigEBML = []byte{0x1A, 0x45, 0xDF, 0xA3}
	sigID3  = []byte("ID3")
	sigFTYP = []byte("ftyp")
	sigOggS = []byte("OggS")
)

// Detect inspects the leading bytes of data and returns the container
// format. Buffers shorter than 12 bytes and unrecognized signatures both
// yield FormatUnknown. Checks run in fixed priority order so a buffer
// matching multiple signatures classifies deterministically.
func Detect(data []byte) Format {
	if len(data) < minDetectLen {
		return FormatUnknown
	}
	switch {
	case bytes.HasPrefix(data, sigRIFF):
		return FormatWAV
	case bytes.HasPrefix(data, sigEBML):
		return FormatWebM
	case isMP3(data):
		return FormatMP3
	case bytes.Equal(data[4:8], sigFTYP):
		return FormatMP4
	case bytes.HasPrefix(data, sigOggS):
		return FormatOGG
	default:
		return FormatUnknown
	}
}

// isMP3 matches either an ID3v2 tag or a bare MPEG frame sync with the
// layer-III header variants produced by common encoders.
func isMP3(data []byte) bool {
	if bytes.HasPrefix(data, sigID3) {
		return true
	}
	if data[0] != 0xFF {
		return false
	}
	switch data[1] {
	case 0xFB, 0xFA, 0xF3:
		return true
	}
	return false
}

// NeedsConversion reports whether a format must be transcoded before it
// can be sent upstream. WAV and MP3 pass through untouched; everything
// else, including unknown data, goes through the converter.
func NeedsConversion(f Format) bool {
	return f != FormatWAV && f != FormatMP3
}
