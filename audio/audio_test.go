package audio

import "testing"

func pad(prefix []byte) []byte {
	buf := make([]byte, 32)
	copy(buf, prefix)
	return buf
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"wav riff header", pad([]byte("RIFF$\x00\x00\x00WAVEfmt ")), FormatWAV},
		{"webm ebml header", pad([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x01}), FormatWebM},
		{"mp3 id3 tag", pad([]byte("ID3\x04\x00")), FormatMP3},
		{"mp3 frame sync fb", pad([]byte{0xFF, 0xFB, 0x90, 0x00}), FormatMP3},
		{"mp3 frame sync fa", pad([]byte{0xFF, 0xFA, 0x90, 0x00}), FormatMP3},
		{"mp3 frame sync f3", pad([]byte{0xFF, 0xF3, 0x90, 0x00}), FormatMP3},
		{"mp4 ftyp box", pad([]byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}), FormatMP4},
		{"ogg page header", pad([]byte("OggS\x00\x02")), FormatOGG},
		{"unmatched bytes", pad([]byte("hello world, not audio")), FormatUnknown},
		{"frame sync with wrong second byte", pad([]byte{0xFF, 0xE0, 0x00, 0x00}), FormatUnknown},
		{"empty", nil, FormatUnknown},
		{"too short riff", []byte("RIFF$\x00\x00"), FormatUnknown},
		{"exactly eleven bytes", []byte("RIFF$\x00\x00\x00WAV"), FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNeedsConversion(t *testing.T) {
	passthrough := []Format{FormatWAV, FormatMP3}
	for _, f := range passthrough {
		if NeedsConversion(f) {
			t.Errorf("NeedsConversion(%q) = true, want false", f)
		}
	}
	converted := []Format{FormatWebM, FormatMP4, FormatOGG, FormatUnknown}
	for _, f := range converted {
		if !NeedsConversion(f) {
			t.Errorf("NeedsConversion(%q) = false, want true", f)
		}
	}
}
