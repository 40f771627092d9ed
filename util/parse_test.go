package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		def  int64
		want int64
	}{
		{"50MB", 0, 50 * 1024 * 1024},
		{"512KB", 0, 512 * 1024},
		{"1GB", 0, 1024 * 1024 * 1024},
		{"1024", 0, 1024},
		{" 10mb ", 0, 10 * 1024 * 1024},
		{"", 42, 42},
		{"garbage", 7, 7},
	}
	for _, tt := range tests {
		if got := ParseSize(tt.in, tt.def); got != tt.want {
			t.Errorf("ParseSize(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("sk-1234567890", 5); got != "sk-12***" {
		t.Errorf("MaskSecret long = %q", got)
	}
	if got := MaskSecret("abc", 5); got != "***" {
		t.Errorf("MaskSecret short = %q", got)
	}
}
