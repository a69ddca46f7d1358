package sysinfo

import (
	"context"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{16 << 30, "16.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollectFillsEveryField(t *testing.T) {
	info := Collect(context.Background())
	if info.Platform == "" || info.CPU == "" || info.RAM == "" {
		t.Fatalf("incomplete sysinfo: %+v", info)
	}
}
