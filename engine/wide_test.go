package engine

import (
	"bytes"
	"testing"
)

func TestEncodeWideASCII(t *testing.T) {
	got := EncodeWide("Hi")
	want := []byte{'H', 0, 'i', 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeWide(\"Hi\") = % x, want % x", got, want)
	}
}

func TestEncodeWideEmpty(t *testing.T) {
	got := EncodeWide("")
	if !bytes.Equal(got, []byte{0, 0}) {
		t.Fatalf("EncodeWide(\"\") = % x, want 00 00", got)
	}
}

func TestWideRoundTrip(t *testing.T) {
	cases := []string{"", "plain", "naïve", "日本語", "mixed 漢字 text"}
	for _, s := range cases {
		if got := DecodeWide(EncodeWide(s)); got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}

func TestDecodeWideWithoutTerminator(t *testing.T) {
	if got := DecodeWide([]byte{'A', 0, 'B', 0}); got != "AB" {
		t.Fatalf("DecodeWide = %q, want AB", got)
	}
}
