package outputparser

import (
	"bytes"
	"strings"
	"testing"
)

func TestParserNoSentinelLines(t *testing.T) {
	p := New("__MF__")
	got, err := p.Parse(strings.NewReader("lorem-ipsum"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestParserHexAndRawValues(t *testing.T) {
	p := New("__MF__")
	input := "hello_world:XX\n__MF nope: not good\n__MF__hello:5FFF\n__MF__greeting:hi there\n"

	got, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !bytes.Equal(got["hello"], []byte{0x5F, 0xFF}) {
		t.Errorf("hello = %x, want 5fff", got["hello"])
	}
	if string(got["greeting"]) != "hi there" {
		t.Errorf("greeting = %q, want %q", got["greeting"], "hi there")
	}
	if len(got) != 2 {
		t.Errorf("expected exactly 2 keys, got %v", got)
	}
}

func TestParserLastKeyWins(t *testing.T) {
	p := New("__MF__")
	input := "__MF__status_code:200\n__MF__status_code:404\n"

	got, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(got["status_code"]) != "404" {
		t.Errorf("status_code = %q, want %q (last write wins)", got["status_code"], "404")
	}
}

func TestParserRoundTripsHexBytes(t *testing.T) {
	p := New("__MF__")
	got, err := p.Parse(strings.NewReader("__MF__body:68656c6c6f\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(got["body"]) != "hello" {
		t.Errorf("body = %q, want %q", got["body"], "hello")
	}
}
