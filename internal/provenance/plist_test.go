package provenance

import (
	"errors"
	"math/rand"
	"testing"

	"howett.net/plist"

	"nimbus/internal/services"
)

func TestDecodeWhereFromsRoundTrip(t *testing.T) {
	url := "https://learn.uwaterloo.ca/d2l/le/content/123/CS246_assignment.pdf"
	data, err := encodeWhereFroms(url, "https://learn.uwaterloo.ca/d2l/home/123")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	value, err := DecodeWhereFroms(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := FirstURL(value)
	if !ok || got != url {
		t.Fatalf("FirstURL = %q, %v; want %q", got, ok, url)
	}
}

func TestDecodeWhereFromsSkipsNonStringHead(t *testing.T) {
	url := "https://learn.uwaterloo.ca/CS246_a1.pdf"
	data, err := plist.Marshal([]any{uint64(1), url}, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	value, err := DecodeWhereFroms(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := FirstURL(value)
	if !ok || got != url {
		t.Fatalf("FirstURL = %q, %v; want %q", got, ok, url)
	}
}

func TestDecodeWhereFromsRejectsInvalidInput(t *testing.T) {
	xmlPlist, err := plist.Marshal([]string{"https://example.com"}, plist.XMLFormat)
	if err != nil {
		t.Fatalf("marshal xml plist: %v", err)
	}
	valid, err := encodeWhereFroms("https://example.com/a.pdf")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	inputs := map[string][]byte{
		"nil":          nil,
		"empty":        {},
		"text":         []byte("https://example.com"),
		"magic only":   []byte("bplist00"),
		"xml plist":    xmlPlist,
		"truncated":    valid[:len(valid)-6],
		"bad trailer":  append(append([]byte{}, valid[:len(valid)-32]...), make([]byte, 32)...),
		"garbage body": append([]byte("bplist00"), 0xff, 0xff, 0xff, 0xff, 0x00, 0x01),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			value, err := DecodeWhereFroms(data)
			if !errors.Is(err, services.ErrDecodeFailed) {
				t.Fatalf("expected ErrDecodeFailed, got value=%v err=%v", value, err)
			}
		})
	}
}

func TestDecodeWhereFromsNeverPanicsOnRandomBytes(t *testing.T) {
	valid, err := encodeWhereFroms("https://learn.uwaterloo.ca/x", "https://example.com/y")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	rng := rand.New(rand.NewSource(246))
	for i := 0; i < 2000; i++ {
		data := append([]byte(nil), valid...)
		for flips := rng.Intn(6) + 1; flips > 0; flips-- {
			pos := len(bplistMagic) + rng.Intn(len(data)-len(bplistMagic))
			data[pos] = byte(rng.Intn(256))
		}
		// Either outcome is acceptable; reaching here without a panic is the property.
		_, _ = DecodeWhereFroms(data)
	}
}

func FuzzDecodeWhereFroms(f *testing.F) {
	seed, err := encodeWhereFroms("https://example.com/a.pdf")
	if err != nil {
		f.Fatalf("encode: %v", err)
	}
	f.Add(seed)
	f.Add([]byte("bplist00"))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DecodeWhereFroms(data)
	})
}

func TestFirstURL(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
		ok    bool
	}{
		{name: "first string", value: []any{"https://a", "https://b"}, want: "https://a", ok: true},
		{name: "empty array", value: []any{}},
		{name: "non string head", value: []any{uint64(1), "https://b"}, want: "https://b", ok: true},
		{name: "blank string kept", value: []any{"  ", "https://b"}, want: "  ", ok: true},
		{name: "no strings", value: []any{uint64(1), true, []any{"https://nested"}}},
		{name: "not an array", value: "https://a"},
		{name: "dictionary", value: map[string]any{"url": "https://a"}},
		{name: "nil", value: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstURL(tt.value)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("FirstURL = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
