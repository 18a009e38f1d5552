package types

import "testing"

func TestStringSetRoundTrip(t *testing.T) {
	in := StringSet{"b", "a", "c"}
	encoded := EncodeStringSet(in)
	out := DecodeStringSet(encoded)
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got %v, want %v", out, in)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("order not preserved at %d: got %s, want %s", i, out[i], in[i])
		}
	}
}

func TestStringSetEmpty(t *testing.T) {
	if EncodeStringSet(nil) != "" {
		t.Fatal("nil set should encode to empty string")
	}
	if DecodeStringSet("") != nil {
		t.Fatal("empty string should decode to nil")
	}
}

func TestStringMapRoundTrip(t *testing.T) {
	in := StringMap{"lang": "go", "area": "storage"}
	out := DecodeStringMap(EncodeStringMap(in))
	if len(out) != len(in) || out["lang"] != "go" || out["area"] != "storage" {
		t.Fatalf("round trip mismatch: got %v, want %v", out, in)
	}
}

func TestDecodeStringSetMalformed(t *testing.T) {
	if got := DecodeStringSet("{not json"); got != nil {
		t.Fatalf("malformed JSON should decode to nil, got %v", got)
	}
}
