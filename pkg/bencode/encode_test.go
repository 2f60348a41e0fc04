package bencode_test

import (
	"testing"

	"github.com/raklaptudirm/mtor/pkg/bencode"
)

func TestMarshalSortsKeys(t *testing.T) {
	m := map[string]any{"zebra": "z", "apple": "a", "mango": "m"}

	out, err := bencode.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal(%#v): %v", m, err)
	}

	want := "d5:apple1:a5:mango1:m5:zebra1:ze"
	if out != want {
		t.Errorf("Marshal(%#v) = %q, want %q", m, out, want)
	}
}

func TestMarshalRawMessagePassesThrough(t *testing.T) {
	raw := bencode.RawMessage("d6:lengthi10ee")

	out, err := bencode.Marshal(raw)
	if err != nil {
		t.Fatalf("Marshal(%#v): %v", raw, err)
	}

	if out != string(raw) {
		t.Errorf("Marshal(RawMessage) = %q, want %q", out, raw)
	}
}

func TestRoundTrip(t *testing.T) {
	ins := []string{
		"i123e",
		"i-123e",
		"0:",
		"3:cat",
		"le",
		"li123e3:cate",
		"d3:cati123e3:dogi-123ee",
	}

	for _, in := range ins {
		t.Run(in, func(t *testing.T) {
			var v any
			if err := bencode.Unmarshal([]byte(in), &v); err != nil {
				t.Fatalf("Unmarshal(%#v): %v", in, err)
			}

			out, err := bencode.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal(%#v): %v", v, err)
			}

			if out != in {
				t.Errorf("round trip of %#v produced %#v", in, out)
			}
		})
	}
}
