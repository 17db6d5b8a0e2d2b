package macro

import (
	"bytes"
	"reflect"
	"testing"
)

func TestV1RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
	}{
		{"text only", []Action{Text("hello")}},
		{"single tap", []Action{Tap(0x04)}},
		{"mixed", []Action{Text("ab"), Down(0x10), Up(0x10), Text("c")}},
		{"tap between text", []Action{Text("x"), Tap(0x1E), Text("y")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(Encode(tt.actions, false), false)
			if !reflect.DeepEqual(got, tt.actions) {
				t.Errorf("round trip mismatch:\ngot:  %+v\nwant: %+v", got, tt.actions)
			}
		})
	}
}

func TestV1DropsDelaysAndTruncatesKeycodes(t *testing.T) {
	b := Encode([]Action{Delay(100)}, false)
	if len(b) != 0 {
		t.Errorf("v1 delay should serialize to nothing, got % x", b)
	}

	b = Encode([]Action{Tap(0x1234)}, false)
	if !bytes.Equal(b, []byte{tagTap, 0x34}) {
		t.Errorf("v1 keycode truncation: % x", b)
	}
}

func TestV2RoundTripMerged(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
		want    []Action
	}{
		{
			"merge same kind",
			[]Action{Tap(0x04), Tap(0x05)},
			[]Action{Tap(0x04, 0x05)},
		},
		{
			"no merge across delay",
			[]Action{Tap(0x04), Delay(10), Tap(0x05)},
			[]Action{Tap(0x04), Delay(10), Tap(0x05)},
		},
		{
			"no merge across text",
			[]Action{Down(0x04), Text("a"), Down(0x05)},
			[]Action{Down(0x04), Text("a"), Down(0x05)},
		},
		{
			"two byte keycodes",
			[]Action{Tap(0x1234, 0x04), Up(0x7C00)},
			[]Action{Tap(0x1234, 0x04), Up(0x7C00)},
		},
		{
			"kinds stay separate",
			[]Action{Down(0x04), Up(0x04), Tap(0x04)},
			[]Action{Down(0x04), Up(0x04), Tap(0x04)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(Encode(tt.actions, true), true)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("round trip mismatch:\ngot:  %+v\nwant: %+v", got, tt.want)
			}
		})
	}
}

func TestV2RoundTripBytesStable(t *testing.T) {
	// serialize -> deserialize -> serialize must be stable at the byte
	// level even when the action list collapses under merging.
	in := []Action{Tap(0x04), Tap(0x05), Text("hi"), Down(0x10), Down(0x11)}
	first := Encode(in, true)
	second := Encode(Decode(first, true), true)
	if !bytes.Equal(first, second) {
		t.Errorf("byte-level instability:\nfirst:  % x\nsecond: % x", first, second)
	}
}

func TestKeycodePackingBoundary(t *testing.T) {
	// A keycode with a zero low byte is packed as (kc>>8)|0xFF00 and
	// serialized little-endian.
	b := Encode([]Action{Tap(0x0500)}, true)
	want := []byte{qmkPrefix, tagExtTap, 0x05, 0xFF}
	if !bytes.Equal(b, want) {
		t.Errorf("packed encoding: got % x, want % x", b, want)
	}
	got := Decode(b, true)
	if !reflect.DeepEqual(got, []Action{Tap(0x0500)}) {
		t.Errorf("unpack failed: %+v", got)
	}

	// A literal 0xFF00 on the wire is NOT unpacked: the boundary is
	// strictly greater than 0xFF00.
	raw := []byte{qmkPrefix, tagExtTap, 0x00, 0xFF}
	got = Decode(raw, true)
	if !reflect.DeepEqual(got, []Action{Tap(0xFF00)}) {
		t.Errorf("0xFF00 must stay literal, got %+v", got)
	}
}

func TestDelayRoundTrip(t *testing.T) {
	for _, ms := range []int{0, 100, 254, 255, 500, 65024} {
		got := Decode(Encode([]Action{Delay(ms)}, true), true)
		if !reflect.DeepEqual(got, []Action{Delay(ms)}) {
			t.Errorf("delay %d: got %+v", ms, got)
		}
	}
}

func TestDecodeSkipsUnknownTags(t *testing.T) {
	// The unknown tag is dropped and the text run keeps accumulating across
	// it, so the surrounding bytes come out as one Text action.
	raw := []byte{'a', qmkPrefix, 0x7F, 'b'}
	got := Decode(raw, true)
	want := []Action{Text("ab")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unknown tag handling: got %+v, want %+v", got, want)
	}
}

func TestDecodeDropsTruncatedTrailers(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		v2   bool
		want []Action
	}{
		{"v1 bare tag", []byte{'a', tagTap}, false, []Action{Text("a")}},
		{"v2 bare prefix", []byte{'a', qmkPrefix}, true, []Action{Text("a")}},
		{"v2 tag no keycode", []byte{qmkPrefix, tagTap}, true, nil},
		{"v2 ext one byte", []byte{'x', qmkPrefix, tagExtTap, 0x34}, true, []Action{Text("x")}},
		{"v2 delay one byte", []byte{qmkPrefix, tagDelay, 0x05}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.raw, tt.v2)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestActionJSONRoundTrip(t *testing.T) {
	in := []Action{Text("hi"), Tap(0x04, 0x1234), Delay(500), Down(0x10), Up(0x10)}
	for _, a := range in {
		data, err := a.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out Action
		if err := out.UnmarshalJSON(data); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if !reflect.DeepEqual(a, out) {
			t.Errorf("json round trip: %s -> %+v", data, out)
		}
	}
}
