package via

import (
	"context"
	"errors"
	"testing"

	"github.com/seagrayinc/vialctl/internal/packet"
)

func TestKeyOverrideEnabledBitPacking(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		for _, options := range []byte{0x00, 0x7F} {
			in := KeyOverrideEntry{
				Trigger:        0x0410,
				Replacement:    0x0205,
				Layers:         0xFFFF,
				TriggerMods:    0x11,
				NegativeMods:   0x22,
				SuppressedMods: 0x33,
				Options:        options,
				Enabled:        enabled,
			}
			out := decodeKeyOverride(in.encode())
			if out != in {
				t.Errorf("enabled=%v options=0x%02X: got %+v", enabled, options, out)
			}
		}
	}
}

func TestAltRepeatKeyEnabledBitPacking(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		for _, options := range []byte{0x00, 0xF7} {
			in := AltRepeatKeyEntry{
				LastKey:     0x0004,
				AltKey:      0x0016,
				AllowedMods: 0x0F,
				Options:     options,
				Enabled:     enabled,
			}
			out := decodeAltRepeatKey(in.encode())
			if out != in {
				t.Errorf("enabled=%v options=0x%02X: got %+v", enabled, options, out)
			}
		}
	}
}

func TestTapDanceAndComboWireLayout(t *testing.T) {
	td := TapDanceEntry{OnTap: 0x0102, OnHold: 0x0304, OnDoubleTap: 0x0506, OnTapHold: 0x0708, TappingTerm: 200}
	b := td.encode()
	// Fields are little-endian.
	if b[0] != 0x02 || b[1] != 0x01 {
		t.Errorf("tap dance field order: % x", b)
	}
	if got := decodeTapDance(b); got != td {
		t.Errorf("tap dance round trip: %+v", got)
	}

	combo := ComboEntry{Key1: 0x04, Key2: 0x05, Key3: 0, Key4: 0, Output: 0x1C}
	if got := decodeCombo(combo.encode()); got != combo {
		t.Errorf("combo round trip: %+v", got)
	}
}

func TestGetDynamicEntryStatusByte(t *testing.T) {
	tr := &stubTransport{handler: func(req []byte) []byte {
		resp := make([]byte, packet.Size)
		if req[3] >= 4 {
			resp[0] = 0x01 // slot does not exist
			return resp
		}
		entry := TapDanceEntry{OnTap: 0x04, TappingTerm: 175}.encode()
		copy(resp[1:], entry)
		return resp
	}}
	c := NewClient(tr)

	got, err := c.GetTapDance(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.OnTap != 0x04 || got.TappingTerm != 175 {
		t.Errorf("entry: %+v", got)
	}

	_, err = c.GetTapDance(context.Background(), 7)
	var notFound *EntryNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected EntryNotFoundError, got %v", err)
	}
	if notFound.Index != 7 {
		t.Errorf("error index: %d", notFound.Index)
	}
}

// Old firmware can answer the counts query with a short response, in which
// case the feature-flag byte read from the end of the packet overlaps the
// alt-repeat-key count. This is long-standing behavior that saved layouts
// depend on; the test pins it rather than correcting it.
func TestDynamicEntryCountFlagsOverlap(t *testing.T) {
	tr := &stubTransport{handler: func(req []byte) []byte {
		return []byte{4, 2, 0, 0}
	}}
	c := NewClient(tr, WithEchoRetries(1), WithEchoRetryDelay(0))

	counts, err := c.GetDynamicEntryCounts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.AltRepeatKey != 0 {
		t.Errorf("alt repeat key count: %d", counts.AltRepeatKey)
	}
	if counts.FeatureFlags != 0 {
		t.Errorf("feature flags should alias the last received byte, got 0x%02X", counts.FeatureFlags)
	}
}
