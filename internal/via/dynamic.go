package via

import (
	"context"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// Dynamic entries are the four index-addressed configurable behaviors added
// by the Vial extension. Each kind lives in fixed-size slots on the device;
// all multi-byte fields are little-endian.

// DynamicEntryCounts reports how many slots of each kind the firmware
// provides, plus a feature-flag bitmask.
type DynamicEntryCounts struct {
	TapDance     int
	Combo        int
	KeyOverride  int
	AltRepeatKey int
	FeatureFlags byte
}

// GetDynamicEntryCounts queries the per-kind slot counts. The firmware may
// not implement the op at all (echo), and unlike the other dynamic entry
// commands the response has no status byte: bytes 0..3 are the four counts.
// The feature-flag bitmask is read from the last byte of the received
// packet; on old firmware with short responses this can overlap the
// alt-repeat-key count, which is kept as backward-compatible behavior.
func (c *Client) GetDynamicEntryCounts(ctx context.Context) (DynamicEntryCounts, error) {
	resp, err := c.exchangeNoEcho(ctx, packet.Build(cmdVialPrefix, vialDynamicEntryOp, dynamicGetEntryCounts))
	if err != nil {
		return DynamicEntryCounts{}, err
	}
	return DynamicEntryCounts{
		TapDance:     int(resp[0]),
		Combo:        int(resp[1]),
		KeyOverride:  int(resp[2]),
		AltRepeatKey: int(resp[3]),
		FeatureFlags: resp[len(resp)-1],
	}, nil
}

// TapDanceEntry holds one tap dance slot.
type TapDanceEntry struct {
	OnTap       uint16 `json:"on_tap"`
	OnHold      uint16 `json:"on_hold"`
	OnDoubleTap uint16 `json:"on_double_tap"`
	OnTapHold   uint16 `json:"on_tap_hold"`
	TappingTerm uint16 `json:"tapping_term"`
}

func (e TapDanceEntry) encode() []byte {
	b := make([]byte, 10)
	packet.PutLE16(b, 0, e.OnTap)
	packet.PutLE16(b, 2, e.OnHold)
	packet.PutLE16(b, 4, e.OnDoubleTap)
	packet.PutLE16(b, 6, e.OnTapHold)
	packet.PutLE16(b, 8, e.TappingTerm)
	return b
}

func decodeTapDance(b []byte) TapDanceEntry {
	return TapDanceEntry{
		OnTap:       packet.LE16(b, 0),
		OnHold:      packet.LE16(b, 2),
		OnDoubleTap: packet.LE16(b, 4),
		OnTapHold:   packet.LE16(b, 6),
		TappingTerm: packet.LE16(b, 8),
	}
}

// ComboEntry holds one combo slot: up to four trigger keys and the keycode
// they produce when pressed together.
type ComboEntry struct {
	Key1   uint16 `json:"key1"`
	Key2   uint16 `json:"key2"`
	Key3   uint16 `json:"key3"`
	Key4   uint16 `json:"key4"`
	Output uint16 `json:"output"`
}

func (e ComboEntry) encode() []byte {
	b := make([]byte, 10)
	packet.PutLE16(b, 0, e.Key1)
	packet.PutLE16(b, 2, e.Key2)
	packet.PutLE16(b, 4, e.Key3)
	packet.PutLE16(b, 6, e.Key4)
	packet.PutLE16(b, 8, e.Output)
	return b
}

func decodeCombo(b []byte) ComboEntry {
	return ComboEntry{
		Key1:   packet.LE16(b, 0),
		Key2:   packet.LE16(b, 2),
		Key3:   packet.LE16(b, 4),
		Key4:   packet.LE16(b, 6),
		Output: packet.LE16(b, 8),
	}
}

// keyOverrideEnabledBit is packed into the high bit of the options byte on
// the wire; Options carries only the remaining bits.
const keyOverrideEnabledBit = 0x80

// KeyOverrideEntry holds one key override slot.
type KeyOverrideEntry struct {
	Trigger        uint16 `json:"trigger"`
	Replacement    uint16 `json:"replacement"`
	Layers         uint16 `json:"layers"`
	TriggerMods    byte   `json:"trigger_mods"`
	NegativeMods   byte   `json:"negative_mod_mask"`
	SuppressedMods byte   `json:"suppressed_mods"`
	Options        byte   `json:"options"`
	Enabled        bool   `json:"enabled"`
}

func (e KeyOverrideEntry) encode() []byte {
	b := make([]byte, 10)
	packet.PutLE16(b, 0, e.Trigger)
	packet.PutLE16(b, 2, e.Replacement)
	packet.PutLE16(b, 4, e.Layers)
	b[6] = e.TriggerMods
	b[7] = e.NegativeMods
	b[8] = e.SuppressedMods
	b[9] = e.Options &^ keyOverrideEnabledBit
	if e.Enabled {
		b[9] |= keyOverrideEnabledBit
	}
	return b
}

func decodeKeyOverride(b []byte) KeyOverrideEntry {
	return KeyOverrideEntry{
		Trigger:        packet.LE16(b, 0),
		Replacement:    packet.LE16(b, 2),
		Layers:         packet.LE16(b, 4),
		TriggerMods:    b[6],
		NegativeMods:   b[7],
		SuppressedMods: b[8],
		Options:        b[9] &^ keyOverrideEnabledBit,
		Enabled:        b[9]&keyOverrideEnabledBit != 0,
	}
}

// altRepeatKeyEnabledBit is bit 3 of the options byte on the wire.
const altRepeatKeyEnabledBit = 0x08

// AltRepeatKeyEntry holds one alternate repeat key slot.
type AltRepeatKeyEntry struct {
	LastKey     uint16 `json:"last_key"`
	AltKey      uint16 `json:"alt_key"`
	AllowedMods byte   `json:"allowed_mods"`
	Options     byte   `json:"options"`
	Enabled     bool   `json:"enabled"`
}

func (e AltRepeatKeyEntry) encode() []byte {
	b := make([]byte, 6)
	packet.PutLE16(b, 0, e.LastKey)
	packet.PutLE16(b, 2, e.AltKey)
	b[4] = e.AllowedMods
	b[5] = e.Options &^ altRepeatKeyEnabledBit
	if e.Enabled {
		b[5] |= altRepeatKeyEnabledBit
	}
	return b
}

func decodeAltRepeatKey(b []byte) AltRepeatKeyEntry {
	return AltRepeatKeyEntry{
		LastKey:     packet.LE16(b, 0),
		AltKey:      packet.LE16(b, 2),
		AllowedMods: b[4],
		Options:     b[5] &^ altRepeatKeyEnabledBit,
		Enabled:     b[5]&altRepeatKeyEnabledBit != 0,
	}
}

// getDynamicEntry runs a dynamic entry get. The response begins with a
// status byte; anything non-zero means the slot does not exist.
func (c *Client) getDynamicEntry(ctx context.Context, subop byte, index int) ([]byte, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdVialPrefix, vialDynamicEntryOp, subop, byte(index)))
	if err != nil {
		return nil, err
	}
	if resp[0] != 0 {
		return nil, &EntryNotFoundError{Index: index, Status: resp[0]}
	}
	return resp[1:], nil
}

func (c *Client) setDynamicEntry(ctx context.Context, subop byte, index int, entry []byte) error {
	req := packet.Build(append([]byte{cmdVialPrefix, vialDynamicEntryOp, subop, byte(index)}, entry...)...)
	_, err := c.exchange(ctx, req)
	return err
}

// GetTapDance reads one tap dance slot.
func (c *Client) GetTapDance(ctx context.Context, index int) (TapDanceEntry, error) {
	b, err := c.getDynamicEntry(ctx, dynamicTapDanceGet, index)
	if err != nil {
		return TapDanceEntry{}, err
	}
	return decodeTapDance(b), nil
}

// SetTapDance writes one tap dance slot.
func (c *Client) SetTapDance(ctx context.Context, index int, e TapDanceEntry) error {
	return c.setDynamicEntry(ctx, dynamicTapDanceSet, index, e.encode())
}

// GetCombo reads one combo slot.
func (c *Client) GetCombo(ctx context.Context, index int) (ComboEntry, error) {
	b, err := c.getDynamicEntry(ctx, dynamicComboGet, index)
	if err != nil {
		return ComboEntry{}, err
	}
	return decodeCombo(b), nil
}

// SetCombo writes one combo slot.
func (c *Client) SetCombo(ctx context.Context, index int, e ComboEntry) error {
	return c.setDynamicEntry(ctx, dynamicComboSet, index, e.encode())
}

// GetKeyOverride reads one key override slot.
func (c *Client) GetKeyOverride(ctx context.Context, index int) (KeyOverrideEntry, error) {
	b, err := c.getDynamicEntry(ctx, dynamicKeyOverrideGet, index)
	if err != nil {
		return KeyOverrideEntry{}, err
	}
	return decodeKeyOverride(b), nil
}

// SetKeyOverride writes one key override slot.
func (c *Client) SetKeyOverride(ctx context.Context, index int, e KeyOverrideEntry) error {
	return c.setDynamicEntry(ctx, dynamicKeyOverrideSet, index, e.encode())
}

// GetAltRepeatKey reads one alternate repeat key slot.
func (c *Client) GetAltRepeatKey(ctx context.Context, index int) (AltRepeatKeyEntry, error) {
	b, err := c.getDynamicEntry(ctx, dynamicAltRepeatKeyGet, index)
	if err != nil {
		return AltRepeatKeyEntry{}, err
	}
	return decodeAltRepeatKey(b), nil
}

// SetAltRepeatKey writes one alternate repeat key slot.
func (c *Client) SetAltRepeatKey(ctx context.Context, index int, e AltRepeatKeyEntry) error {
	return c.setDynamicEntry(ctx, dynamicAltRepeatKeySet, index, e.encode())
}
