package via

import (
	"context"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// KeyboardID is the Vial identity response: the negotiated Vial protocol
// version and the device-unique uid, surfaced as a hex string because it is
// an opaque identifier.
type KeyboardID struct {
	VialProtocol int
	UID          string
}

// GetKeyboardID queries the Vial identity.
// Request [0xFE, 0x00]; response little-endian 32-bit protocol version at
// offset 0, little-endian 64-bit uid at offset 4. VIA-only firmware echoes
// this command, which surfaces as *EchoError.
func (c *Client) GetKeyboardID(ctx context.Context) (KeyboardID, error) {
	resp, err := c.exchangeNoEcho(ctx, packet.Build(cmdVialPrefix, vialGetKeyboardID))
	if err != nil {
		return KeyboardID{}, err
	}
	return KeyboardID{
		VialProtocol: int(packet.LE32(resp, 0)),
		UID:          packet.LE64Hex(resp, 4),
	}, nil
}

// GetDefinitionSize returns the byte length of the compressed device
// definition blob. Response little-endian 32-bit at offset 0.
func (c *Client) GetDefinitionSize(ctx context.Context) (int, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdVialPrefix, vialGetSize))
	if err != nil {
		return 0, err
	}
	return int(packet.LE32(resp, 0)), nil
}

// GetDefinitionRaw fetches the compressed definition blob. Unlike the
// keymap/macro buffers, the definition command addresses whole 32-byte
// blocks by little-endian index, with no header bytes in the response; the
// final block is truncated to the remaining byte count.
func (c *Client) GetDefinitionRaw(ctx context.Context, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	for block := 0; len(out) < size; block++ {
		req := packet.Build(cmdVialPrefix, vialGetDefinition)
		packet.PutLE32(req, 2, uint32(block))
		resp, err := c.exchange(ctx, req)
		if err != nil {
			return nil, err
		}
		n := size - len(out)
		if n > packet.Size {
			n = packet.Size
		}
		out = append(out, resp[:n]...)
	}
	return out, nil
}

// GetEncoder reads the clockwise/counterclockwise keycode pair for one
// encoder. Response big-endian 16-bit values at offsets 0 and 2.
func (c *Client) GetEncoder(ctx context.Context, layer, index int) (cw, ccw uint16, err error) {
	resp, err := c.exchange(ctx, packet.Build(cmdVialPrefix, vialGetEncoder, byte(layer), byte(index)))
	if err != nil {
		return 0, 0, err
	}
	return packet.BE16(resp, 0), packet.BE16(resp, 2), nil
}

// SetEncoder writes one direction of one encoder. direction is 0 for
// counterclockwise, 1 for clockwise.
func (c *Client) SetEncoder(ctx context.Context, layer, index, direction int, keycode uint16) error {
	req := packet.Build(cmdVialPrefix, vialSetEncoder, byte(layer), byte(index), byte(direction))
	packet.PutBE16(req, 5, keycode)
	_, err := c.exchange(ctx, req)
	return err
}

// UnlockStatus reports the device lock state and, while an unlock is in
// progress, the key combination the user must hold.
type UnlockStatus struct {
	Unlocked   bool
	InProgress bool
	Keys       [][2]byte // (row, col) pairs
}

// GetUnlockStatus queries the lock state. Byte 0 is the unlocked flag,
// byte 1 the in-progress flag; bytes 2..31 hold up to 15 (row, col) pairs
// with (0xFF, 0xFF) marking unused slots.
func (c *Client) GetUnlockStatus(ctx context.Context) (UnlockStatus, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdVialPrefix, vialGetUnlockStatus))
	if err != nil {
		return UnlockStatus{}, err
	}
	st := UnlockStatus{
		Unlocked:   resp[0] != 0,
		InProgress: resp[1] != 0,
	}
	for off := 2; off+1 < packet.Size; off += 2 {
		if resp[off] == 0xFF && resp[off+1] == 0xFF {
			continue
		}
		st.Keys = append(st.Keys, [2]byte{resp[off], resp[off+1]})
	}
	return st, nil
}

// UnlockStart begins the hold-to-unlock sequence.
func (c *Client) UnlockStart(ctx context.Context) error {
	_, err := c.exchange(ctx, packet.Build(cmdVialPrefix, vialUnlockStart))
	return err
}

// UnlockPoll advances the unlock sequence; the caller polls until the
// returned status reports Unlocked or no longer InProgress.
func (c *Client) UnlockPoll(ctx context.Context) (UnlockStatus, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdVialPrefix, vialUnlockPoll))
	if err != nil {
		return UnlockStatus{}, err
	}
	return UnlockStatus{
		Unlocked:   resp[0] != 0,
		InProgress: resp[1] != 0,
	}, nil
}

// Lock re-locks the device.
func (c *Client) Lock(ctx context.Context) error {
	_, err := c.exchange(ctx, packet.Build(cmdVialPrefix, vialLock))
	return err
}
