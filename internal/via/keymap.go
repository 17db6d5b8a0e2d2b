package via

import (
	"context"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// GetProtocolVersion returns the VIA protocol version.
// Request [0x01]; response big-endian 16-bit at offset 1.
func (c *Client) GetProtocolVersion(ctx context.Context) (int, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdGetProtocolVersion))
	if err != nil {
		return 0, err
	}
	return int(packet.BE16(resp, 1)), nil
}

// GetLayerCount returns the number of dynamic keymap layers.
func (c *Client) GetLayerCount(ctx context.Context) (int, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdGetLayerCount))
	if err != nil {
		return 0, err
	}
	return int(resp[1]), nil
}

// GetKeymapBuffer fetches size bytes of the raw keymap buffer starting at
// offset. The buffer is big-endian 16-bit keycodes in
// layer-major/row-major/column order; the caller reassembles.
func (c *Client) GetKeymapBuffer(ctx context.Context, offset, size int) ([]byte, error) {
	return c.getBuffer(ctx, cmdKeymapGetBuffer, offset, size)
}

// GetKeycode reads one keymap entry.
// Request [0x04, layer, row, col]; response big-endian keycode at offset 4.
func (c *Client) GetKeycode(ctx context.Context, layer, row, col int) (uint16, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdGetKeycode, byte(layer), byte(row), byte(col)))
	if err != nil {
		return 0, err
	}
	return packet.BE16(resp, 4), nil
}

// SetKeycode writes one keymap entry.
// Request [0x05, layer, row, col, BE16(keycode)]; response carries no payload.
func (c *Client) SetKeycode(ctx context.Context, layer, row, col int, keycode uint16) error {
	req := packet.Build(cmdSetKeycode, byte(layer), byte(row), byte(col))
	packet.PutBE16(req, 4, keycode)
	_, err := c.exchange(ctx, req)
	return err
}

// GetLayoutOptions returns the 32-bit layout options bitfield.
func (c *Client) GetLayoutOptions(ctx context.Context) (uint32, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdGetKeyboardValue, valueLayoutOptions))
	if err != nil {
		return 0, err
	}
	return packet.BE32(resp, 2), nil
}

// SetLayoutOptions writes the 32-bit layout options bitfield.
func (c *Client) SetLayoutOptions(ctx context.Context, options uint32) error {
	req := packet.Build(cmdSetKeyboardValue, valueLayoutOptions)
	packet.PutBE32(req, 2, options)
	_, err := c.exchange(ctx, req)
	return err
}

// GetSwitchMatrixState returns the raw pressed-switch bitmap for the matrix
// tester. rowBytes is ceil(cols/8); the response carries rows*rowBytes bytes
// starting at offset 2.
func (c *Client) GetSwitchMatrixState(ctx context.Context, rows, cols int) ([]byte, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdGetKeyboardValue, valueSwitchMatrixState))
	if err != nil {
		return nil, err
	}
	rowBytes := (cols + 7) / 8
	n := rows * rowBytes
	if n > len(resp)-2 {
		n = len(resp) - 2
	}
	out := make([]byte, n)
	copy(out, resp[2:2+n])
	return out, nil
}
