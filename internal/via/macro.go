package via

import (
	"context"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// GetMacroCount returns the number of macro slots on the device.
func (c *Client) GetMacroCount(ctx context.Context) (int, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdMacroGetCount))
	if err != nil {
		return 0, err
	}
	return int(resp[1]), nil
}

// GetMacroBufferSize returns the size of the device's macro buffer in bytes.
// Response big-endian 16-bit at offset 1.
func (c *Client) GetMacroBufferSize(ctx context.Context) (int, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdMacroGetBufferSize))
	if err != nil {
		return 0, err
	}
	return int(packet.BE16(resp, 1)), nil
}

// GetMacroBuffer fetches size bytes of the raw macro buffer.
func (c *Client) GetMacroBuffer(ctx context.Context, size int) ([]byte, error) {
	return c.getBuffer(ctx, cmdMacroGetBuffer, 0, size)
}

// SetMacroBuffer writes the raw macro buffer starting at offset 0.
func (c *Client) SetMacroBuffer(ctx context.Context, data []byte) error {
	return c.setBuffer(ctx, cmdMacroSetBuffer, 0, data)
}
