package via

import (
	"context"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// GetLightingValue reads one lighting channel value. The value id and the
// shape of the returned bytes are defined by the firmware's lighting kind;
// the two bytes after the echoed id are returned as-is.
func (c *Client) GetLightingValue(ctx context.Context, id byte) ([2]byte, error) {
	resp, err := c.exchange(ctx, packet.Build(cmdLightingGetValue, id))
	if err != nil {
		return [2]byte{}, err
	}
	return [2]byte{resp[2], resp[3]}, nil
}

// SetLightingValue writes one lighting channel value.
func (c *Client) SetLightingValue(ctx context.Context, id byte, args ...byte) error {
	req := packet.Build(append([]byte{cmdLightingSetValue, id}, args...)...)
	_, err := c.exchange(ctx, req)
	return err
}

// SaveLighting persists the current lighting state to the device's EEPROM.
func (c *Client) SaveLighting(ctx context.Context) error {
	_, err := c.exchange(ctx, packet.Build(cmdLightingSave))
	return err
}
