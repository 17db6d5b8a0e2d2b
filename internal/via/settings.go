package via

import (
	"context"
	"errors"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// QmkSettingsQuery discovers the QSIDs the firmware supports. The device
// returns pages of little-endian 16-bit ids starting at startID, terminated
// by the 0xFFFF sentinel; the full list is walked page by page. Firmware
// without the settings feature echoes the command, which is reported as an
// empty list rather than an error.
func (c *Client) QmkSettingsQuery(ctx context.Context) ([]uint16, error) {
	var qsids []uint16
	start := uint16(0)
	for {
		req := packet.Build(cmdVialPrefix, vialQmkSettingsQuery)
		packet.PutLE16(req, 2, start)
		resp, err := c.exchangeNoEcho(ctx, req)
		if err != nil {
			var echo *EchoError
			if errors.As(err, &echo) {
				return nil, nil
			}
			return nil, err
		}
		for off := 0; off+1 < packet.Size; off += 2 {
			qsid := packet.LE16(resp, off)
			if qsid == settingsQueryEnd {
				return qsids, nil
			}
			qsids = append(qsids, qsid)
		}
		// Each page must advance the start id. A device that repeats ids
		// without ever sending the sentinel would otherwise stall the walk.
		next := qsids[len(qsids)-1] + 1
		if next <= start {
			return qsids, nil
		}
		start = next
	}
}

// QmkSettingsGet reads the raw payload of one setting. The response carries
// a status byte at offset 0; the payload bytes that follow are interpreted
// by the caller.
func (c *Client) QmkSettingsGet(ctx context.Context, qsid uint16) ([]byte, error) {
	req := packet.Build(cmdVialPrefix, vialQmkSettingsGet)
	packet.PutLE16(req, 2, qsid)
	resp, err := c.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp[0] != 0 {
		return nil, &SettingReadError{QSID: qsid, Status: resp[0]}
	}
	out := make([]byte, packet.Size-1)
	copy(out, resp[1:])
	return out, nil
}

// QmkSettingsSet writes the raw payload of one setting.
func (c *Client) QmkSettingsSet(ctx context.Context, qsid uint16, data []byte) error {
	req := packet.Build(cmdVialPrefix, vialQmkSettingsSet)
	packet.PutLE16(req, 2, qsid)
	copy(req[4:], data)
	_, err := c.exchange(ctx, req)
	return err
}

// QmkSettingsReset restores all settings to firmware defaults.
func (c *Client) QmkSettingsReset(ctx context.Context) error {
	_, err := c.exchange(ctx, packet.Build(cmdVialPrefix, vialQmkSettingsReset))
	return err
}
