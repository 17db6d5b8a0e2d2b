package via

import (
	"context"
	"errors"
	"testing"

	"github.com/seagrayinc/vialctl/internal/packet"
)

func TestQmkSettingsQueryPagination(t *testing.T) {
	// The device supports QSIDs 1..20; each page holds 16 ids and the list
	// is terminated by the 0xFFFF sentinel.
	supported := make([]uint16, 20)
	for i := range supported {
		supported[i] = uint16(i + 1)
	}
	tr := &stubTransport{handler: func(req []byte) []byte {
		start := packet.LE16(req, 2)
		resp := make([]byte, packet.Size)
		off := 0
		for _, qsid := range supported {
			if qsid < start || off+1 >= packet.Size {
				continue
			}
			packet.PutLE16(resp, off, qsid)
			off += 2
		}
		if off+1 < packet.Size {
			packet.PutLE16(resp, off, settingsQueryEnd)
		}
		return resp
	}}
	c := NewClient(tr, WithEchoRetries(3), WithEchoRetryDelay(0))

	qsids, err := c.QmkSettingsQuery(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(qsids) != len(supported) {
		t.Fatalf("got %d qsids, want %d", len(qsids), len(supported))
	}
	for i, qsid := range qsids {
		if qsid != supported[i] {
			t.Errorf("qsid[%d] = %d, want %d", i, qsid, supported[i])
		}
	}
	if len(tr.requests) != 2 {
		t.Errorf("walked %d pages, want 2", len(tr.requests))
	}
}

func TestQmkSettingsQueryRepeatingFirmware(t *testing.T) {
	// Buggy firmware that repeats the same id on every page and never sends
	// the 0xFFFF sentinel. The walk must still terminate once a page stops
	// advancing the start id.
	tr := &stubTransport{handler: func(req []byte) []byte {
		resp := make([]byte, packet.Size)
		for off := 0; off+1 < packet.Size; off += 2 {
			packet.PutLE16(resp, off, 3)
		}
		return resp
	}}
	c := NewClient(tr, WithEchoRetries(2), WithEchoRetryDelay(0))

	qsids, err := c.QmkSettingsQuery(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(qsids) == 0 {
		t.Error("expected the ids seen before the walk stopped")
	}
	if len(tr.requests) != 2 {
		t.Errorf("walked %d pages, want 2", len(tr.requests))
	}
}

func TestQmkSettingsQueryUnsupportedFirmware(t *testing.T) {
	tr := &stubTransport{handler: func(req []byte) []byte {
		resp := make([]byte, packet.Size)
		copy(resp, req)
		return resp
	}}
	c := NewClient(tr, WithEchoRetries(2), WithEchoRetryDelay(0))

	qsids, err := c.QmkSettingsQuery(context.Background())
	if err != nil {
		t.Fatalf("echo should degrade to an empty list, got %v", err)
	}
	if qsids != nil {
		t.Errorf("expected no qsids, got %v", qsids)
	}
}

func TestQmkSettingsGetStatus(t *testing.T) {
	tr := &stubTransport{handler: func(req []byte) []byte {
		resp := make([]byte, packet.Size)
		if packet.LE16(req, 2) == 9 {
			resp[1] = 0x2A
			return resp
		}
		resp[0] = 0x01
		return resp
	}}
	c := NewClient(tr)

	data, err := c.QmkSettingsGet(context.Background(), 9)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 0x2A {
		t.Errorf("payload: % x", data[:4])
	}

	_, err = c.QmkSettingsGet(context.Background(), 10)
	var readErr *SettingReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected SettingReadError, got %v", err)
	}
	if readErr.QSID != 10 {
		t.Errorf("error qsid: %d", readErr.QSID)
	}
}
