// Package rawusb is a fallback transport for hosts where the hidraw path is
// unavailable (missing udev rules, restrictive permissions): it talks to the
// configuration interface through raw USB endpoint I/O instead of the HID
// subsystem.
package rawusb

import (
	"context"
	"fmt"
	"sync"

	"github.com/karalabe/usb"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// Device is a keyboard opened via raw USB.
type Device struct {
	dev usb.Device

	mu   sync.Mutex
	open bool
}

// Open finds and opens the first device matching vid/pid.
func Open(vid, pid uint16) (*Device, error) {
	infos, err := usb.Enumerate(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("usb enumerate: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("no device found (VID:0x%04X PID:0x%04X)", vid, pid)
	}
	dev, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	return &Device{dev: dev, open: true}, nil
}

// Exchange writes one 32-byte packet and blocks for the response.
func (d *Device) Exchange(_ context.Context, p []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.dev.Write(p); err != nil {
		return nil, fmt.Errorf("usb write: %w", err)
	}
	buf := make([]byte, packet.Size)
	if _, err := d.dev.Read(buf); err != nil {
		return nil, fmt.Errorf("usb read: %w", err)
	}
	return buf, nil
}

// Send writes one packet without waiting for a response.
func (d *Device) Send(_ context.Context, p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.dev.Write(p); err != nil {
		return fmt.Errorf("usb write: %w", err)
	}
	return nil
}

// Open reports whether the device handle is still usable.
func (d *Device) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Close releases the device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return d.dev.Close()
}
