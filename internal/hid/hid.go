// Package hid abstracts the raw-HID interface a VIA/Vial keyboard exposes
// for configuration: enumeration, matching, and 32-byte report exchange.
package hid

import (
	"context"
	"strings"
)

// VialSerialMagic is embedded in the USB serial number string by Vial
// firmware so hosts can find the configuration interface without a VID/PID
// allowlist.
const VialSerialMagic = "vial:f64c2b3c"

// Raw-HID usage identifying the configuration interface.
const (
	UsagePage = 0xFF60
	Usage     = 0x61
)

// Info describes an enumerated HID device.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Product      string
	Manufacturer string
	Serial       string
}

// IsVial reports whether the device advertises the Vial serial magic.
func (i Info) IsVial() bool {
	return strings.Contains(i.Serial, VialSerialMagic)
}

// Device is an opened configuration interface. Exchange and Send move one
// fixed-size packet; Open reports whether the physical device is still
// attached.
type Device interface {
	Exchange(ctx context.Context, p []byte) ([]byte, error)
	Send(ctx context.Context, p []byte) error
	Open() bool
	Info() Info
	Close() error
}

// Manager enumerates and opens HID devices.
type Manager interface {
	List() ([]Info, error)
	Open(info Info) (Device, error)
}

// NewManager returns the usbhid-backed manager.
func NewManager() (Manager, error) {
	return newManager()
}
