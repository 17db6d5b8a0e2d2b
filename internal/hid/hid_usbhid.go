package hid

import (
	"context"
	"sync"

	"github.com/seagrayinc/vialctl/internal/packet"
	usbhid "rafaelmartins.com/p/usbhid"
)

type usbManager struct{}

func newManager() (Manager, error) { return &usbManager{}, nil }

func (m *usbManager) List() ([]Info, error) {
	devs, err := usbhid.Enumerate(nil)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(devs))
	for _, d := range devs {
		out = append(out, Info{
			Path:         d.Path(),
			VendorID:     d.VendorId(),
			ProductID:    d.ProductId(),
			Product:      d.Product(),
			Manufacturer: d.Manufacturer(),
			Serial:       d.SerialNumber(),
		})
	}
	return out, nil
}

func (m *usbManager) Open(info Info) (Device, error) {
	d, err := usbhid.Get(func(dev *usbhid.Device) bool {
		return dev.Path() == info.Path
	}, true, false)
	if err != nil {
		return nil, err
	}
	return &usbDevice{d: d, info: info, open: true}, nil
}

type usbDevice struct {
	d    *usbhid.Device
	info Info

	mu   sync.Mutex
	open bool
}

// The configuration interface uses unnumbered reports; the library expects
// report id 0 for those.
const rawReportID = 0

func (d *usbDevice) Exchange(_ context.Context, p []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.d.SetOutputReport(rawReportID, p); err != nil {
		return nil, err
	}
	_, buf, err := d.d.GetInputReport()
	if err != nil {
		return nil, err
	}
	resp := make([]byte, packet.Size)
	copy(resp, buf)
	return resp, nil
}

func (d *usbDevice) Send(_ context.Context, p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.d.SetOutputReport(rawReportID, p)
}

func (d *usbDevice) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *usbDevice) Info() Info { return d.info }

func (d *usbDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return d.d.Close()
}
