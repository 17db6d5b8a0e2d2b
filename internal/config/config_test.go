package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "info" || cfg.RawUSB || len(cfg.Devices) != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vialctl.yaml")
	data := `log_level: debug
raw_usb: true
devices:
  - vendor_id: 0xFEED
    product_id: 0x6060
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" || !cfg.RawUSB {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Devices) != 1 || cfg.Devices[0].VendorID != 0xFEED || cfg.Devices[0].ProductID != 0x6060 {
		t.Errorf("unexpected devices: %+v", cfg.Devices)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero", Config{}, false},
		{"known level", Config{LogLevel: "warn"}, false},
		{"unknown level", Config{LogLevel: "trace"}, true},
		{"raw usb without devices", Config{RawUSB: true}, true},
		{"raw usb with device", Config{RawUSB: true, Devices: []DeviceFilter{{VendorID: 0xFEED}}}, false},
		{"missing vendor id", Config{Devices: []DeviceFilter{{ProductID: 0x6060}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
