package via

import "fmt"

// EchoError indicates that the firmware echoed the request back verbatim on
// every attempt, which is how VIA/Vial firmware signals an unimplemented
// command. Callers should treat the feature as absent rather than the
// transport as broken.
type EchoError struct {
	Command  byte
	Attempts int
}

func (e *EchoError) Error() string {
	return fmt.Sprintf("command 0x%02X not supported by firmware: request echoed on all %d attempts",
		e.Command, e.Attempts)
}

// EntryNotFoundError indicates a non-zero status byte in a dynamic entry get
// response.
type EntryNotFoundError struct {
	Index  int
	Status byte
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("dynamic entry %d not found: device status 0x%02X", e.Index, e.Status)
}

// SettingReadError indicates a non-zero status byte in a QMK settings get
// response.
type SettingReadError struct {
	QSID   uint16
	Status byte
}

func (e *SettingReadError) Error() string {
	return fmt.Sprintf("QMK setting %d read failed: device status 0x%02X", e.QSID, e.Status)
}
