// Package packet builds and reads the fixed 32-byte raw-HID frames used by
// the VIA/Vial configuration protocol.
//
// Endianness is per-field, fixed by the firmware: keycodes, keymap/macro
// buffer offsets and layout options are big-endian; the Vial sub-protocol's
// identity, definition block addressing, dynamic-entry fields and per-device
// settings are little-endian.
package packet

import (
	"encoding/binary"
	"fmt"
)

// Size is the raw-HID report length used by VIA/Vial firmware.
const Size = 32

// Build copies the given bytes into a zero-padded Size-byte frame. Input
// longer than Size is truncated; the firmware only reads the declared field
// layout of each command.
func Build(b ...byte) []byte {
	p := make([]byte, Size)
	copy(p, b)
	return p
}

func BE16(b []byte, off int) uint16 {
	return binary.BigEndian.Uint16(b[off : off+2])
}

func BE32(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off : off+4])
}

func PutBE16(b []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(b[off:off+2], v)
}

func PutBE32(b []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(b[off:off+4], v)
}

func LE16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

func LE32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

func PutLE16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

func PutLE32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// LE64Hex reads a little-endian 64-bit identifier and formats it as
// "0x" + 16 hex digits. The value is an opaque device uid, not arithmetic
// data, so it is surfaced as a string.
func LE64Hex(b []byte, off int) string {
	return fmt.Sprintf("0x%016x", binary.LittleEndian.Uint64(b[off:off+8]))
}
