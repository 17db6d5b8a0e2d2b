// Package via implements the host side of the VIA configuration protocol
// and its Vial extension: one operation per device command, each a single
// 32-byte request/response exchange, plus the chunked transfer and
// echo-retry protocols layered on top.
package via

// VIA command ids (request byte 0).
const (
	cmdGetProtocolVersion = 0x01
	cmdGetKeyboardValue   = 0x02
	cmdSetKeyboardValue   = 0x03
	cmdGetKeycode         = 0x04
	cmdSetKeycode         = 0x05
	cmdLightingSetValue   = 0x07
	cmdLightingGetValue   = 0x08
	cmdLightingSave       = 0x09
	cmdMacroGetCount      = 0x0C
	cmdMacroGetBufferSize = 0x0D
	cmdMacroGetBuffer     = 0x0E
	cmdMacroSetBuffer     = 0x0F
	cmdGetLayerCount      = 0x11
	cmdKeymapGetBuffer    = 0x12
	cmdVialPrefix         = 0xFE
)

// VIA keyboard value ids (byte 1 of get/set keyboard value).
const (
	valueLayoutOptions     = 0x02
	valueSwitchMatrixState = 0x03
)

// Vial sub-commands (request byte 1 after the 0xFE prefix).
const (
	vialGetKeyboardID     = 0x00
	vialGetSize           = 0x01
	vialGetDefinition     = 0x02
	vialGetEncoder        = 0x03
	vialSetEncoder        = 0x04
	vialGetUnlockStatus   = 0x05
	vialUnlockStart       = 0x06
	vialUnlockPoll        = 0x07
	vialLock              = 0x08
	vialQmkSettingsQuery  = 0x09
	vialQmkSettingsGet    = 0x0A
	vialQmkSettingsSet    = 0x0B
	vialQmkSettingsReset  = 0x0C
	vialDynamicEntryOp    = 0x0D
)

// Dynamic entry sub-ops (request byte 2 after 0xFE 0x0D).
const (
	dynamicGetEntryCounts  = 0x00
	dynamicTapDanceGet     = 0x01
	dynamicTapDanceSet     = 0x02
	dynamicComboGet        = 0x03
	dynamicComboSet        = 0x04
	dynamicKeyOverrideGet  = 0x05
	dynamicKeyOverrideSet  = 0x06
	dynamicAltRepeatKeyGet = 0x07
	dynamicAltRepeatKeySet = 0x08
)

const (
	// chunkSize is the payload capacity of one keymap/macro buffer chunk:
	// a 32-byte packet minus the 4-byte [cmd, offsetBE16, size] header.
	chunkSize = 28

	// settingsQueryEnd terminates the paginated QSID list.
	settingsQueryEnd = 0xFFFF
)

// Vial protocol thresholds.
const (
	// MacroProtocolV2 is the lowest Vial protocol using the prefixed macro
	// encoding with delays and two-byte keycodes.
	MacroProtocolV2 = 2

	// DynamicEntryProtocol is the lowest Vial protocol implementing the
	// dynamic entry op (tap dance, combo, key override, alt repeat key).
	DynamicEntryProtocol = 4
)
