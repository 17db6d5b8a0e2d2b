package keyboard

import (
	"encoding/json"
	"fmt"

	"github.com/seagrayinc/vialctl/internal/macro"
	"github.com/seagrayinc/vialctl/internal/via"
)

// layoutFileVersion identifies the saved layout format.
const layoutFileVersion = 1

// Layout is the persisted form of a device snapshot. Keymap and encoder
// entries are signed: -1 marks a slot that was never fetched, which Restore
// skips instead of writing a zero.
type Layout struct {
	Version       int                     `json:"version"`
	UID           string                  `json:"uid"`
	Keymap        [][][]int               `json:"layout"`
	EncoderLayout [][][2]int              `json:"encoder_layout"`
	LayoutOptions int64                   `json:"layout_options"`
	Macro         [][]macro.Action        `json:"macro"`
	VialProtocol  int                     `json:"vial_protocol"`
	ViaProtocol   int                     `json:"via_protocol"`
	TapDance      []via.TapDanceEntry     `json:"tap_dance"`
	Combo         []via.ComboEntry        `json:"combo"`
	KeyOverride   []via.KeyOverrideEntry  `json:"key_override"`
	AltRepeatKey  []via.AltRepeatKeyEntry `json:"alt_repeat_key"`
	Settings      map[uint16][]byte       `json:"settings,omitempty"`
}

// SaveLayout captures the current State as a Layout.
func (k *Keyboard) SaveLayout() (*Layout, error) {
	st := k.state
	if st == nil {
		return nil, fmt.Errorf("no device state loaded")
	}

	l := &Layout{
		Version:       layoutFileVersion,
		UID:           st.UID,
		LayoutOptions: st.LayoutOptions,
		Macro:         st.Macros,
		VialProtocol:  st.VialProtocol,
		ViaProtocol:   st.ViaProtocol,
		TapDance:      st.TapDance,
		Combo:         st.Combos,
		KeyOverride:   st.KeyOverrides,
		AltRepeatKey:  st.AltRepeatKeys,
	}

	l.Keymap = make([][][]int, st.Layers)
	for layer := range l.Keymap {
		l.Keymap[layer] = make([][]int, st.Rows)
		for row := range l.Keymap[layer] {
			l.Keymap[layer][row] = make([]int, st.Cols)
			for col := range l.Keymap[layer][row] {
				kc, ok := st.Keymap[KeymapKey{layer, row, col}]
				if !ok {
					l.Keymap[layer][row][col] = -1
					continue
				}
				l.Keymap[layer][row][col] = int(kc)
			}
		}
	}

	l.EncoderLayout = make([][][2]int, st.Layers)
	for layer := range l.EncoderLayout {
		l.EncoderLayout[layer] = make([][2]int, st.EncoderCount)
		for idx := range l.EncoderLayout[layer] {
			for dir := 0; dir < 2; dir++ {
				kc, ok := st.Encoders[EncoderKey{layer, idx, dir}]
				if !ok {
					l.EncoderLayout[layer][idx][dir] = -1
					continue
				}
				l.EncoderLayout[layer][idx][dir] = int(kc)
			}
		}
	}

	if len(st.Settings) > 0 {
		l.Settings = make(map[uint16][]byte, len(st.Settings))
		for qsid, data := range st.Settings {
			l.Settings[qsid] = data
		}
	}
	return l, nil
}

// MarshalLayout serializes a Layout for storage.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout parses a stored layout file.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout file: %w", err)
	}
	return &l, nil
}
