// Package keyboard turns the per-command protocol operations into one
// coherent in-memory snapshot of device configuration (reload) and pushes
// saved snapshots back to a live device (restore).
package keyboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/seagrayinc/vialctl/internal/macro"
	"github.com/seagrayinc/vialctl/internal/packet"
	"github.com/seagrayinc/vialctl/internal/via"
)

// KeymapKey addresses one keymap entry.
type KeymapKey struct {
	Layer, Row, Col int
}

// EncoderKey addresses one direction of one rotary encoder.
// Direction 0 is counterclockwise, 1 is clockwise.
type EncoderKey struct {
	Layer, Index, Direction int
}

// State is one reload's snapshot of device configuration. A published State
// is never mutated by a later reload; Reload builds a fresh one and swaps it
// in, so readers never observe a torn snapshot. Keymap and Encoders are
// sparse: a missing key means "not fetched", which is distinct from a zero
// keycode.
type State struct {
	ViaProtocol  int
	VialProtocol int // -1 for VIA-only firmware without the Vial extension
	UID          string

	Definition   *Definition
	Rows, Cols   int
	Layers       int
	EncoderCount int

	MacroCount      int
	MacroBufferSize int
	LayoutOptions   int64 // -1 when the device did not report options

	Keymap   map[KeymapKey]uint16
	Encoders map[EncoderKey]uint16
	Macros   [][]macro.Action

	EntryCounts   via.DynamicEntryCounts
	TapDance      []via.TapDanceEntry
	Combos        []via.ComboEntry
	KeyOverrides  []via.KeyOverrideEntry
	AltRepeatKeys []via.AltRepeatKeyEntry

	Settings map[uint16][]byte

	Unlock via.UnlockStatus
}

// MacroV2 reports whether the device speaks the v2 macro encoding.
func (s *State) MacroV2() bool {
	return s.VialProtocol >= via.MacroProtocolV2
}

// Keyboard owns one device session: a protocol client plus the current
// published State. All methods issue blocking exchanges strictly one at a
// time; later reload phases consume earlier results, so the order is fixed.
type Keyboard struct {
	client *via.Client
	log    *slog.Logger
	state  *State
}

// New wraps a protocol client.
func New(client *via.Client, log *slog.Logger) *Keyboard {
	if log == nil {
		log = slog.Default()
	}
	return &Keyboard{client: client, log: log}
}

// Client exposes the underlying protocol client for pass-through operations
// (lighting, unlock flow, settings reset).
func (k *Keyboard) Client() *via.Client { return k.client }

// State returns the snapshot published by the last successful Reload, or
// nil before the first one.
func (k *Keyboard) State() *State { return k.state }

// Reload fetches the full device configuration and publishes it as a new
// State. The phase order is fixed: identity, definition, sizes and options,
// dynamic entry counts, keymap, encoders, macros, dynamic entries, settings,
// unlock status. Definition decode failures and per-entry fetch failures
// degrade the snapshot instead of failing it; a transport failure in any
// other phase aborts the reload and leaves the previous State published.
func (k *Keyboard) Reload(ctx context.Context) (*State, error) {
	st := &State{
		VialProtocol:  -1,
		LayoutOptions: -1,
		Keymap:        make(map[KeymapKey]uint16),
		Encoders:      make(map[EncoderKey]uint16),
		Settings:      make(map[uint16][]byte),
	}

	// Identity. VIA-only firmware echoes the Vial identity command; that
	// keeps VialProtocol at -1 and skips every Vial-extension phase below.
	viaProto, err := k.client.GetProtocolVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get protocol version: %w", err)
	}
	st.ViaProtocol = viaProto

	id, err := k.client.GetKeyboardID(ctx)
	switch {
	case err == nil:
		st.VialProtocol = id.VialProtocol
		st.UID = id.UID
	case errors.As(err, new(*via.EchoError)):
		k.log.Info("no Vial extension detected, continuing as VIA-only")
	default:
		return nil, fmt.Errorf("get keyboard id: %w", err)
	}

	if st.VialProtocol >= 0 {
		if err := k.reloadDefinition(ctx, st); err != nil {
			return nil, err
		}
	}

	if err := k.reloadSizes(ctx, st); err != nil {
		return nil, err
	}

	if st.VialProtocol >= via.DynamicEntryProtocol {
		counts, err := k.client.GetDynamicEntryCounts(ctx)
		switch {
		case err == nil:
			st.EntryCounts = counts
		case errors.As(err, new(*via.EchoError)):
			// Firmware below the feature level: all counts stay zero.
		default:
			return nil, fmt.Errorf("get dynamic entry counts: %w", err)
		}
	}

	if err := k.reloadKeymap(ctx, st); err != nil {
		return nil, err
	}
	k.reloadEncoders(ctx, st)

	if st.MacroCount > 0 && st.MacroBufferSize > 0 {
		buf, err := k.client.GetMacroBuffer(ctx, st.MacroBufferSize)
		if err != nil {
			return nil, fmt.Errorf("get macro buffer: %w", err)
		}
		st.Macros = macro.DecodeBuffer(buf, st.MacroCount, st.MacroV2())
	}

	k.reloadDynamicEntries(ctx, st)

	if st.VialProtocol >= 0 {
		k.reloadSettings(ctx, st)
		unlock, err := k.client.GetUnlockStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("get unlock status: %w", err)
		}
		st.Unlock = unlock
	} else {
		// VIA-only devices have no lock concept and always report unlocked.
		st.Unlock = via.UnlockStatus{Unlocked: true}
	}

	k.state = st
	return st, nil
}

func (k *Keyboard) reloadDefinition(ctx context.Context, st *State) error {
	size, err := k.client.GetDefinitionSize(ctx)
	if err != nil {
		return fmt.Errorf("get definition size: %w", err)
	}
	raw, err := k.client.GetDefinitionRaw(ctx, size)
	if err != nil {
		return fmt.Errorf("get definition: %w", err)
	}
	def, err := DecodeDefinition(raw)
	if err != nil {
		// Degrade rather than abort: the rest of the reload still runs,
		// with geometry-derived fields left at zero.
		k.log.Warn("device definition unusable", slog.Any("error", err))
		return nil
	}
	st.Definition = def
	st.Rows = def.Matrix.Rows
	st.Cols = def.Matrix.Cols
	st.EncoderCount = def.EncoderCount()
	return nil
}

func (k *Keyboard) reloadSizes(ctx context.Context, st *State) error {
	layers, err := k.client.GetLayerCount(ctx)
	if err != nil {
		return fmt.Errorf("get layer count: %w", err)
	}
	st.Layers = layers

	count, err := k.client.GetMacroCount(ctx)
	if err != nil {
		return fmt.Errorf("get macro count: %w", err)
	}
	st.MacroCount = count

	bufSize, err := k.client.GetMacroBufferSize(ctx)
	if err != nil {
		return fmt.Errorf("get macro buffer size: %w", err)
	}
	st.MacroBufferSize = bufSize

	options, err := k.client.GetLayoutOptions(ctx)
	if err != nil {
		return fmt.Errorf("get layout options: %w", err)
	}
	st.LayoutOptions = int64(options)
	return nil
}

func (k *Keyboard) reloadKeymap(ctx context.Context, st *State) error {
	total := st.Layers * st.Rows * st.Cols * 2
	buf, err := k.client.GetKeymapBuffer(ctx, 0, total)
	if err != nil {
		return fmt.Errorf("get keymap buffer: %w", err)
	}
	for layer := 0; layer < st.Layers; layer++ {
		for row := 0; row < st.Rows; row++ {
			for col := 0; col < st.Cols; col++ {
				off := 2 * (layer*st.Rows*st.Cols + row*st.Cols + col)
				st.Keymap[KeymapKey{layer, row, col}] = packet.BE16(buf, off)
			}
		}
	}
	return nil
}

// reloadEncoders fetches every (layer, encoder) pair. A single failing slot
// is skipped, not fatal: the snapshot just carries fewer entries.
func (k *Keyboard) reloadEncoders(ctx context.Context, st *State) {
	for layer := 0; layer < st.Layers; layer++ {
		for idx := 0; idx < st.EncoderCount; idx++ {
			cw, ccw, err := k.client.GetEncoder(ctx, layer, idx)
			if err != nil {
				k.log.Warn("skipping encoder",
					slog.Int("layer", layer), slog.Int("index", idx), slog.Any("error", err))
				continue
			}
			st.Encoders[EncoderKey{layer, idx, 0}] = ccw
			st.Encoders[EncoderKey{layer, idx, 1}] = cw
		}
	}
}

// reloadDynamicEntries fetches each kind's declared slots in index order,
// skipping slots the device fails to produce.
func (k *Keyboard) reloadDynamicEntries(ctx context.Context, st *State) {
	for i := 0; i < st.EntryCounts.TapDance; i++ {
		e, err := k.client.GetTapDance(ctx, i)
		if err != nil {
			k.log.Warn("skipping tap dance", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		st.TapDance = append(st.TapDance, e)
	}
	for i := 0; i < st.EntryCounts.Combo; i++ {
		e, err := k.client.GetCombo(ctx, i)
		if err != nil {
			k.log.Warn("skipping combo", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		st.Combos = append(st.Combos, e)
	}
	for i := 0; i < st.EntryCounts.KeyOverride; i++ {
		e, err := k.client.GetKeyOverride(ctx, i)
		if err != nil {
			k.log.Warn("skipping key override", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		st.KeyOverrides = append(st.KeyOverrides, e)
	}
	for i := 0; i < st.EntryCounts.AltRepeatKey; i++ {
		e, err := k.client.GetAltRepeatKey(ctx, i)
		if err != nil {
			k.log.Warn("skipping alt repeat key", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		st.AltRepeatKeys = append(st.AltRepeatKeys, e)
	}
}

func (k *Keyboard) reloadSettings(ctx context.Context, st *State) {
	qsids, err := k.client.QmkSettingsQuery(ctx)
	if err != nil {
		k.log.Warn("QMK settings discovery failed", slog.Any("error", err))
		return
	}
	for _, qsid := range qsids {
		data, err := k.client.QmkSettingsGet(ctx, qsid)
		if err != nil {
			k.log.Warn("skipping QMK setting", slog.Int("qsid", int(qsid)), slog.Any("error", err))
			continue
		}
		st.Settings[qsid] = data
	}
}

// SetKeycode writes one keymap entry on the device, then mirrors it into the
// current State. The device write happens first so a failure leaves local
// state untouched.
func (k *Keyboard) SetKeycode(ctx context.Context, layer, row, col int, keycode uint16) error {
	if err := k.client.SetKeycode(ctx, layer, row, col, keycode); err != nil {
		return err
	}
	if k.state != nil {
		k.state.Keymap[KeymapKey{layer, row, col}] = keycode
	}
	return nil
}

// SetEncoderKeycode writes one encoder direction and mirrors it locally.
func (k *Keyboard) SetEncoderKeycode(ctx context.Context, layer, index, direction int, keycode uint16) error {
	if err := k.client.SetEncoder(ctx, layer, index, direction, keycode); err != nil {
		return err
	}
	if k.state != nil {
		k.state.Encoders[EncoderKey{layer, index, direction}] = keycode
	}
	return nil
}

// SetLayoutOptions writes the layout options bitfield and mirrors it.
func (k *Keyboard) SetLayoutOptions(ctx context.Context, options uint32) error {
	if err := k.client.SetLayoutOptions(ctx, options); err != nil {
		return err
	}
	if k.state != nil {
		k.state.LayoutOptions = int64(options)
	}
	return nil
}

// SetMacros re-encodes the macro list at the device's protocol version,
// writes the buffer and mirrors the actions. Data beyond the device buffer
// is truncated.
func (k *Keyboard) SetMacros(ctx context.Context, macros [][]macro.Action) error {
	st := k.state
	if st == nil {
		return errors.New("no device state loaded")
	}
	buf := macro.EncodeBuffer(macros, st.MacroV2())
	if len(buf) > st.MacroBufferSize {
		k.log.Warn("macro buffer truncated",
			slog.Int("encoded", len(buf)), slog.Int("capacity", st.MacroBufferSize))
		buf = buf[:st.MacroBufferSize]
	}
	if err := k.client.SetMacroBuffer(ctx, buf); err != nil {
		return err
	}
	st.Macros = macros
	return nil
}

// SetTapDance writes one tap dance slot and mirrors it.
func (k *Keyboard) SetTapDance(ctx context.Context, index int, e via.TapDanceEntry) error {
	if err := k.client.SetTapDance(ctx, index, e); err != nil {
		return err
	}
	if k.state != nil && index < len(k.state.TapDance) {
		k.state.TapDance[index] = e
	}
	return nil
}

// SetCombo writes one combo slot and mirrors it.
func (k *Keyboard) SetCombo(ctx context.Context, index int, e via.ComboEntry) error {
	if err := k.client.SetCombo(ctx, index, e); err != nil {
		return err
	}
	if k.state != nil && index < len(k.state.Combos) {
		k.state.Combos[index] = e
	}
	return nil
}

// SetKeyOverride writes one key override slot and mirrors it.
func (k *Keyboard) SetKeyOverride(ctx context.Context, index int, e via.KeyOverrideEntry) error {
	if err := k.client.SetKeyOverride(ctx, index, e); err != nil {
		return err
	}
	if k.state != nil && index < len(k.state.KeyOverrides) {
		k.state.KeyOverrides[index] = e
	}
	return nil
}

// SetAltRepeatKey writes one alternate repeat key slot and mirrors it.
func (k *Keyboard) SetAltRepeatKey(ctx context.Context, index int, e via.AltRepeatKeyEntry) error {
	if err := k.client.SetAltRepeatKey(ctx, index, e); err != nil {
		return err
	}
	if k.state != nil && index < len(k.state.AltRepeatKeys) {
		k.state.AltRepeatKeys[index] = e
	}
	return nil
}

// SetQmkSetting writes one setting's raw payload and mirrors it.
func (k *Keyboard) SetQmkSetting(ctx context.Context, qsid uint16, data []byte) error {
	if err := k.client.QmkSettingsSet(ctx, qsid, data); err != nil {
		return err
	}
	if k.state != nil {
		k.state.Settings[qsid] = data
	}
	return nil
}
