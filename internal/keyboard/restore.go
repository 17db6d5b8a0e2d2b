package keyboard

import (
	"context"
	"fmt"
	"log/slog"
)

// Restore pushes a saved Layout to the live device. Every index-addressed
// array is clamped to the minimum of the saved size and the live device's
// capacity, so a snapshot captured from a larger or differently-shaped
// configuration never writes past the device's bounds. Negative keymap and
// encoder entries mark unset slots and are skipped. Each apply step either
// succeeds or returns its error; no partial-success state is invented here.
func (k *Keyboard) Restore(ctx context.Context, l *Layout) error {
	st := k.state
	if st == nil {
		return fmt.Errorf("no device state loaded")
	}
	if l.UID != "" && st.UID != "" && l.UID != st.UID {
		k.log.Warn("layout saved from a different device",
			slog.String("saved", l.UID), slog.String("device", st.UID))
	}

	if err := k.restoreKeymap(ctx, l); err != nil {
		return err
	}
	if err := k.restoreEncoders(ctx, l); err != nil {
		return err
	}

	if l.LayoutOptions >= 0 {
		if err := k.SetLayoutOptions(ctx, uint32(l.LayoutOptions)); err != nil {
			return fmt.Errorf("restore layout options: %w", err)
		}
	}

	if len(l.Macro) > 0 {
		macros := l.Macro
		if len(macros) > st.MacroCount {
			macros = macros[:st.MacroCount]
		}
		if err := k.SetMacros(ctx, macros); err != nil {
			return fmt.Errorf("restore macros: %w", err)
		}
	}

	if err := k.restoreDynamicEntries(ctx, l); err != nil {
		return err
	}

	for qsid, data := range l.Settings {
		if err := k.SetQmkSetting(ctx, qsid, data); err != nil {
			return fmt.Errorf("restore QMK setting %d: %w", qsid, err)
		}
	}
	return nil
}

func (k *Keyboard) restoreKeymap(ctx context.Context, l *Layout) error {
	st := k.state
	layers := min(len(l.Keymap), st.Layers)
	for layer := 0; layer < layers; layer++ {
		rows := min(len(l.Keymap[layer]), st.Rows)
		for row := 0; row < rows; row++ {
			cols := min(len(l.Keymap[layer][row]), st.Cols)
			for col := 0; col < cols; col++ {
				kc := l.Keymap[layer][row][col]
				if kc < 0 {
					continue
				}
				if err := k.SetKeycode(ctx, layer, row, col, uint16(kc)); err != nil {
					return fmt.Errorf("restore key (%d,%d,%d): %w", layer, row, col, err)
				}
			}
		}
	}
	return nil
}

func (k *Keyboard) restoreEncoders(ctx context.Context, l *Layout) error {
	st := k.state
	layers := min(len(l.EncoderLayout), st.Layers)
	for layer := 0; layer < layers; layer++ {
		count := min(len(l.EncoderLayout[layer]), st.EncoderCount)
		for idx := 0; idx < count; idx++ {
			for dir := 0; dir < 2; dir++ {
				kc := l.EncoderLayout[layer][idx][dir]
				if kc < 0 {
					continue
				}
				if err := k.SetEncoderKeycode(ctx, layer, idx, dir, uint16(kc)); err != nil {
					return fmt.Errorf("restore encoder (%d,%d,%d): %w", layer, idx, dir, err)
				}
			}
		}
	}
	return nil
}

func (k *Keyboard) restoreDynamicEntries(ctx context.Context, l *Layout) error {
	st := k.state
	for i := 0; i < min(len(l.TapDance), st.EntryCounts.TapDance); i++ {
		if err := k.SetTapDance(ctx, i, l.TapDance[i]); err != nil {
			return fmt.Errorf("restore tap dance %d: %w", i, err)
		}
	}
	for i := 0; i < min(len(l.Combo), st.EntryCounts.Combo); i++ {
		if err := k.SetCombo(ctx, i, l.Combo[i]); err != nil {
			return fmt.Errorf("restore combo %d: %w", i, err)
		}
	}
	for i := 0; i < min(len(l.KeyOverride), st.EntryCounts.KeyOverride); i++ {
		if err := k.SetKeyOverride(ctx, i, l.KeyOverride[i]); err != nil {
			return fmt.Errorf("restore key override %d: %w", i, err)
		}
	}
	for i := 0; i < min(len(l.AltRepeatKey), st.EntryCounts.AltRepeatKey); i++ {
		if err := k.SetAltRepeatKey(ctx, i, l.AltRepeatKey[i]); err != nil {
			return fmt.Errorf("restore alt repeat key %d: %w", i, err)
		}
	}
	return nil
}
