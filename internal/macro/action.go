// Package macro converts between the device's flat macro byte buffer and
// structured action sequences. Two incompatible wire encodings exist,
// selected by the negotiated Vial protocol version; both are implemented
// here along with the NUL-delimited multi-macro buffer layout.
package macro

import (
	"encoding/json"
	"fmt"
)

// Kind tags an Action.
type Kind int

const (
	KindText Kind = iota
	KindTap
	KindDown
	KindUp
	KindDelay
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTap:
		return "tap"
	case KindDown:
		return "down"
	case KindUp:
		return "up"
	case KindDelay:
		return "delay"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Action is one step of a macro: literal text, a tap/press/release of one or
// more keycodes, or a delay in milliseconds.
type Action struct {
	Kind     Kind
	Text     string   // KindText
	Keycodes []uint16 // KindTap, KindDown, KindUp
	Delay    int      // KindDelay, milliseconds
}

func Text(s string) Action    { return Action{Kind: KindText, Text: s} }
func Tap(kc ...uint16) Action { return Action{Kind: KindTap, Keycodes: kc} }
func Down(kc ...uint16) Action { return Action{Kind: KindDown, Keycodes: kc} }
func Up(kc ...uint16) Action  { return Action{Kind: KindUp, Keycodes: kc} }
func Delay(ms int) Action     { return Action{Kind: KindDelay, Delay: ms} }

// MarshalJSON encodes the action as a tagged array, e.g. ["tap", 4, 5],
// ["text", "hi"] or ["delay", 100], the form used by saved layout files.
func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindText:
		return json.Marshal([]any{a.Kind.String(), a.Text})
	case KindDelay:
		return json.Marshal([]any{a.Kind.String(), a.Delay})
	default:
		arr := make([]any, 0, len(a.Keycodes)+1)
		arr = append(arr, a.Kind.String())
		for _, kc := range a.Keycodes {
			arr = append(arr, kc)
		}
		return json.Marshal(arr)
	}
}

// UnmarshalJSON decodes the tagged array form.
func (a *Action) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) == 0 {
		return fmt.Errorf("macro action: empty array")
	}
	var tag string
	if err := json.Unmarshal(arr[0], &tag); err != nil {
		return fmt.Errorf("macro action tag: %w", err)
	}
	switch tag {
	case "text":
		*a = Action{Kind: KindText}
		if len(arr) > 1 {
			if err := json.Unmarshal(arr[1], &a.Text); err != nil {
				return err
			}
		}
	case "delay":
		*a = Action{Kind: KindDelay}
		if len(arr) > 1 {
			if err := json.Unmarshal(arr[1], &a.Delay); err != nil {
				return err
			}
		}
	case "tap", "down", "up":
		kind := KindTap
		switch tag {
		case "down":
			kind = KindDown
		case "up":
			kind = KindUp
		}
		*a = Action{Kind: kind}
		for _, raw := range arr[1:] {
			var kc uint16
			if err := json.Unmarshal(raw, &kc); err != nil {
				return err
			}
			a.Keycodes = append(a.Keycodes, kc)
		}
	default:
		return fmt.Errorf("macro action: unknown tag %q", tag)
	}
	return nil
}
