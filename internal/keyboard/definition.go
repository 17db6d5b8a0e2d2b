package keyboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz/lzma"
)

// Definition is the device-side keyboard definition, shipped by the firmware
// as an LZMA-compressed JSON blob. Only the fields the engine needs are
// decoded; the KLE layout array is kept raw for outer layers to interpret.
type Definition struct {
	Name   string `json:"name"`
	Matrix struct {
		Rows int `json:"rows"`
		Cols int `json:"cols"`
	} `json:"matrix"`
	Layouts struct {
		Keymap json.RawMessage `json:"keymap"`
		Labels json.RawMessage `json:"labels"`
	} `json:"layouts"`
	CustomKeycodes []CustomKeycode `json:"customKeycodes"`
	Vial           struct {
		Midi string `json:"midi"`
	} `json:"vial"`
	DynamicKeymap struct {
		LayerCount int `json:"layer_count"`
	} `json:"dynamic_keymap"`
}

// CustomKeycode is a firmware-defined keycode exposed through the
// definition.
type CustomKeycode struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	ShortName string `json:"shortName"`
}

// DefinitionError reports a definition blob that could not be decompressed
// or parsed. The reload sequence recovers from it locally by running with
// zero geometry; it is never fatal.
type DefinitionError struct {
	Err error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("device definition decode failed: %v", e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// DecodeDefinition decompresses and parses the raw definition blob.
func DecodeDefinition(raw []byte) (*Definition, error) {
	r, err := lzma.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &DefinitionError{Err: err}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DefinitionError{Err: err}
	}
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, &DefinitionError{Err: err}
	}
	return &def, nil
}

// Encoder keys appear in the KLE layout with legends of the form
// "index,direction" followed by a literal 'e'.
var encoderLegend = regexp.MustCompile(`^(\d+),(\d+)e$`)

// EncoderCount derives the number of rotary encoders from the KLE layout
// array: one more than the highest encoder index named by an encoder
// legend, zero when the layout has none.
func (d *Definition) EncoderCount() int {
	if d == nil || len(d.Layouts.Keymap) == 0 {
		return 0
	}
	var kle []any
	if err := json.Unmarshal(d.Layouts.Keymap, &kle); err != nil {
		return 0
	}
	maxIdx := -1
	walkStrings(kle, func(s string) {
		// A KLE legend can hold several labels separated by newlines.
		for _, line := range strings.Split(s, "\n") {
			m := encoderLegend.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if idx, err := strconv.Atoi(m[1]); err == nil && idx > maxIdx {
				maxIdx = idx
			}
		}
	})
	return maxIdx + 1
}

func walkStrings(v any, fn func(string)) {
	switch t := v.(type) {
	case string:
		fn(t)
	case []any:
		for _, e := range t {
			walkStrings(e, fn)
		}
	}
}
