package macro

import (
	"bytes"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		buf   []byte
		count int
		want  [][]byte
	}{
		{
			"three macros",
			[]byte{'a', 'b', 0, 'c', 0, 'd', 0},
			3,
			[][]byte{[]byte("ab"), []byte("c"), []byte("d")},
		},
		{
			"excess bytes ignored",
			[]byte{'a', 0, 'b', 0, 'x', 'x', 'x'},
			2,
			[][]byte{[]byte("a"), []byte("b")},
		},
		{
			"missing terminators yield empty macros",
			[]byte{'a', 0},
			3,
			[][]byte{[]byte("a"), {}, {}},
		},
		{
			"zero count",
			[]byte{'a', 0},
			0,
			[][]byte{},
		},
		{
			"empty macros in the middle",
			[]byte{0, 'b', 0, 0},
			3,
			[][]byte{{}, []byte("b"), {}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.buf, tt.count)
			if len(got) != len(tt.want) {
				t.Fatalf("macro count: got %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !bytes.Equal(got[i], tt.want[i]) {
					t.Errorf("macro %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	macros := [][]byte{[]byte("abc"), {}, []byte("d")}
	buf := Join(macros)
	want := []byte{'a', 'b', 'c', 0, 0, 'd', 0}
	if !bytes.Equal(buf, want) {
		t.Fatalf("join: got % x, want % x", buf, want)
	}
	got := Split(buf, len(macros))
	for i := range macros {
		if !bytes.Equal(got[i], macros[i]) {
			t.Errorf("macro %d: got %q, want %q", i, got[i], macros[i])
		}
	}
}

func TestEncodeDecodeBuffer(t *testing.T) {
	macros := [][]Action{
		{Text("hi"), Tap(0x04)},
		nil,
		{Delay(100), Text("bye")},
	}
	buf := EncodeBuffer(macros, true)
	got := DecodeBuffer(buf, len(macros), true)
	if !reflect.DeepEqual(got, macros) {
		t.Errorf("buffer round trip:\ngot:  %+v\nwant: %+v", got, macros)
	}
}
