package packet

import (
	"bytes"
	"testing"
)

func TestBuildPadsAndTruncates(t *testing.T) {
	p := Build(0x01, 0x02)
	if len(p) != Size {
		t.Fatalf("unexpected packet length: %d", len(p))
	}
	if p[0] != 0x01 || p[1] != 0x02 {
		t.Fatalf("leading bytes not copied: % x", p[:2])
	}
	if !bytes.Equal(p[2:], make([]byte, Size-2)) {
		t.Fatalf("padding not zeroed: % x", p)
	}

	long := make([]byte, Size+10)
	for i := range long {
		long[i] = byte(i)
	}
	p = Build(long...)
	if len(p) != Size {
		t.Fatalf("oversized input not truncated: %d", len(p))
	}
	if p[Size-1] != byte(Size-1) {
		t.Fatalf("truncation kept wrong bytes: 0x%02X", p[Size-1])
	}
}

func TestIntegerFields(t *testing.T) {
	p := Build()

	PutBE16(p, 1, 0x1234)
	if p[1] != 0x12 || p[2] != 0x34 {
		t.Errorf("BE16 bytes: % x", p[1:3])
	}
	if got := BE16(p, 1); got != 0x1234 {
		t.Errorf("BE16 read: 0x%04X", got)
	}

	PutBE32(p, 4, 0xDEADBEEF)
	if got := BE32(p, 4); got != 0xDEADBEEF {
		t.Errorf("BE32 read: 0x%08X", got)
	}

	PutLE16(p, 10, 0x1234)
	if p[10] != 0x34 || p[11] != 0x12 {
		t.Errorf("LE16 bytes: % x", p[10:12])
	}
	if got := LE16(p, 10); got != 0x1234 {
		t.Errorf("LE16 read: 0x%04X", got)
	}

	PutLE32(p, 12, 0xCAFEBABE)
	if got := LE32(p, 12); got != 0xCAFEBABE {
		t.Errorf("LE32 read: 0x%08X", got)
	}
}

func TestLE64Hex(t *testing.T) {
	p := Build()
	copy(p[4:], []byte{0x78, 0x56, 0x34, 0x12, 0xEF, 0xBE, 0xAD, 0xDE})
	if got := LE64Hex(p, 4); got != "0xdeadbeef12345678" {
		t.Errorf("LE64Hex: %s", got)
	}
}
