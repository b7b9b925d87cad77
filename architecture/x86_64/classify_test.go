package x86_64_test

import (
	"testing"

	"github.com/xvisor/xv/architecture/x86_64"
)

func TestRIPRelative(t *testing.T) {
	ripRel, _, status := x86_64.Decode([]byte{0x48, 0x8B, 0x05, 0x11, 0x22, 0x33, 0x44}, 0, 0x1000)
	if status != x86_64.ReadCont {
		t.Fatalf("decode status = %v", status)
	}
	if !ripRel.RIPRelative() {
		t.Error("expected RIPRelative() true for disp32(%rip) operand")
	}

	reg, _, status := x86_64.Decode([]byte{0x48, 0x89, 0xE5}, 0, 0x1000)
	if status != x86_64.ReadCont {
		t.Fatalf("decode status = %v", status)
	}
	if reg.RIPRelative() {
		t.Error("expected RIPRelative() false for register-direct operand")
	}
}

func TestImmRelative(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  bool
	}{
		{"jmp rel32", []byte{0xE9, 0x00, 0x01, 0x00, 0x00}, true},
		{"jmp rel8", []byte{0xEB, 0x10}, true},
		{"jcc rel32", []byte{0x0F, 0x84, 0x00, 0x01, 0x00, 0x00}, true},
		{"mov eax, imm32", []byte{0xB8, 0x01, 0x00, 0x00, 0x00}, false},
		{"test al, imm8", []byte{0xA8, 0xFF}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, _, status := x86_64.Decode(tt.bytes, 0, 0x1000)
			if status != x86_64.ReadCont {
				t.Fatalf("decode status = %v", status)
			}
			if got := ins.ImmRelative(); got != tt.want {
				t.Errorf("ImmRelative() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSyscall(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  bool
	}{
		{"syscall", []byte{0x0F, 0x05}, true},
		{"sysenter", []byte{0x0F, 0x34}, true},
		{"int 0x80", []byte{0xCD, 0x80}, true},
		{"int 0x03", []byte{0xCD, 0x03}, false},
		{"sysret", []byte{0x0F, 0x07}, false},
		{"nop", []byte{0x90}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, _, status := x86_64.Decode(tt.bytes, 0, 0x1000)
			if status != x86_64.ReadCont {
				t.Fatalf("decode status = %v", status)
			}
			if got := ins.IsSyscall(); got != tt.want {
				t.Errorf("IsSyscall() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPredicateAgreement checks testable property 6: syscall?(R) iff the
// re-encoded bytes begin with one of the three recognized syscall forms.
func TestPredicateAgreement(t *testing.T) {
	cases := [][]byte{
		{0x0F, 0x05},
		{0x0F, 0x34},
		{0xCD, 0x80},
		{0x0F, 0x07}, // sysret: not a syscall form
		{0x90},       // nop: not a syscall form
	}
	for _, original := range cases {
		ins, _, status := x86_64.Decode(original, 0, 0x1000)
		if status != x86_64.ReadCont {
			t.Fatalf("decode(% x): status=%v", original, status)
		}

		var out [15]byte
		n, wstatus := x86_64.Encode(&ins, out[:])
		if wstatus != x86_64.WriteCont {
			t.Fatalf("encode(% x): status=%v", original, wstatus)
		}

		encoded := out[:n]
		isOneOf := bytesHavePrefix(encoded, 0x0F, 0x05) ||
			bytesHavePrefix(encoded, 0x0F, 0x34) ||
			bytesHavePrefix(encoded, 0xCD, 0x80)

		if ins.IsSyscall() != isOneOf {
			t.Errorf("IsSyscall()=%v but encoded bytes % x has syscall-prefix=%v", ins.IsSyscall(), encoded, isOneOf)
		}
	}
}

func bytesHavePrefix(b []byte, prefix ...byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if b[i] != p {
			return false
		}
	}
	return true
}
