package x86_64_test

import (
	"bytes"
	"testing"

	"github.com/xvisor/xv/architecture/x86_64"
)

func TestEncode_RoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x48, 0x89, 0xE5},                         // mov %rsp, %rbp
		{0x48, 0x8B, 0x05, 0x11, 0x22, 0x33, 0x44},  // mov disp32(%rip), %rax
		{0xE9, 0x00, 0x01, 0x00, 0x00},              // jmp rel32
		{0xC4, 0xE2, 0x7D, 0x18, 0x00},              // vbroadcastss ymm0, [rax]
		{0x0F, 0x05},                                // syscall
		{0xCD, 0x80},                                // int 0x80
		{0x48, 0x8B, 0x45, 0x00},                    // mov 0(%rbp), %rax
		{0x48, 0x8B, 0x04, 0x24},                     // mov (%rsp), %rax
	}

	for _, original := range cases {
		ins, n, status := x86_64.Decode(original, 0, 0x1000)
		if status != x86_64.ReadCont || n != len(original) {
			t.Fatalf("decode(% x): status=%v n=%d", original, status, n)
		}

		var out [15]byte
		written, wstatus := x86_64.Encode(&ins, out[:])
		if wstatus != x86_64.WriteCont {
			t.Fatalf("encode(% x): status=%v", original, wstatus)
		}
		if !bytes.Equal(out[:written], original) {
			t.Errorf("round trip of % x produced % x", original, out[:written])
		}

		reins, rn, rstatus := x86_64.Decode(out[:written], 0, 0x1000)
		if rstatus != x86_64.ReadCont || rn != written {
			t.Fatalf("re-decode of % x: status=%v n=%d", out[:written], rstatus, rn)
		}
		if reins != ins {
			t.Errorf("re-decoded record differs from original for % x:\n got  %+v\n want %+v", original, reins, ins)
		}
	}
}

func TestEncode_RIPAnchoring(t *testing.T) {
	ins, _, status := x86_64.Decode([]byte{0x48, 0x8B, 0x05, 0x11, 0x22, 0x33, 0x44}, 0, 0x1000)
	if status != x86_64.ReadCont {
		t.Fatalf("decode status = %v", status)
	}
	target := ins.RIP + uint64(int64(ins.Displacement))

	// Re-encode as though this instruction now lives 0x500 bytes later.
	newRIP := ins.RIP + 0x500
	ins.Displacement = int32(int64(target) - int64(newRIP))

	var out [15]byte
	n, wstatus := x86_64.Encode(&ins, out[:])
	if wstatus != x86_64.WriteCont {
		t.Fatalf("encode status = %v", wstatus)
	}

	reins, _, rstatus := x86_64.Decode(out[:n], 0, newRIP-uint64(n))
	if rstatus != x86_64.ReadCont {
		t.Fatalf("re-decode status = %v", rstatus)
	}
	gotTarget := reins.RIP + uint64(int64(reins.Displacement))
	if gotTarget != target {
		t.Errorf("target drifted: got %#x, want %#x", gotTarget, target)
	}
}

func TestEncode_BranchDisplacementTooFar(t *testing.T) {
	ins, _, status := x86_64.Decode([]byte{0xEB, 0x10}, 0, 0x1000) // jmp rel8
	if status != x86_64.ReadCont {
		t.Fatalf("decode status = %v", status)
	}
	ins.Immediate = 0x1000 // no longer fits in a signed 8-bit displacement

	var out [15]byte
	_, wstatus := x86_64.Encode(&ins, out[:])
	if wstatus != x86_64.WriteEOP {
		t.Errorf("status = %v, want EOP", wstatus)
	}
}

func TestEncode_InvalidOpcode(t *testing.T) {
	ins := x86_64.Instruction{Escape: x86_64.Esc1, Opcode: 0xFF}
	var out [15]byte
	_, status := x86_64.Encode(&ins, out[:])
	if status != x86_64.WriteInv {
		t.Errorf("status = %v, want INV", status)
	}
}

func TestEncode_BufferTooSmall(t *testing.T) {
	ins, _, status := x86_64.Decode([]byte{0x48, 0x8B, 0x05, 0x11, 0x22, 0x33, 0x44}, 0, 0x1000)
	if status != x86_64.ReadCont {
		t.Fatalf("decode status = %v", status)
	}

	var out [2]byte
	n, wstatus := x86_64.Encode(&ins, out[:])
	if wstatus != x86_64.WriteEOBUF {
		t.Errorf("status = %v, want EOBUF", wstatus)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
}

func TestEncode_LengthBound(t *testing.T) {
	cases := [][]byte{
		{0x48, 0x89, 0xE5},
		{0x48, 0x8B, 0x05, 0x11, 0x22, 0x33, 0x44},
		{0xC4, 0xE2, 0x7D, 0x18, 0x00},
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
		if n > 15 {
			t.Errorf("encode(% x) wrote %d bytes, want <= 15", original, n)
		}
	}
}
