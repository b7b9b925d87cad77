package x86_64

import "fmt"

func p1Token(p Prefix1) string {
	switch p {
	case P1Lock:
		return "lock"
	case P1RepNZ:
		return "repnz"
	case P1RepZ:
		return "repz"
	default:
		return "-"
	}
}

func p2Token(p Prefix2) string {
	switch p {
	case P2CS:
		return "cs"
	case P2SS:
		return "ss"
	case P2DS:
		return "ds"
	case P2ES:
		return "es"
	case P2FS:
		return "fs"
	case P2GS:
		return "gs"
	default:
		return "-"
	}
}

func escapeToken(e Escape) string {
	switch e {
	case Esc1:
		return "0f"
	case Esc238:
		return "38"
	case Esc23A:
		return "3a"
	default:
		return "00"
	}
}

// Print renders ins into out as a deterministic, fixed-shape hex-dump line,
// returning the number of bytes written. If the rendered text does not fit
// in out, nothing is written and Print returns 0.
func Print(ins *Instruction, out []byte) int {
	length := ins.RIP - ins.Start

	var extBits string
	if ins.Vex {
		extBits = "vex."
		if ins.VexL {
			extBits += "l "
		}
		if ins.RexW {
			extBits += "w "
		}
	} else if ins.RexW {
		extBits = "rex.w "
	}

	var p66Bits, p67Bits string
	if ins.P66 {
		p66Bits = "66 "
	}
	if ins.P67 {
		p67Bits = "67 "
	}

	entry := encodingTable[tableIndex(ins.Opcode, ins.Escape)]

	var operand string
	switch {
	case !entry.hasModRM():
		operand = fmt.Sprintf("%%%d", ins.Reg)
	case ins.Addr == AddrReg:
		operand = fmt.Sprintf("%%%d %%%d", ins.Reg, ins.Base)
	case ins.Addr == AddrRIPRel:
		abs := uint64(int64(ins.RIP) + int64(ins.Displacement))
		operand = fmt.Sprintf("%d(%%rip) [= %016x]", ins.Displacement, abs)
	case ins.Addr == AddrZeroRel:
		operand = fmt.Sprintf("%d(0)", ins.Displacement)
	case ins.Addr == AddrBase:
		operand = fmt.Sprintf("%d(%%%d)", ins.Displacement, ins.Base)
	default:
		operand = fmt.Sprintf("%d(%%%d, %%%d, %d)", ins.Displacement, ins.Base, ins.Index, ins.Addr.Scale())
	}

	var immPart string
	immFam := entry.immediate()
	if immFam != immNone {
		immPart = fmt.Sprintf(" %d", ins.Immediate)
		if immFam == immD8 || immFam == immD32 || immFam == immDSZW {
			target := uint64(int64(ins.RIP) + ins.Immediate)
			immPart += fmt.Sprintf(" [= %016x]", target)
		}
	}

	text := fmt.Sprintf("%016x (%x): %s %s %s%s%s%s %02x %s%s",
		ins.Start, length, p1Token(ins.P1), p2Token(ins.P2),
		p66Bits, p67Bits, extBits, escapeToken(ins.Escape), ins.Opcode,
		operand, immPart)

	if len(text) > len(out) {
		return 0
	}
	copy(out, text)
	return len(text)
}
