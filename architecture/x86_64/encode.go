package x86_64

// WriteStatus reports how an encode attempt ended. CONT means bytes were
// written and the caller's cursor should advance by the returned count;
// every other status leaves the destination untouched.
type WriteStatus byte

const (
	WriteCont WriteStatus = iota
	WriteEOBUF
	WriteInv
	WriteEOP
	WriteErr
)

func (s WriteStatus) String() string {
	switch s {
	case WriteCont:
		return "CONT"
	case WriteEOBUF:
		return "EOBUF"
	case WriteInv:
		return "INV"
	case WriteEOP:
		return "EOP"
	default:
		return "ERR"
	}
}

// vexPP reconstructs the VEX payload's pp field from the record's p66/p1
// fields, the inverse of applyVexPayload.
func vexPP(ins *Instruction) byte {
	if ins.P66 {
		return 1
	}
	switch ins.P1 {
	case P1RepZ:
		return 2
	case P1RepNZ:
		return 3
	default:
		return 0
	}
}

// vexMMMMM returns the VEX3 m-mmmm field selecting the opcode map.
func vexMMMMM(e Escape) byte {
	switch e {
	case Esc1:
		return 1
	case Esc238:
		return 2
	case Esc23A:
		return 3
	default:
		return 0
	}
}

// Encode serializes ins into out, returning the number of bytes written.
// On any status other than WriteCont, out is left untouched and the
// returned count is 0. The encoder picks the shortest prefix form
// compatible with ins's intent (two-byte VEX where legal, minimum
// displacement width, promoting mod around RBP-family bases) and never
// writes more than 15 bytes.
func Encode(ins *Instruction, out []byte) (int, WriteStatus) {
	entry := encodingTable[tableIndex(ins.Opcode, ins.Escape)]
	if entry.invalid() {
		return 0, WriteInv
	}

	immFam := entry.immediate()
	immWidth := immFam.bytes(ins.P66, ins.RexW)
	if immFam != immNone && immFam != immI2 && !fitsSigned(ins.Immediate, immWidth) {
		return 0, WriteEOP
	}

	var scratch [15]byte
	n := 0

	// A legacy 66/F2/F3 byte preceding a VEX prefix is illegal (#UD); those
	// semantics live entirely in the VEX payload's pp field for a VEX
	// instruction, so P1/P66 must not also be emitted standalone here.
	if ins.P1 != P1None && !ins.Vex {
		scratch[n] = group1Byte(ins.P1)
		n++
	}
	if ins.P2 != P2None {
		scratch[n] = group2Byte(ins.P2)
		n++
	}
	if ins.P66 && !ins.Vex {
		scratch[n] = prefixOperandSize
		n++
	}
	if ins.P67 {
		scratch[n] = prefixAddressSize
		n++
	}

	if ins.Vex {
		useVex2 := ins.Escape == Esc1 && !ins.RexW &&
			ins.Reg&0x8 == 0 && ins.Index&0x8 == 0 && ins.Base&0x8 == 0
		pp := vexPP(ins)
		l := byte(0)
		if ins.VexL {
			l = 1
		}
		vvvv := (^ins.Aux) & 0xF
		if useVex2 {
			r := (^(ins.Reg >> 3)) & 1
			scratch[n] = prefixVEX2
			n++
			scratch[n] = r<<7 | vvvv<<3 | l<<2 | pp
			n++
		} else {
			r := (^(ins.Reg >> 3)) & 1
			x := (^(ins.Index >> 3)) & 1
			b := (^(ins.Base >> 3)) & 1
			w := byte(0)
			if ins.RexW {
				w = 1
			}
			scratch[n] = prefixVEX3
			n++
			scratch[n] = r<<7 | x<<6 | b<<5 | vexMMMMM(ins.Escape)
			n++
			scratch[n] = w<<7 | vvvv<<3 | l<<2 | pp
			n++
		}
	} else {
		r := (ins.Reg >> 3) & 1
		x := (ins.Index >> 3) & 1
		b := (ins.Base >> 3) & 1
		w := byte(0)
		if ins.RexW {
			w = 1
		}
		if w != 0 || r != 0 || x != 0 || b != 0 {
			scratch[n] = prefixREXBase | w<<3 | r<<2 | x<<1 | b
			n++
		}
		switch ins.Escape {
		case Esc1:
			scratch[n] = opcodeEscape1
			n++
		case Esc238:
			scratch[n] = opcodeEscape1
			scratch[n+1] = opcodeEscape2
			n += 2
		case Esc23A:
			scratch[n] = opcodeEscape1
			scratch[n+1] = opcodeEscape3
			n += 2
		}
	}

	scratch[n] = ins.Opcode
	n++

	if entry.hasModRM() {
		base := ins.Base

		var mod byte
		var dispWidth int
		switch ins.Addr {
		case AddrReg:
			mod = 3
		case AddrRIPRel, AddrZeroRel:
			mod = 0
			dispWidth = 4
		default:
			switch {
			case ins.Displacement == 0:
				dispWidth = 0
			case fitsSigned(int64(ins.Displacement), 1):
				dispWidth = 1
			default:
				dispWidth = 4
			}
			// mod=0 with a base register whose low 3 bits are 5 (RBP or
			// R13) collides with the RIPREL/no-base SIB forms, so a
			// zero displacement must be promoted to an explicit disp8.
			if base&0x7 == RBP.Encoding && dispWidth == 0 {
				dispWidth = 1
			}
			switch dispWidth {
			case 0:
				mod = 0
			case 1:
				mod = 1
			case 4:
				mod = 2
			}
		}

		needSIB := ins.Addr == AddrZeroRel || ins.Addr >= AddrScale1 ||
			(ins.Addr == AddrBase && base&0x7 == RSP.Encoding)

		rm := RSP.Encoding
		if !needSIB {
			if ins.Addr == AddrRIPRel {
				rm = RBP.Encoding
			} else {
				rm = base & 0x7
			}
		}

		scratch[n] = mod<<6 | (ins.Reg&0x7)<<3 | rm
		n++

		if needSIB {
			var scale, idx, sibBase byte
			switch {
			case ins.Addr == AddrZeroRel:
				idx, sibBase = RSP.Encoding, RBP.Encoding
			case ins.Addr >= AddrScale1:
				scale = byte(ins.Addr - AddrScale1)
				idx = ins.Index & 0x7
				sibBase = base & 0x7
			default:
				idx, sibBase = RSP.Encoding, base&0x7
			}
			scratch[n] = scale<<6 | idx<<3 | sibBase
			n++
		}

		if dispWidth > 0 {
			putLE(scratch[n:], uint64(uint32(ins.Displacement)), dispWidth)
			n += dispWidth
		}
	}

	if immWidth > 0 {
		putLE(scratch[n:], uint64(ins.Immediate), immWidth)
		n += immWidth
	}

	if n > len(out) {
		return 0, WriteEOBUF
	}
	copy(out, scratch[:n])
	return n, WriteCont
}
