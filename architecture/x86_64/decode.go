package x86_64

// ReadStatus reports how a decode attempt ended. CONT is the only status
// that means an Instruction was actually produced; every other value
// pinpoints the phase the decoder was in when it ran out of bytes or
// rejected the input, rather than collapsing to a single failure value.
type ReadStatus byte

const (
	ReadCont   ReadStatus = iota // a record was produced, buffer advanced
	ReadEnd                      // clean end of buffer at an instruction boundary
	ReadEndP                     // ran out while scanning group 1-4 prefixes
	ReadEndO1                    // ran out after REX (or no extension prefix) before the escape/opcode byte
	ReadEndV2                    // ran out reading the two-byte VEX payload
	ReadEndV3                    // ran out reading the three-byte VEX payload
	ReadEndO2                    // ran out after the 0x0F escape byte
	ReadEndO3                    // ran out after the 0x0F 0x38 / 0x0F 0x3A escape bytes
	ReadEndO4                    // ran out reading the opcode byte on the VEX path
	ReadEndM                     // ran out reading the ModR/M byte
	ReadEndS                     // ran out reading the SIB byte
	ReadEndD                     // ran out reading the displacement
	ReadEndI                     // ran out reading the immediate
	ReadInv                      // opcode (or VEX map) is invalid
	ReadErr                      // host-level error, never returned by Decode itself
)

func (s ReadStatus) String() string {
	switch s {
	case ReadCont:
		return "CONT"
	case ReadEnd:
		return "END"
	case ReadEndP:
		return "END_P"
	case ReadEndO1:
		return "END_O1"
	case ReadEndV2:
		return "END_V2"
	case ReadEndV3:
		return "END_V3"
	case ReadEndO2:
		return "END_O2"
	case ReadEndO3:
		return "END_O3"
	case ReadEndO4:
		return "END_O4"
	case ReadEndM:
		return "END_M"
	case ReadEndS:
		return "END_S"
	case ReadEndD:
		return "END_D"
	case ReadEndI:
		return "END_I"
	case ReadInv:
		return "INV"
	default:
		return "ERR"
	}
}

// Decode reads one instruction out of data starting at pos, treating
// data[pos] as though it lives at logical address addr. On ReadCont it
// returns the populated record and the offset of the byte following the
// instruction. On any other status the returned offset equals pos: the
// caller's cursor does not move on failure.
//
// The algorithm is a single pass: prefix → REX/VEX → escape → opcode →
// ModR/M → SIB → displacement → immediate; it never looks past the
// instruction's own last byte.
func Decode(data []byte, pos int, addr uint64) (Instruction, int, ReadStatus) {
	start := pos
	var ins Instruction

	for pos < len(data) {
		b := data[pos]
		switch {
		case isGroup1Prefix(b):
			if ins.P1 == P1None {
				ins.P1 = group1PrefixKind(b)
			}
			pos++
			continue
		case isGroup2Prefix(b):
			if ins.P2 == P2None {
				ins.P2 = group2PrefixKind(b)
			}
			pos++
			continue
		case isGroup3Prefix(b):
			ins.P66 = true
			pos++
			continue
		case isGroup4Prefix(b):
			ins.P67 = true
			pos++
			continue
		}
		break
	}
	if pos >= len(data) {
		if pos == start {
			return Instruction{}, start, ReadEnd
		}
		return Instruction{}, start, ReadEndP
	}

	var regExt, idxExt, baseExt byte
	vexUsed := false

	b := data[pos]
	switch {
	case isREX(b):
		pos++
		ins.RexW = b&0x08 != 0
		regExt = (b >> 2) & 1
		idxExt = (b >> 1) & 1
		baseExt = b & 1

	case isVEX2(b):
		pos++
		if pos >= len(data) {
			return Instruction{}, start, ReadEndV2
		}
		p := data[pos]
		pos++
		vexUsed = true
		ins.Vex = true
		ins.Escape = Esc1
		regExt = (^p >> 7) & 1
		applyVexPayload(&ins, p)

	case isVEX3(b):
		pos++
		if pos+1 >= len(data) {
			return Instruction{}, start, ReadEndV3
		}
		p1 := data[pos]
		p2 := data[pos+1]
		pos += 2
		mmmmm := p1 & 0x1F
		switch mmmmm {
		case 1:
			ins.Escape = Esc1
		case 2:
			ins.Escape = Esc238
		case 3:
			ins.Escape = Esc23A
		default:
			return Instruction{}, start, ReadInv
		}
		vexUsed = true
		ins.Vex = true
		regExt = (^p1 >> 7) & 1
		idxExt = (^p1 >> 6) & 1
		baseExt = (^p1 >> 5) & 1
		ins.RexW = p2&0x80 != 0
		applyVexPayload(&ins, p2)
	}

	if vexUsed {
		if pos >= len(data) {
			return Instruction{}, start, ReadEndO4
		}
		ins.Opcode = data[pos]
		pos++
	} else {
		if pos >= len(data) {
			return Instruction{}, start, ReadEndO1
		}
		b = data[pos]
		if b == opcodeEscape1 {
			pos++
			if pos >= len(data) {
				return Instruction{}, start, ReadEndO2
			}
			b2 := data[pos]
			switch b2 {
			case opcodeEscape2:
				pos++
				ins.Escape = Esc238
				if pos >= len(data) {
					return Instruction{}, start, ReadEndO3
				}
				ins.Opcode = data[pos]
				pos++
			case opcodeEscape3:
				pos++
				ins.Escape = Esc23A
				if pos >= len(data) {
					return Instruction{}, start, ReadEndO3
				}
				ins.Opcode = data[pos]
				pos++
			default:
				ins.Escape = Esc1
				ins.Opcode = b2
				pos++
			}
		} else {
			ins.Escape = Esc0
			ins.Opcode = b
			pos++
		}
	}

	entry := encodingTable[tableIndex(ins.Opcode, ins.Escape)]
	if entry.invalid() {
		return Instruction{}, start, ReadInv
	}

	var mod, rm byte
	var sibPresent bool
	var sibBase byte

	if entry.hasModRM() {
		ins.Reg = regExt << 3
		ins.Index = idxExt << 3
		ins.Base = baseExt << 3

		if pos >= len(data) {
			return Instruction{}, start, ReadEndM
		}
		mrm := data[pos]
		pos++
		mod = mrm >> 6
		rm = mrm & 0x7
		ins.Reg |= (mrm >> 3) & 0x7

		var scale, idx byte
		if mod != 3 && rm == RSP.Encoding {
			if pos >= len(data) {
				return Instruction{}, start, ReadEndS
			}
			sib := data[pos]
			pos++
			sibPresent = true
			scale = sib >> 6
			idx = (sib >> 3) & 0x7
			sibBase = sib & 0x7
		}

		switch {
		case mod == 3:
			ins.Addr = AddrReg
			ins.Base |= rm
		case mod == 0 && rm == RBP.Encoding && !sibPresent:
			ins.Addr = AddrRIPRel
		case sibPresent && mod == 0 && sibBase == RBP.Encoding && idx == RSP.Encoding:
			ins.Addr = AddrZeroRel
			ins.Index |= idx
		case sibPresent && idx == RSP.Encoding:
			ins.Addr = AddrBase
			ins.Base |= sibBase
		case sibPresent:
			ins.Addr = addrModeForScale(scale)
			ins.Base |= sibBase
			ins.Index |= idx
		default:
			ins.Addr = AddrBase
			ins.Base |= rm
		}

		var dispWidth int
		switch {
		case ins.Addr == AddrRIPRel || ins.Addr == AddrZeroRel:
			dispWidth = 4
		case mod == 2:
			dispWidth = 4
		case mod == 1:
			dispWidth = 1
		case mod == 0 && sibPresent && sibBase == RBP.Encoding:
			dispWidth = 4
		}
		if dispWidth > 0 {
			if pos+dispWidth > len(data) {
				return Instruction{}, start, ReadEndD
			}
			ins.Displacement = int32(signExtend(readLE(data[pos:pos+dispWidth]), dispWidth))
			pos += dispWidth
		}
	}

	immFam := entry.immediate()
	n := immFam.bytes(ins.P66, ins.RexW)
	if n > 0 {
		if pos+n > len(data) {
			return Instruction{}, start, ReadEndI
		}
		ins.Immediate = signExtend(readLE(data[pos:pos+n]), n)
		pos += n
	}

	ins.Start = addr
	ins.RIP = addr + uint64(pos-start)
	return ins, pos, ReadCont
}

// applyVexPayload merges VEX.vvvv/L/pp from a VEX payload byte into ins.
// pp==00 is deliberately a silent no-op: no legacy prefix is implied.
func applyVexPayload(ins *Instruction, p byte) {
	vvvv := (p >> 3) & 0xF
	ins.Aux = (^vvvv) & 0xF
	ins.VexL = p&0x04 != 0
	switch p & 0x3 {
	case 1:
		ins.P66 = true
	case 2:
		ins.P1 = P1RepZ
	case 3:
		ins.P1 = P1RepNZ
	}
}
