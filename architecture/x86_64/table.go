package x86_64

// immFamily identifies the width (and %rip-relative-ness) of the immediate
// or branch-displacement field that follows an instruction's addressing
// bytes.
type immFamily byte

const (
	immNone immFamily = iota
	immD8             // 8-bit %rip-relative immediate (short jump)
	immD32            // 32-bit %rip-relative immediate (near jump/call)
	immDSZW           // word if p66 else dword: %rip-relative
	immI8             // 8-bit invariant immediate
	immI16            // 16-bit invariant immediate
	immI32            // 32-bit invariant immediate
	immI64            // 64-bit invariant immediate
	immISZW           // word if p66 else dword: invariant
	immISZQ           // word/dword/qword per p66/rex_w: invariant
	immI2             // imm16, imm8 (ENTER): 3 bytes total
)

// bytes returns the number of immediate bytes this family contributes,
// given the instruction's operand-size prefix and REX.W bit.
func (f immFamily) bytes(p66, rexW bool) int {
	switch f {
	case immNone:
		return 0
	case immD8, immI8:
		return 1
	case immI16:
		return 2
	case immD32, immI32:
		return 4
	case immI64:
		return 8
	case immDSZW, immISZW:
		if p66 {
			return 2
		}
		return 4
	case immISZQ:
		if p66 {
			return 2
		}
		if rexW {
			return 8
		}
		return 4
	case immI2:
		return 3
	default:
		return 0
	}
}

// tableEntry packs one encoding-table cell: bit 0 says whether a ModR/M
// byte follows the opcode, bits 1-4 give the immediate family, and bit 7
// marks the (opcode, escape) pair invalid.
type tableEntry byte

const entryInvalid tableEntry = 0x80

func makeEntry(modrm bool, imm immFamily) tableEntry {
	var e tableEntry
	if modrm {
		e |= 0x01
	}
	e |= tableEntry(imm) << 1
	return e
}

func (e tableEntry) hasModRM() bool       { return e&0x01 != 0 }
func (e tableEntry) immediate() immFamily { return immFamily((e >> 1) & 0x0F) }
func (e tableEntry) invalid() bool        { return e&0x80 != 0 }

// encodingTable is the static 1024-entry lookup indexed by
// opcode | escape<<8, consulted by the decoder, encoder, and classifier.
var encodingTable [1024]tableEntry

func tableIndex(opcode byte, escape Escape) int {
	return int(opcode) | int(escape)<<8
}

func set(escape Escape, opcode byte, modrm bool, imm immFamily) {
	encodingTable[tableIndex(opcode, escape)] = makeEntry(modrm, imm)
}

func setRange(escape Escape, lo, hi byte, modrm bool, imm immFamily) {
	for o := int(lo); o <= int(hi); o++ {
		set(escape, byte(o), modrm, imm)
	}
}

func setInvalid(escape Escape, opcode byte) {
	encodingTable[tableIndex(opcode, escape)] = entryInvalid
}

func init() {
	for i := range encodingTable {
		encodingTable[i] = entryInvalid
	}
	buildEscape0()
	buildEscape1()
	buildEscape238()
	buildEscape23A()
}

// buildEscape0 fills the one-byte opcode map (0x00-0xFF, no 0x0F escape).
// Bytes that are themselves prefixes (group 1-4, REX, VEX) are left
// invalid: the decoder consumes them before ever reaching opcode lookup,
// so their table slot is unreachable and its value is only relevant as a
// defensive default.
func buildEscape0() {
	// ADD, OR, ADC, SBB, AND, SUB, XOR, CMP: each occupies an 8-opcode
	// block (+0.."+5) of the form Eb,Gb / Ev,Gv / Gb,Eb / Gv,Ev / AL,Ib /
	// eAX,Iz, with +6/+7 reused as prefix bytes (segment override or
	// invalid legacy BCD opcodes) in 64-bit mode.
	for _, base := range []byte{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38} {
		setRange(Esc0, base, base+3, true, immNone)
		set(Esc0, base+4, false, immI8)
		set(Esc0, base+5, false, immISZW)
	}

	set(Esc0, 0x50, false, immNone) // 0x50-0x57 PUSH r64
	setRange(Esc0, 0x50, 0x5F, false, immNone)

	set(Esc0, 0x63, true, immNone) // MOVSXD r64, r/m32

	set(Esc0, 0x68, false, immI32) // PUSH imm32
	set(Esc0, 0x69, true, immISZW) // IMUL r,r/m,imm32
	set(Esc0, 0x6A, false, immI8)  // PUSH imm8
	set(Esc0, 0x6B, true, immI8)  // IMUL r,r/m,imm8
	setRange(Esc0, 0x6C, 0x6F, false, immNone) // INS/OUTS

	setRange(Esc0, 0x70, 0x7F, false, immD8) // Jcc rel8

	set(Esc0, 0x80, true, immI8)   // group1 Eb,Ib
	set(Esc0, 0x81, true, immISZW) // group1 Ev,Iz
	set(Esc0, 0x83, true, immI8)   // group1 Ev,Ib (sign-extended)
	setRange(Esc0, 0x84, 0x8F, true, immNone) // TEST/XCHG/MOV/LEA/POP r/m

	setRange(Esc0, 0x90, 0x99, false, immNone) // NOP/XCHG/CBW/CWDE/CDQE/CWD/CDQ/CQO
	set(Esc0, 0x9B, false, immNone)            // FWAIT
	setRange(Esc0, 0x9C, 0x9F, false, immNone) // PUSHF/POPF/SAHF/LAHF

	set(Esc0, 0xA0, false, immI64) // MOV AL, moffs
	set(Esc0, 0xA1, false, immI64) // MOV eAX, moffs
	set(Esc0, 0xA2, false, immI64) // MOV moffs, AL
	set(Esc0, 0xA3, false, immI64) // MOV moffs, eAX
	setRange(Esc0, 0xA4, 0xA7, false, immNone) // MOVS/CMPS
	set(Esc0, 0xA8, false, immI8)               // TEST AL, imm8
	set(Esc0, 0xA9, false, immISZW)             // TEST eAX, imm32
	setRange(Esc0, 0xAA, 0xAF, false, immNone) // STOS/LODS/SCAS

	setRange(Esc0, 0xB0, 0xB7, false, immI8)   // MOV r8, imm8
	setRange(Esc0, 0xB8, 0xBF, false, immISZQ) // MOV r32/64, imm32/64

	set(Esc0, 0xC0, true, immI8)   // shift group2 Eb, Ib
	set(Esc0, 0xC1, true, immI8)   // shift group2 Ev, Ib
	set(Esc0, 0xC2, false, immI16) // RET imm16
	set(Esc0, 0xC3, false, immNone)
	set(Esc0, 0xC6, true, immI8)   // MOV Eb, Ib (group 11)
	set(Esc0, 0xC7, true, immISZW) // MOV Ev, Iz (group 11)
	set(Esc0, 0xC8, false, immI2)  // ENTER imm16, imm8
	set(Esc0, 0xC9, false, immNone)
	set(Esc0, 0xCA, false, immI16) // RETF imm16
	set(Esc0, 0xCB, false, immNone)
	set(Esc0, 0xCC, false, immNone)
	set(Esc0, 0xCD, false, immI8) // INT imm8
	set(Esc0, 0xCF, false, immNone)

	setRange(Esc0, 0xD0, 0xD3, true, immNone) // shift group2 by 1/CL
	set(Esc0, 0xD7, false, immNone)           // XLAT
	setRange(Esc0, 0xD8, 0xDF, true, immNone) // x87: second byte is always ModR/M-shaped

	setRange(Esc0, 0xE0, 0xE3, false, immD8) // LOOPNE/LOOPE/LOOP/JCXZ rel8
	setRange(Esc0, 0xE4, 0xE7, false, immI8) // IN/OUT imm8
	set(Esc0, 0xE8, false, immD32)           // CALL rel32
	set(Esc0, 0xE9, false, immD32)           // JMP rel32
	set(Esc0, 0xEB, false, immD8)            // JMP rel8
	setRange(Esc0, 0xEC, 0xEF, false, immNone) // IN/OUT DX

	set(Esc0, 0xF1, false, immNone)           // ICEBP
	set(Esc0, 0xF4, false, immNone)           // HLT
	set(Esc0, 0xF5, false, immNone)           // CMC
	set(Esc0, 0xF6, true, immI8)              // group3 Eb (TEST has imm8; NOT/NEG/MUL/DIV/IDIV don't — see DESIGN.md)
	set(Esc0, 0xF7, true, immISZW)            // group3 Ev
	setRange(Esc0, 0xF8, 0xFD, false, immNone) // CLC/STC/CLI/STI/CLD/STD
	set(Esc0, 0xFE, true, immNone)            // group4 Eb (INC/DEC)
	set(Esc0, 0xFF, true, immNone)            // group5 Ev (INC/DEC/CALL/JMP/PUSH)
}

// buildEscape1 fills the two-byte opcode map (0x0F xx). Several ranges of
// SSE/SSE2/MMX arithmetic opcodes share the same shape (ModR/M, no
// immediate); they are bulk-filled and then overridden where an immediate
// byte is actually present.
func buildEscape1() {
	setRange(Esc1, 0x00, 0x03, true, immNone) // group6/LAR/LSL
	set(Esc1, 0x05, false, immNone)           // SYSCALL
	set(Esc1, 0x06, false, immNone)           // CLTS
	set(Esc1, 0x07, false, immNone)           // SYSRET
	set(Esc1, 0x08, false, immNone)           // INVD
	set(Esc1, 0x09, false, immNone)           // WBINVD
	set(Esc1, 0x0B, false, immNone)           // UD2
	set(Esc1, 0x0D, true, immNone)            // NOP/prefetch Ev

	setRange(Esc1, 0x10, 0x17, true, immNone) // MOVUPS family
	set(Esc1, 0x18, true, immNone)            // group16 prefetch hints
	set(Esc1, 0x1F, true, immNone)            // multi-byte NOP Ev
	setRange(Esc1, 0x20, 0x23, true, immNone) // MOV r64, CRn/DRn and back
	setRange(Esc1, 0x28, 0x2F, true, immNone) // MOVAPS/CVT*/UCOMISS/COMISS

	setRange(Esc1, 0x30, 0x35, false, immNone) // WRMSR/RDTSC/RDMSR/RDPMC/SYSENTER/SYSEXIT

	setRange(Esc1, 0x40, 0x4F, true, immNone) // CMOVcc

	setRange(Esc1, 0x50, 0x6D, true, immNone) // MOVMSKPS.. PUNPCK*
	set(Esc1, 0x70, true, immI8)              // PSHUFW/PSHUFD/PSHUFHW/PSHUFLW
	setRange(Esc1, 0x71, 0x73, true, immI8)   // shift-by-imm8 groups (PSRLW/PSRAW/PSLLW etc.)
	setRange(Esc1, 0x74, 0x76, true, immNone) // PCMPEQB/W/D
	set(Esc1, 0x77, false, immNone)           // EMMS
	setRange(Esc1, 0x7C, 0x7F, true, immNone) // HADDPD.. MOVQ store

	setRange(Esc1, 0x80, 0x8F, false, immD32) // Jcc rel32
	setRange(Esc1, 0x90, 0x9F, true, immNone) // SETcc r/m8

	set(Esc1, 0xA0, false, immNone) // PUSH FS
	set(Esc1, 0xA1, false, immNone) // POP FS
	set(Esc1, 0xA2, false, immNone) // CPUID
	set(Esc1, 0xA3, true, immNone)  // BT
	set(Esc1, 0xA4, true, immI8)    // SHLD Ib
	set(Esc1, 0xA5, true, immNone)  // SHLD CL
	set(Esc1, 0xA8, false, immNone) // PUSH GS
	set(Esc1, 0xA9, false, immNone) // POP GS
	set(Esc1, 0xAA, false, immNone) // RSM
	set(Esc1, 0xAB, true, immNone)  // BTS
	set(Esc1, 0xAC, true, immI8)    // SHRD Ib
	set(Esc1, 0xAD, true, immNone)  // SHRD CL
	set(Esc1, 0xAE, true, immNone)  // group15 (FXSAVE/LFENCE/MFENCE/SFENCE/CLFLUSH)
	set(Esc1, 0xAF, true, immNone)  // IMUL Gv, Ev

	setRange(Esc1, 0xB0, 0xB1, true, immNone) // CMPXCHG
	setRange(Esc1, 0xB2, 0xB7, true, immNone) // LSS/BTR/LFS/LGS/MOVZX
	set(Esc1, 0xBA, true, immI8)              // group8 Ev, Ib
	setRange(Esc1, 0xBB, 0xBF, true, immNone) // BTC/BSF/BSR/MOVSX
	setRange(Esc1, 0xC0, 0xC1, true, immNone) // XADD
	set(Esc1, 0xC2, true, immI8)              // CMPPS
	set(Esc1, 0xC3, true, immNone)            // MOVNTI
	setRange(Esc1, 0xC4, 0xC6, true, immI8)   // PINSRW/PEXTRW/SHUFPS
	set(Esc1, 0xC7, true, immNone)            // group9 CMPXCHG8B/16B
	setRange(Esc1, 0xC8, 0xCF, false, immNone) // BSWAP r32/64 (register in opcode low bits)

	setRange(Esc1, 0xD0, 0xFE, true, immNone) // remaining MMX/SSE2 arithmetic
}

// buildEscape238 fills the 0x0F 0x38 map: almost entirely ModR/M with no
// immediate (SSSE3/SSE4/AVX/BMI two- and three-operand forms, including
// the VEX-only VBROADCASTSS/SD at 0x18).
func buildEscape238() {
	setRange(Esc238, 0x00, 0xFF, true, immNone)
	setInvalid(Esc238, 0xFF)
}

// buildEscape23A fills the 0x0F 0x3A map: almost every defined opcode here
// takes a trailing imm8 control byte (PALIGNR, ROUND*, (V)BLEND*, INSERTPS,
// DPPS/DPPD, MPSADBW, PCLMULQDQ, PEXTR*, PINSR*, AES key-gen, VPERM2F128...).
func buildEscape23A() {
	setRange(Esc23A, 0x00, 0xFF, true, immI8)
	setInvalid(Esc23A, 0xFF)
}
