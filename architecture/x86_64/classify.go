package x86_64

// RIPRelative reports whether ins addresses memory as rip+displacement.
// The target address is ins.RIP + int64(ins.Displacement).
func (ins *Instruction) RIPRelative() bool {
	return ins.Addr == AddrRIPRel
}

// ImmRelative reports whether ins.Immediate is a branch displacement
// rather than a literal value. The branch target is ins.RIP + ins.Immediate.
func (ins *Instruction) ImmRelative() bool {
	switch encodingTable[tableIndex(ins.Opcode, ins.Escape)].immediate() {
	case immD8, immD32, immDSZW:
		return true
	default:
		return false
	}
}

// IsSyscall reports whether ins is SYSCALL (0F 05), SYSENTER (0F 34), or
// INT 0x80 (CD 80) — the three instruction forms a rewriter diverts to
// its in-process hook.
func (ins *Instruction) IsSyscall() bool {
	if ins.Escape == Esc1 && (ins.Opcode == 0x05 || ins.Opcode == 0x34) {
		return true
	}
	return ins.Escape == Esc0 && ins.Opcode == 0xCD && byte(ins.Immediate) == 0x80
}
