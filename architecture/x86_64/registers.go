package x86_64

// RegisterType distinguishes the register classes the encoder and ModR/M
// logic care about. The codec does not discriminate operand width —
// 8/16/32, XMM/YMM/etc. are out of scope; the only class modeled is the
// 64-bit general-purpose bank, whose low-three-bit encodings (RSP, RBP)
// drive ModR/M/SIB special-casing.
type RegisterType int

const (
	Register64 RegisterType = iota // 64-bit general-purpose register
)

// Register names a general-purpose register by its 4-bit encoding.
type Register struct {
	Name     string
	Type     RegisterType
	Encoding byte
}

// General Purpose Registers - 64-bit. RSP.Encoding and RBP.Encoding (4 and
// 5) are referenced directly by decode.go and encode.go: a low-three-bits
// RSP base forces a SIB byte, and a low-three-bits RBP base at mod=0
// collides with the RIPREL addressing form.
var (
	RAX = Register{Name: "rax", Type: Register64, Encoding: 0}
	RCX = Register{Name: "rcx", Type: Register64, Encoding: 1}
	RDX = Register{Name: "rdx", Type: Register64, Encoding: 2}
	RBX = Register{Name: "rbx", Type: Register64, Encoding: 3}
	RSP = Register{Name: "rsp", Type: Register64, Encoding: 4}
	RBP = Register{Name: "rbp", Type: Register64, Encoding: 5}
	RSI = Register{Name: "rsi", Type: Register64, Encoding: 6}
	RDI = Register{Name: "rdi", Type: Register64, Encoding: 7}
	R8  = Register{Name: "r8", Type: Register64, Encoding: 8}
	R9  = Register{Name: "r9", Type: Register64, Encoding: 9}
	R10 = Register{Name: "r10", Type: Register64, Encoding: 10}
	R11 = Register{Name: "r11", Type: Register64, Encoding: 11}
	R12 = Register{Name: "r12", Type: Register64, Encoding: 12}
	R13 = Register{Name: "r13", Type: Register64, Encoding: 13}
	R14 = Register{Name: "r14", Type: Register64, Encoding: 14}
	R15 = Register{Name: "r15", Type: Register64, Encoding: 15}
)
