package riscv

// Opcodes of the supported instruction classes.
const (
	OpLoad   = 0x03 // 000_0011: LW
	OpStore  = 0x23 // 010_0011: SW
	OpOp     = 0x33 // 011_0011: ADD, SUB
	OpBranch = 0x63 // 110_0011: BEQ, BNE
	OpJalr   = 0x67 // 110_0111: JALR
	OpJal    = 0x6F // 110_1111: JAL
)

// funct3 / funct7 selectors.
const (
	Funct3Add  = 0x0 // 000
	Funct3Word = 0x2 // 010 = LW/SW width
	Funct3Jalr = 0x0 // 000
	Funct3Beq  = 0x0 // 000
	Funct3Bne  = 0x1 // 001

	Funct7Add = 0x00 // 0000000
	Funct7Sub = 0x20 // 0100000
)

const (
	RegCount = 32
	// InstrSize is the size of an instruction word in bytes, and the PC bump of non-branching instructions.
	InstrSize = 4
)
