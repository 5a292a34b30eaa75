package riscv

// Bit positions and widths of the canonical sub-fields of an instruction word.
const (
	opcodeShift = 0
	rdShift     = 7
	funct3Shift = 12
	rs1Shift    = 15
	rs2Shift    = 20
	funct7Shift = 25

	opcodeMask = 0x7F
	regMask    = 0x1F
	funct3Mask = 0x7
	funct7Mask = 0x7F
)

func field(w uint32, shift, mask uint32) uint32 {
	return (w >> shift) & mask
}

func withField(w uint32, shift, mask, v uint32) uint32 {
	w &^= mask << shift
	return w | (v&mask)<<shift
}

func Opcode(w uint32) uint32 { return field(w, opcodeShift, opcodeMask) }
func Rd(w uint32) uint32     { return field(w, rdShift, regMask) }
func Funct3(w uint32) uint32 { return field(w, funct3Shift, funct3Mask) }
func Rs1(w uint32) uint32    { return field(w, rs1Shift, regMask) }
func Rs2(w uint32) uint32    { return field(w, rs2Shift, regMask) }
func Funct7(w uint32) uint32 { return field(w, funct7Shift, funct7Mask) }

// The With* mutators replace one sub-field of w. Values wider than the field are masked.

func WithOpcode(w, v uint32) uint32 { return withField(w, opcodeShift, opcodeMask, v) }
func WithRd(w, v uint32) uint32     { return withField(w, rdShift, regMask, v) }
func WithFunct3(w, v uint32) uint32 { return withField(w, funct3Shift, funct3Mask, v) }
func WithRs1(w, v uint32) uint32    { return withField(w, rs1Shift, regMask, v) }
func WithRs2(w, v uint32) uint32    { return withField(w, rs2Shift, regMask, v) }
func WithFunct7(w, v uint32) uint32 { return withField(w, funct7Shift, funct7Mask, v) }
