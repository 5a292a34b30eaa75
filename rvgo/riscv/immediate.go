package riscv

import "fmt"

// ImmKind selects how the immediate bits of an instruction word are laid out.
type ImmKind uint8

const (
	ImmI ImmKind = iota
	ImmS
	ImmB
	ImmU
	ImmJ
)

func (k ImmKind) String() string {
	switch k {
	case ImmI:
		return "I"
	case ImmS:
		return "S"
	case ImmB:
		return "B"
	case ImmU:
		return "U"
	case ImmJ:
		return "J"
	default:
		return fmt.Sprintf("ImmKind(%d)", uint8(k))
	}
}

// Immediate bit groups. The ISA stores the immediate bits in the rd, funct3, rs1, rs2 and funct7
// fields, scrambled per format so that the sign bit is always instruction bit 31.
// Each group is named after the instruction bits it occupies.

func im7(w uint32) uint32 { return Rd(w) & 1 }
func withIm7(w, v uint32) uint32 {
	return WithRd(w, Rd(w)&^1|v&1)
}

func im8to11(w uint32) uint32 { return Rd(w) >> 1 }
func withIm8to11(w, v uint32) uint32 {
	return WithRd(w, Rd(w)&1|(v&0xF)<<1)
}

func im12to19(w uint32) uint32 { return Rs1(w)<<3 | Funct3(w) }
func withIm12to19(w, v uint32) uint32 {
	return WithRs1(WithFunct3(w, v&0x7), (v>>3)&0x1F)
}

func im20(w uint32) uint32 { return Rs2(w) & 1 }
func withIm20(w, v uint32) uint32 {
	return WithRs2(w, Rs2(w)&^1|v&1)
}

func im21to24(w uint32) uint32 { return Rs2(w) >> 1 }
func withIm21to24(w, v uint32) uint32 {
	return WithRs2(w, Rs2(w)&1|(v&0xF)<<1)
}

func im25to30(w uint32) uint32 { return Funct7(w) & 0x3F }
func withIm25to30(w, v uint32) uint32 {
	return WithFunct7(w, Funct7(w)&0x40|v&0x3F)
}

func im31(w uint32) uint32 { return Funct7(w) >> 6 }
func withIm31(w, v uint32) uint32 {
	return WithFunct7(w, Funct7(w)&0x3F|(v&1)<<6)
}

// signFill sets every bit from bit upwards if the sign group is set.
func signFill(imm uint32, sign uint32, bit uint32) uint32 {
	if sign == 0 {
		return imm
	}
	return imm | ^uint32(0)<<bit
}

// Immediate extracts the sign-extended immediate of w, laid out as the given kind.
func Immediate(w uint32, kind ImmKind) uint32 {
	switch kind {
	case ImmI:
		imm := im20(w) | im21to24(w)<<1 | im25to30(w)<<5
		return signFill(imm, im31(w), 11)
	case ImmS:
		imm := im7(w) | im8to11(w)<<1 | im25to30(w)<<5
		return signFill(imm, im31(w), 11)
	case ImmB:
		// bit 0 is always zero: branch targets are 2-byte aligned
		imm := im8to11(w)<<1 | im25to30(w)<<5 | im7(w)<<11
		return signFill(imm, im31(w), 12)
	case ImmU:
		// lower 12 bits are always zero
		return im12to19(w)<<12 | im20(w)<<20 | im21to24(w)<<21 | im25to30(w)<<25 | im31(w)<<31
	case ImmJ:
		// bit 0 is always zero
		imm := im21to24(w)<<1 | im25to30(w)<<5 | im20(w)<<11 | im12to19(w)<<12
		return signFill(imm, im31(w), 20)
	default:
		panic(fmt.Errorf("unknown immediate kind: %d", kind))
	}
}

// WithImmediate stores imm into w as the given kind.
// Only the bits owned by that kind are changed; bits of imm the kind cannot hold are dropped.
func WithImmediate(w uint32, imm uint32, kind ImmKind) uint32 {
	switch kind {
	case ImmI:
		w = withIm20(w, imm)
		w = withIm21to24(w, imm>>1)
		w = withIm25to30(w, imm>>5)
		return withIm31(w, imm>>11)
	case ImmS:
		w = withIm7(w, imm)
		w = withIm8to11(w, imm>>1)
		w = withIm25to30(w, imm>>5)
		return withIm31(w, imm>>11)
	case ImmB:
		w = withIm8to11(w, imm>>1)
		w = withIm25to30(w, imm>>5)
		w = withIm7(w, imm>>11)
		return withIm31(w, imm>>12)
	case ImmU:
		w = withIm12to19(w, imm>>12)
		w = withIm20(w, imm>>20)
		w = withIm21to24(w, imm>>21)
		w = withIm25to30(w, imm>>25)
		return withIm31(w, imm>>31)
	case ImmJ:
		w = withIm21to24(w, imm>>1)
		w = withIm25to30(w, imm>>5)
		w = withIm20(w, imm>>11)
		w = withIm12to19(w, imm>>12)
		return withIm31(w, imm>>20)
	default:
		panic(fmt.Errorf("unknown immediate kind: %d", kind))
	}
}

func fitsSigned(v uint32, bits uint32) bool {
	s := int64(int32(v))
	return s >= -(1<<(bits-1)) && s < 1<<(bits-1)
}

// ImmRepresentable reports whether imm survives a WithImmediate / Immediate round trip for kind.
func ImmRepresentable(imm uint32, kind ImmKind) bool {
	switch kind {
	case ImmI, ImmS:
		return fitsSigned(imm, 12)
	case ImmB:
		return imm&1 == 0 && fitsSigned(imm, 13)
	case ImmU:
		return imm&0xFFF == 0
	case ImmJ:
		return imm&1 == 0 && fitsSigned(imm, 21)
	default:
		return false
	}
}

