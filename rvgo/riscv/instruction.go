package riscv

import (
	"errors"
	"fmt"
)

var ErrInvalidInstruction = errors.New("invalid instruction")

// Reg is a register index, 0 to 31.
type Reg uint8

// ToReg converts v to a register index, rejecting values outside the register file.
func ToReg(v uint32) (Reg, error) {
	if v >= RegCount {
		return 0, fmt.Errorf("register index %d out of range", v)
	}
	return Reg(v), nil
}

func (r Reg) Valid() bool { return r < RegCount }

func (r Reg) String() string { return fmt.Sprintf("x%d", uint8(r)) }

// Instruction is one of the supported CPU instructions:
// Add, Sub, Lw, Sw, Jal, Jalr, Beq or Bne.
type Instruction interface {
	// Encode packs the instruction into its 32-bit machine word.
	Encode() uint32
	// Validate checks that registers are in range and the immediate fits the encoding.
	Validate() error
	String() string

	instruction()
}

type Add struct{ Rd, Rs1, Rs2 Reg }

type Sub struct{ Rd, Rs1, Rs2 Reg }

type Lw struct {
	Rd, Rs1 Reg
	Imm     int32
}

type Sw struct {
	Rs1, Rs2 Reg
	Imm      int32
}

type Jal struct {
	Rd  Reg
	Imm int32
}

type Jalr struct {
	Rd, Rs1 Reg
	Imm     int32
}

type Beq struct {
	Rs1, Rs2 Reg
	Imm      int32
}

type Bne struct {
	Rs1, Rs2 Reg
	Imm      int32
}

func (Add) instruction()  {}
func (Sub) instruction()  {}
func (Lw) instruction()   {}
func (Sw) instruction()   {}
func (Jal) instruction()  {}
func (Jalr) instruction() {}
func (Beq) instruction()  {}
func (Bne) instruction()  {}

func encodeR(opcode, funct3, funct7 uint32, rd, rs1, rs2 Reg) uint32 {
	w := WithOpcode(0, opcode)
	w = WithRd(w, uint32(rd))
	w = WithFunct3(w, funct3)
	w = WithRs1(w, uint32(rs1))
	w = WithRs2(w, uint32(rs2))
	return WithFunct7(w, funct7)
}

func encodeI(opcode, funct3 uint32, rd, rs1 Reg, imm int32) uint32 {
	w := WithOpcode(0, opcode)
	w = WithRd(w, uint32(rd))
	w = WithFunct3(w, funct3)
	w = WithRs1(w, uint32(rs1))
	return WithImmediate(w, uint32(imm), ImmI)
}

// encodeS covers both S and B formats, they only differ in the immediate layout.
func encodeS(opcode, funct3 uint32, rs1, rs2 Reg, imm int32, kind ImmKind) uint32 {
	w := WithOpcode(0, opcode)
	w = WithFunct3(w, funct3)
	w = WithRs1(w, uint32(rs1))
	w = WithRs2(w, uint32(rs2))
	return WithImmediate(w, uint32(imm), kind)
}

func encodeJ(opcode uint32, rd Reg, imm int32) uint32 {
	w := WithOpcode(0, opcode)
	w = WithRd(w, uint32(rd))
	return WithImmediate(w, uint32(imm), ImmJ)
}

func (i Add) Encode() uint32 { return encodeR(OpOp, Funct3Add, Funct7Add, i.Rd, i.Rs1, i.Rs2) }
func (i Sub) Encode() uint32 { return encodeR(OpOp, Funct3Add, Funct7Sub, i.Rd, i.Rs1, i.Rs2) }
func (i Lw) Encode() uint32  { return encodeI(OpLoad, Funct3Word, i.Rd, i.Rs1, i.Imm) }
func (i Sw) Encode() uint32  { return encodeS(OpStore, Funct3Word, i.Rs1, i.Rs2, i.Imm, ImmS) }
func (i Jal) Encode() uint32 { return encodeJ(OpJal, i.Rd, i.Imm) }
func (i Jalr) Encode() uint32 {
	return encodeI(OpJalr, Funct3Jalr, i.Rd, i.Rs1, i.Imm)
}
func (i Beq) Encode() uint32 { return encodeS(OpBranch, Funct3Beq, i.Rs1, i.Rs2, i.Imm, ImmB) }
func (i Bne) Encode() uint32 { return encodeS(OpBranch, Funct3Bne, i.Rs1, i.Rs2, i.Imm, ImmB) }

func validate(imm int32, kind ImmKind, regs ...Reg) error {
	for _, r := range regs {
		if !r.Valid() {
			return fmt.Errorf("register index %d out of range", uint8(r))
		}
	}
	if !ImmRepresentable(uint32(imm), kind) {
		return fmt.Errorf("immediate %d not representable as %s-type", imm, kind)
	}
	return nil
}

func (i Add) Validate() error  { return validate(0, ImmI, i.Rd, i.Rs1, i.Rs2) }
func (i Sub) Validate() error  { return validate(0, ImmI, i.Rd, i.Rs1, i.Rs2) }
func (i Lw) Validate() error   { return validate(i.Imm, ImmI, i.Rd, i.Rs1) }
func (i Sw) Validate() error   { return validate(i.Imm, ImmS, i.Rs1, i.Rs2) }
func (i Jal) Validate() error  { return validate(i.Imm, ImmJ, i.Rd) }
func (i Jalr) Validate() error { return validate(i.Imm, ImmI, i.Rd, i.Rs1) }
func (i Beq) Validate() error  { return validate(i.Imm, ImmB, i.Rs1, i.Rs2) }
func (i Bne) Validate() error  { return validate(i.Imm, ImmB, i.Rs1, i.Rs2) }

func (i Add) String() string  { return fmt.Sprintf("add %s, %s, %s", i.Rd, i.Rs1, i.Rs2) }
func (i Sub) String() string  { return fmt.Sprintf("sub %s, %s, %s", i.Rd, i.Rs1, i.Rs2) }
func (i Lw) String() string   { return fmt.Sprintf("lw %s, %d(%s)", i.Rd, i.Imm, i.Rs1) }
func (i Sw) String() string   { return fmt.Sprintf("sw %s, %d(%s)", i.Rs2, i.Imm, i.Rs1) }
func (i Jal) String() string  { return fmt.Sprintf("jal %s, %d", i.Rd, i.Imm) }
func (i Jalr) String() string { return fmt.Sprintf("jalr %s, %d(%s)", i.Rd, i.Imm, i.Rs1) }
func (i Beq) String() string  { return fmt.Sprintf("beq %s, %s, %d", i.Rs1, i.Rs2, i.Imm) }
func (i Bne) String() string  { return fmt.Sprintf("bne %s, %s, %d", i.Rs1, i.Rs2, i.Imm) }

// Encode packs ins into its machine word.
func Encode(ins Instruction) uint32 {
	return ins.Encode()
}

// Decode unpacks a machine word. Words that do not map to a supported
// instruction return an error wrapping ErrInvalidInstruction.
func Decode(w uint32) (Instruction, error) {
	// these fields are ignored if not applicable to the instruction type / opcode
	rd := Reg(Rd(w))
	rs1 := Reg(Rs1(w))
	rs2 := Reg(Rs2(w))
	funct3 := Funct3(w)

	switch Opcode(w) {
	case OpOp:
		if funct3 != Funct3Add {
			break
		}
		switch Funct7(w) {
		case Funct7Add: // 0000000 = ADD
			return Add{Rd: rd, Rs1: rs1, Rs2: rs2}, nil
		case Funct7Sub: // 0100000 = SUB
			return Sub{Rd: rd, Rs1: rs1, Rs2: rs2}, nil
		}
	case OpLoad:
		if funct3 == Funct3Word { // 010 = LW
			return Lw{Rd: rd, Rs1: rs1, Imm: int32(Immediate(w, ImmI))}, nil
		}
	case OpStore:
		if funct3 == Funct3Word { // 010 = SW
			return Sw{Rs1: rs1, Rs2: rs2, Imm: int32(Immediate(w, ImmS))}, nil
		}
	case OpJal:
		return Jal{Rd: rd, Imm: int32(Immediate(w, ImmJ))}, nil
	case OpJalr:
		if funct3 == Funct3Jalr {
			return Jalr{Rd: rd, Rs1: rs1, Imm: int32(Immediate(w, ImmI))}, nil
		}
	case OpBranch:
		imm := int32(Immediate(w, ImmB))
		switch funct3 {
		case Funct3Beq: // 000 = BEQ
			return Beq{Rs1: rs1, Rs2: rs2, Imm: imm}, nil
		case Funct3Bne: // 001 = BNE
			return Bne{Rs1: rs1, Rs2: rs2, Imm: imm}, nil
		}
	}
	return nil, fmt.Errorf("%w 0x%08x (opcode %07b, funct3 %03b, funct7 %07b)",
		ErrInvalidInstruction, w, Opcode(w), funct3, Funct7(w))
}
