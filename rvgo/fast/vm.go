package fast

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/ethereum-optimism/rvmini/rvgo/riscv"
)

var ErrAddressRange = errors.New("address out of range")

func addSaturating(x, y uint32) uint32 {
	sum, carry := bits.Add32(x, y, 0)
	if carry != 0 {
		return math.MaxUint32
	}
	return sum
}

func subSaturating(x, y uint32) uint32 {
	diff, borrow := bits.Sub32(x, y, 0)
	if borrow != 0 {
		return 0
	}
	return diff
}

func (m *Machine) add(x, y uint32) uint32 {
	if m.wrapping {
		return x + y
	}
	return addSaturating(x, y)
}

func (m *Machine) sub(x, y uint32) uint32 {
	if m.wrapping {
		return x - y
	}
	return subSaturating(x, y)
}

func (m *Machine) loadWord(addr uint32) (uint32, error) {
	if !m.state.Memory.InRange(addr, 4) {
		return 0, fmt.Errorf("load at 0x%08x: %w", addr, ErrAddressRange)
	}
	m.trackMemAccess(addr)
	return m.state.Memory.GetWord(addr), nil
}

func (m *Machine) storeWord(addr uint32, v uint32) error {
	if !m.state.Memory.InRange(addr, 4) {
		return fmt.Errorf("store at 0x%08x: %w", addr, ErrAddressRange)
	}
	m.trackMemAccess(addr)
	m.state.Memory.SetWord(addr, v)
	return nil
}

// Execute applies ins to the machine state.
// Register writes go through the register file, so writes to x0 are dropped.
// The PC stays within the 20 bit address space. On error the PC is not modified, and
// only a JALR with an out of range target has a side effect: its link register write.
func (m *Machine) Execute(ins riscv.Instruction) error {
	if ins == nil {
		return fmt.Errorf("%w: nil instruction", riscv.ErrInvalidInstruction)
	}
	if err := ins.Validate(); err != nil {
		return fmt.Errorf("%w: %v", riscv.ErrInvalidInstruction, err)
	}
	s := m.state
	regs := &s.Registers
	pc := s.PC
	next := (pc + riscv.InstrSize) & AddrMask

	switch ins := ins.(type) {
	case riscv.Add:
		regs.Set(ins.Rd, m.add(regs.Get(ins.Rs1), regs.Get(ins.Rs2)))
		s.PC = next
	case riscv.Sub:
		regs.Set(ins.Rd, m.sub(regs.Get(ins.Rs1), regs.Get(ins.Rs2)))
		s.PC = next
	case riscv.Lw:
		v, err := m.loadWord(regs.Get(ins.Rs1) + uint32(ins.Imm))
		if err != nil {
			return err
		}
		regs.Set(ins.Rd, v)
		s.PC = next
	case riscv.Sw:
		if err := m.storeWord(regs.Get(ins.Rs1)+uint32(ins.Imm), regs.Get(ins.Rs2)); err != nil {
			return err
		}
		s.PC = next
	case riscv.Jal:
		regs.Set(ins.Rd, next)
		s.PC = (pc + uint32(ins.Imm)) & AddrMask // signed offset, two's complement wraps
	case riscv.Jalr:
		// the link is written first: with rd == rs1 the target is computed from the link value.
		// rd keeps the link even if the target is out of range.
		regs.Set(ins.Rd, next)
		target := (regs.Get(ins.Rs1) + uint32(ins.Imm)) &^ 1 // least significant bit is set to 0
		if target > AddrMask {
			return fmt.Errorf("jalr target 0x%08x: %w", target, ErrAddressRange)
		}
		s.PC = target
	case riscv.Beq:
		if regs.Get(ins.Rs1) == regs.Get(ins.Rs2) {
			s.PC = (pc + uint32(ins.Imm)) & AddrMask
		} else {
			s.PC = next
		}
	case riscv.Bne:
		if regs.Get(ins.Rs1) != regs.Get(ins.Rs2) {
			s.PC = (pc + uint32(ins.Imm)) & AddrMask
		} else {
			s.PC = next
		}
	default:
		return fmt.Errorf("%w: unsupported instruction %T", riscv.ErrInvalidInstruction, ins)
	}
	return nil
}
