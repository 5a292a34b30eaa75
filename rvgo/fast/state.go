package fast

import (
	"encoding/binary"

	"github.com/ethereum-optimism/rvmini/rvgo/riscv"
)

type VMState struct {
	Memory *Memory `json:"memory"`

	PC uint32 `json:"pc"`

	// Step counts the instructions executed so far.
	Step uint64 `json:"step"`

	Registers Registers `json:"registers"`
}

func NewVMState() *VMState {
	return &VMState{
		Memory: NewMemory(),
	}
}

// StateWitnessSize is the length of an encoded state witness:
// memory root, pc, step and the register file.
const StateWitnessSize = 32 + 4 + 8 + 4*riscv.RegCount

func (state *VMState) EncodeWitness() StateWitness {
	out := make([]byte, 0, StateWitnessSize)
	memRoot := state.Memory.MerkleRoot()
	out = append(out, memRoot[:]...)
	out = binary.BigEndian.AppendUint32(out, state.PC)
	out = binary.BigEndian.AppendUint64(out, state.Step)
	for i := range state.Registers {
		out = binary.BigEndian.AppendUint32(out, state.Registers.Get(riscv.Reg(i)))
	}
	return out
}

// Instr returns the instruction word at the current PC, or 0 if the PC cannot hold a full word.
func (state *VMState) Instr() uint32 {
	if !state.Memory.InRange(state.PC, 4) {
		return 0
	}
	return state.Memory.GetWord(state.PC)
}
