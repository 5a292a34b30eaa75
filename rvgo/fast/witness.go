package fast

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type StateWitness []byte

func (sw StateWitness) StateHash() (common.Hash, error) {
	if len(sw) != StateWitnessSize {
		return common.Hash{}, fmt.Errorf("invalid witness length. Got %d, expected %d", len(sw), StateWitnessSize)
	}
	return crypto.Keccak256Hash(sw), nil
}

type StepWitness struct {
	// encoded pre-state witness
	State StateWitness

	// Instr is the raw instruction word executed by the step
	Instr uint32

	// MemAccess lists the effective addresses of data loads and stores, in execution order
	MemAccess []uint32
}
