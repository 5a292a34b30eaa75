package fast

import "github.com/ethereum-optimism/rvmini/rvgo/riscv"

// Registers is the general purpose register file. Register 0 is hardwired to zero.
// Register indices are taken modulo riscv.RegCount.
type Registers [riscv.RegCount]uint32

// Get reads register i. Register 0 always reads zero, even if a loaded state carries another value.
func (r *Registers) Get(i riscv.Reg) uint32 {
	i &= riscv.RegCount - 1
	if i == 0 {
		return 0
	}
	return r[i]
}

// Set writes v to register i. Writes to register 0 are dropped.
func (r *Registers) Set(i riscv.Reg, v uint32) {
	i &= riscv.RegCount - 1
	if i == 0 {
		return
	}
	r[i] = v
}
