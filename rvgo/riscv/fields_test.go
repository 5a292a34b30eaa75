package riscv

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	const w = 0x401383B3 // sub x7, x7, x1
	require.Equal(t, uint32(0x33), Opcode(w))
	require.Equal(t, uint32(7), Rd(w))
	require.Equal(t, uint32(0), Funct3(w))
	require.Equal(t, uint32(7), Rs1(w))
	require.Equal(t, uint32(1), Rs2(w))
	require.Equal(t, uint32(0x20), Funct7(w))
}

func TestWithFields(t *testing.T) {
	fields := []struct {
		name  string
		get   func(uint32) uint32
		set   func(uint32, uint32) uint32
		shift uint32
		width uint32
	}{
		{"opcode", Opcode, WithOpcode, 0, 7},
		{"rd", Rd, WithRd, 7, 5},
		{"funct3", Funct3, WithFunct3, 12, 3},
		{"rs1", Rs1, WithRs1, 15, 5},
		{"rs2", Rs2, WithRs2, 20, 5},
		{"funct7", Funct7, WithFunct7, 25, 7},
	}
	rng := rand.New(rand.NewSource(0x5eed))
	for _, f := range fields {
		t.Run(f.name, func(t *testing.T) {
			mask := widthMask(f.width)
			for i := 0; i < 1000; i++ {
				w := rng.Uint32()
				v := rng.Uint32() & mask
				out := f.set(w, v)
				require.Equal(t, v, f.get(out), "field must hold new value")
				require.Equal(t, w&^(mask<<f.shift), out&^(mask<<f.shift), "other bits untouched")
			}
		})
		t.Run(f.name+" masks wide values", func(t *testing.T) {
			out := f.set(0, 0xFFFF_FFFF)
			require.Equal(t, widthMask(f.width)<<f.shift, out)
		})
	}
}

func widthMask(width uint32) uint32 {
	return uint32(1)<<width - 1
}
