package riscv

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var immKinds = []ImmKind{ImmI, ImmS, ImmB, ImmU, ImmJ}

func TestImmediateKnownWords(t *testing.T) {
	cases := []struct {
		name string
		word uint32
		kind ImmKind
		imm  int32
	}{
		{"lw x5, 44(x0)", 0x02C02283, ImmI, 44},
		{"jalr x0, 0(x1)", 0x00008067, ImmI, 0},
		{"sw x6, 8(x2)", 0x00612423, ImmS, 8},
		{"beq x0, x7, 24", 0x00700C63, ImmB, 24},
		{"bne x5, x6, -8", 0xFE629CE3, ImmB, -8},
		{"jal x0, -20", 0xFEDFF06F, ImmJ, -20},
		{"lui x5, 0x12345", 0x123452B7, ImmU, 0x12345000},
		{"lui x5, 0x80000", 0x800002B7, ImmU, -0x80000000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, uint32(c.imm), Immediate(c.word, c.kind))
			require.Equal(t, c.word, WithImmediate(c.word&^ownedBits(c.kind), uint32(c.imm), c.kind))
		})
	}
}

func TestImmediateOwnedBits(t *testing.T) {
	require.Equal(t, uint32(0xFFF0_0000), ownedBits(ImmI))
	require.Equal(t, uint32(0xFE00_0F80), ownedBits(ImmS))
	require.Equal(t, uint32(0xFE00_0F80), ownedBits(ImmB))
	require.Equal(t, uint32(0xFFFF_F000), ownedBits(ImmU))
	require.Equal(t, uint32(0xFFFF_F000), ownedBits(ImmJ))
}

func TestImmediateRoundTrip(t *testing.T) {
	check := func(t *testing.T, v int32, kind ImmKind) {
		require.True(t, ImmRepresentable(uint32(v), kind), "representable %d", v)
		got := Immediate(WithImmediate(0, uint32(v), kind), kind)
		if got != uint32(v) {
			t.Fatalf("%s-type immediate %d (%#034b) decoded as %d (%#034b)", kind, v, uint32(v), int32(got), got)
		}
	}
	t.Run("I", func(t *testing.T) {
		for v := int32(-2048); v < 2048; v++ {
			check(t, v, ImmI)
		}
	})
	t.Run("S", func(t *testing.T) {
		for v := int32(-2048); v < 2048; v++ {
			check(t, v, ImmS)
		}
	})
	t.Run("B", func(t *testing.T) {
		for v := int32(-4096); v < 4096; v += 2 {
			check(t, v, ImmB)
		}
	})
	t.Run("U", func(t *testing.T) {
		for v := uint32(0); v < 1<<20; v++ {
			check(t, int32(v<<12), ImmU)
		}
	})
	t.Run("J", func(t *testing.T) {
		for v := int32(-1 << 20); v < 1<<20; v += 2 {
			check(t, v, ImmJ)
		}
	})
}

func TestWithImmediateKeepsForeignBits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, kind := range immKinds {
		t.Run(kind.String(), func(t *testing.T) {
			owned := ownedBits(kind)
			for i := 0; i < 1000; i++ {
				w := rng.Uint32()
				out := WithImmediate(w, rng.Uint32(), kind)
				require.Equal(t, w&^owned, out&^owned)
			}
		})
	}
}

func TestImmRepresentable(t *testing.T) {
	require.True(t, ImmRepresentable(uint32(0xFFFF_F800), ImmI)) // -2048
	require.False(t, ImmRepresentable(2048, ImmI))
	require.False(t, ImmRepresentable(3, ImmB), "odd branch offset")
	require.True(t, ImmRepresentable(4094, ImmB))
	require.False(t, ImmRepresentable(4096, ImmB))
	require.False(t, ImmRepresentable(0x1001, ImmU))
	require.True(t, ImmRepresentable(0xFFFF_F000, ImmU))
	require.True(t, ImmRepresentable(1<<20-2, ImmJ))
	require.False(t, ImmRepresentable(1<<20, ImmJ))
	require.False(t, ImmRepresentable(0, ImmKind(9)))
}

func FuzzImmediate(f *testing.F) {
	f.Add(uint32(0), uint8(0))
	f.Add(uint32(0xFFFF_FFFF), uint8(4))
	f.Add(uint32(0xFEDFF06F), uint8(4))
	f.Fuzz(func(t *testing.T, w uint32, k uint8) {
		kind := immKinds[int(k)%len(immKinds)]
		imm := Immediate(w, kind)
		require.True(t, ImmRepresentable(imm, kind))
		require.Equal(t, w, WithImmediate(w, imm, kind), "re-encoding must reproduce the word")
		require.Equal(t, imm, Immediate(WithImmediate(0, imm, kind), kind))
	})
}

// ownedBits returns the instruction bits that hold the immediate of the given kind.
func ownedBits(kind ImmKind) uint32 {
	return WithImmediate(0, ^uint32(0), kind)
}
