package fast

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/rvmini/rvgo/riscv"
)

const (
	fibHaltPC  = 40
	fibOneAddr = 44
	fibNAddr   = 48
)

// fibProgram computes fib(n) into x5, with fib(0) = fib(1) = 1, and ends up at fibHaltPC.
var fibProgram = []riscv.Instruction{
	riscv.Lw{Rd: 5, Rs1: 0, Imm: fibOneAddr}, // a = 1
	riscv.Lw{Rd: 6, Rs1: 0, Imm: fibOneAddr}, // b = 1
	riscv.Lw{Rd: 7, Rs1: 0, Imm: fibNAddr},   // i = n
	riscv.Lw{Rd: 1, Rs1: 0, Imm: fibOneAddr}, // x1 = 1
	riscv.Beq{Rs1: 0, Rs2: 7, Imm: fibHaltPC - 16},
	riscv.Add{Rd: 4, Rs1: 5, Rs2: 6}, // t = a + b
	riscv.Add{Rd: 5, Rs1: 0, Rs2: 6}, // a = b
	riscv.Add{Rd: 6, Rs1: 0, Rs2: 4}, // b = t
	riscv.Sub{Rd: 7, Rs1: 7, Rs2: 1}, // i--
	riscv.Jal{Rd: 0, Imm: 16 - 36},
}

func fibState(n uint32) *VMState {
	state := NewVMState()
	loadProgram(state.Memory, 0, fibProgram...)
	state.Memory.SetWord(fibOneAddr, 1)
	state.Memory.SetWord(fibNAddr, n)
	return state
}

func fib(n uint32) uint32 {
	a, b := uint32(1), uint32(1)
	for i := uint32(0); i < n; i++ {
		a, b = b, a+b
	}
	return a
}

func TestRunFibonacci(t *testing.T) {
	for n := uint32(0); n < 10; n++ {
		t.Run(fmt.Sprintf("fib(%d)", n), func(t *testing.T) {
			m := NewMachine(fibState(n))
			err := m.Run(func(pc uint32) bool { return pc == fibHaltPC })
			require.NoError(t, err)
			require.Equal(t, fib(n), m.Registers().Get(5))
			require.Equal(t, uint32(fibHaltPC), m.State().PC)
			require.Equal(t, uint64(5+6*n), m.State().Step, "4 loads, 6 instructions per iteration, one taken branch")
		})
	}
}

func TestRunWrapping(t *testing.T) {
	m := NewMachine(fibState(9), WithWrappingArithmetic())
	require.NoError(t, m.Run(func(pc uint32) bool { return pc == fibHaltPC }))
	require.Equal(t, uint32(55), m.Registers().Get(5))
}

func TestRunError(t *testing.T) {
	m := newTestMachine(t, riscv.Add{Rd: 1, Rs1: 0, Rs2: 0})
	m.Memory().SetWord(4, 0x7F)
	err := m.Run(func(pc uint32) bool { return false })
	require.ErrorIs(t, err, riscv.ErrInvalidInstruction)
	require.Equal(t, uint32(4), m.State().PC)
	require.Equal(t, uint64(1), m.State().Step)
}

func TestRunStopsAfterTick(t *testing.T) {
	m := newTestMachine(t, riscv.Add{Rd: 1, Rs1: 0, Rs2: 0})
	calls := 0
	err := m.Run(func(pc uint32) bool {
		calls++
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, uint64(1), m.State().Step)
}

func TestDecodeFailureLeavesState(t *testing.T) {
	m := newTestMachine(t)
	m.Memory().SetWord(0, 0x7F)
	m.Registers().Set(3, 0xabcdef)
	pre := m.State().EncodeWitness()

	err := m.Tick()
	require.ErrorIs(t, err, riscv.ErrInvalidInstruction)
	require.ErrorContains(t, err, "pc 0x00000")
	require.Equal(t, pre, m.State().EncodeWitness())
	require.Equal(t, uint64(0), m.State().Step)
}

func TestFetchOutOfRange(t *testing.T) {
	m := newTestMachine(t)
	m.State().PC = MemorySize - 2
	err := m.Tick()
	require.ErrorIs(t, err, ErrAddressRange)
	require.Equal(t, uint32(MemorySize-2), m.State().PC)
}

func TestStepWitness(t *testing.T) {
	store := riscv.Sw{Rs1: 1, Rs2: 2, Imm: 8}
	m := newTestMachine(t, store, riscv.Add{Rd: 3, Rs1: 1, Rs2: 2})
	m.Registers().Set(1, 0x300)
	m.Registers().Set(2, 0x55)
	pre := m.State().EncodeWitness()

	wit, err := m.Step(true)
	require.NoError(t, err)
	require.Equal(t, pre, wit.State)
	require.Equal(t, riscv.Encode(store), wit.Instr)
	require.Equal(t, []uint32{0x308}, wit.MemAccess)

	wit, err = m.Step(true)
	require.NoError(t, err)
	require.Empty(t, wit.MemAccess, "add does not access memory")

	wit, err = m.Step(false)
	require.Nil(t, wit)
	require.Error(t, err, "word at pc 8 is zero and does not decode")
}

func TestStepTraceLog(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(log.LogfmtHandlerWithLevel(&buf, log.LevelTrace))
	state := NewVMState()
	loadProgram(state.Memory, 0, riscv.Add{Rd: 4, Rs1: 5, Rs2: 6})
	m := NewMachine(state, WithLogger(logger))
	require.NoError(t, m.Tick())
	require.Contains(t, buf.String(), "Executed instruction")
	require.Contains(t, buf.String(), "add x4, x5, x6")
}

func TestLoadMemory(t *testing.T) {
	mem := NewMemory()
	loadProgram(mem, 0, riscv.Lw{Rd: 2, Rs1: 0, Imm: 0x10})
	mem.SetWord(0x10, 1234)

	m := NewMachine(NewVMState())
	m.LoadMemory(mem)
	require.Same(t, mem, m.Memory())
	require.NoError(t, m.Tick())
	require.Equal(t, uint32(1234), m.Registers().Get(2))
}

func BenchmarkFibonacci(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := NewMachine(fibState(30))
		if err := m.Run(func(pc uint32) bool { return pc == fibHaltPC }); err != nil {
			b.Fatal(err)
		}
	}
}
