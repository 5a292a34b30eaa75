package fast

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/rvmini/rvgo/riscv"
)

type Option func(m *Machine)

// WithWrappingArithmetic makes ADD and SUB wrap around on overflow, as the ISA specifies,
// instead of the default saturating behavior.
func WithWrappingArithmetic() Option {
	return func(m *Machine) {
		m.wrapping = true
	}
}

// WithLogger sets the logger that receives a trace record per executed instruction.
func WithLogger(l log.Logger) Option {
	return func(m *Machine) {
		m.log = l
	}
}

// Machine executes instructions against a VMState, one per tick.
// A Machine is not safe for concurrent use.
type Machine struct {
	state *VMState

	wrapping bool
	log      log.Logger

	memProofEnabled bool
	memAccess       []uint32
}

func NewMachine(state *VMState, opts ...Option) *Machine {
	m := &Machine{
		state: state,
		log:   log.Root(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() *VMState {
	return m.state
}

func (m *Machine) Registers() *Registers {
	return &m.state.Registers
}

func (m *Machine) Memory() *Memory {
	return m.state.Memory
}

// LoadMemory replaces the machine memory wholesale, e.g. with a pre-assembled program image.
func (m *Machine) LoadMemory(mem *Memory) {
	m.state.Memory = mem
}

// Step runs a single instruction. With proof enabled, the returned witness holds
// the pre-state, the executed instruction word and the data addresses it accessed.
// On error the PC and step counter are left unmodified, see Execute for the one register side effect.
func (m *Machine) Step(proof bool) (wit *StepWitness, err error) {
	m.memProofEnabled = proof
	m.memAccess = m.memAccess[:0]

	if proof {
		wit = &StepWitness{
			State: m.state.EncodeWitness(), // we need the pre-state as wit-ness
		}
	}

	pc := m.state.PC
	if !m.state.Memory.InRange(pc, riscv.InstrSize) {
		return nil, fmt.Errorf("fetch at pc 0x%05x: %w", pc, ErrAddressRange)
	}
	instr := m.state.Memory.GetWord(pc)
	ins, err := riscv.Decode(instr)
	if err != nil {
		return nil, fmt.Errorf("decode at pc 0x%05x: %w", pc, err)
	}
	if err := m.Execute(ins); err != nil {
		return nil, fmt.Errorf("execute %q at pc 0x%05x: %w", ins, pc, err)
	}
	m.state.Step++
	m.log.Trace("Executed instruction", "step", m.state.Step, "pc", pc, "insn", ins, "next", m.state.PC)

	if proof {
		wit.Instr = instr
		wit.MemAccess = append([]uint32(nil), m.memAccess...)
	}
	return wit, nil
}

// Tick fetches, decodes and executes exactly one instruction.
func (m *Machine) Tick() error {
	_, err := m.Step(false)
	return err
}

// Run ticks until the until predicate holds for the PC after a successful tick,
// or returns the first error. There is no iteration bound.
func (m *Machine) Run(until func(pc uint32) bool) error {
	for {
		if err := m.Tick(); err != nil {
			return err
		}
		if until(m.state.PC) {
			return nil
		}
	}
}

// trackMemAccess remembers the effective address of a data access, if proofs are enabled.
func (m *Machine) trackMemAccess(effAddr uint32) {
	if !m.memProofEnabled {
		return
	}
	m.memAccess = append(m.memAccess, effAddr)
}
