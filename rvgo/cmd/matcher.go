package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum-optimism/rvmini/rvgo/fast"
)

type StepMatcher func(st *fast.VMState) bool

// StepMatcherFlag is a cli.Generic flag value that selects steps by pattern:
// "never", "always", "=N" for exactly step N, "%N" for every N steps.
type StepMatcherFlag struct {
	repr    string
	matcher StepMatcher
}

func MustStepMatcherFlag(pattern string) *StepMatcherFlag {
	out := new(StepMatcherFlag)
	if err := out.Set(pattern); err != nil {
		panic(err)
	}
	return out
}

// Set replaces the matcher. On error the previous pattern is kept.
func (m *StepMatcherFlag) Set(value string) error {
	var matcher StepMatcher
	switch {
	case value == "" || value == "never":
		matcher = func(st *fast.VMState) bool {
			return false
		}
	case value == "always":
		matcher = func(st *fast.VMState) bool {
			return true
		}
	case strings.HasPrefix(value, "="):
		when, err := strconv.ParseUint(value[1:], 0, 64)
		if err != nil {
			return fmt.Errorf("failed to parse step number: %w", err)
		}
		matcher = func(st *fast.VMState) bool {
			return st.Step == when
		}
	case strings.HasPrefix(value, "%"):
		when, err := strconv.ParseUint(value[1:], 0, 64)
		if err != nil {
			return fmt.Errorf("failed to parse step interval number: %w", err)
		}
		if when == 0 {
			return fmt.Errorf("step interval must be non-zero")
		}
		matcher = func(st *fast.VMState) bool {
			return st.Step%when == 0
		}
	default:
		return fmt.Errorf("unrecognized step matcher: %q", value)
	}
	m.repr = value
	m.matcher = matcher
	return nil
}

func (m *StepMatcherFlag) String() string {
	return m.repr
}

func (m *StepMatcherFlag) Matcher() StepMatcher {
	if m.matcher == nil { // Set(value) is not called for omitted inputs, default to never matching.
		return func(st *fast.VMState) bool {
			return false
		}
	}
	return m.matcher
}

func (m *StepMatcherFlag) Clone() any {
	var out StepMatcherFlag
	if err := out.Set(m.repr); err != nil {
		panic(fmt.Errorf("invalid repr: %w", err))
	}
	return &out
}
