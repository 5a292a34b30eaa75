package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"

	"github.com/ethereum-optimism/rvmini/rvgo/fast"
	"github.com/ethereum-optimism/rvmini/rvgo/riscv"
)

func Disasm(ctx *cli.Context) error {
	input := ctx.Path(DisasmInputFlag.Name)
	state, err := jsonutil.LoadJSON[fast.VMState](input)
	if err != nil {
		return fmt.Errorf("invalid input state (%v): %w", input, err)
	}
	if state.Memory == nil {
		state.Memory = fast.NewMemory()
	}
	addr := uint64(state.PC)
	if ctx.IsSet(DisasmStartFlag.Name) {
		addr = uint64(ctx.Uint(DisasmStartFlag.Name))
	}
	w := ctx.App.Writer
	for i := uint(0); i < ctx.Uint(DisasmCountFlag.Name); i++ {
		if addr+riscv.InstrSize > fast.MemorySize {
			break
		}
		word := state.Memory.GetWord(uint32(addr))
		line := "invalid"
		if ins, err := riscv.Decode(word); err == nil {
			line = ins.String()
		}
		if _, err := fmt.Fprintf(w, "%05x: %08x  %s\n", addr, word, line); err != nil {
			return err
		}
		addr += riscv.InstrSize
	}
	return nil
}

var DisasmCommand = &cli.Command{
	Name:        "disasm",
	Usage:       "Disassemble instruction words of a JSON state",
	Description: "Disassemble instruction words of a JSON state, starting at the state PC unless --start is given",
	Action:      Disasm,
	Flags: []cli.Flag{
		DisasmInputFlag,
		DisasmStartFlag,
		DisasmCountFlag,
	},
}
