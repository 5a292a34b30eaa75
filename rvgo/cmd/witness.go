package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"

	"github.com/ethereum-optimism/rvmini/rvgo/fast"
)

type WitnessOutput struct {
	Witness   hexutil.Bytes `json:"witness"`
	StateHash common.Hash   `json:"stateHash"`
}

func Witness(ctx *cli.Context) error {
	input := ctx.Path(WitnessInputFlag.Name)
	output := ctx.Path(WitnessOutputFlag.Name)
	state, err := jsonutil.LoadJSON[fast.VMState](input)
	if err != nil {
		return fmt.Errorf("invalid input state (%v): %w", input, err)
	}
	if state.Memory == nil {
		state.Memory = fast.NewMemory()
	}
	witness := state.EncodeWitness()
	stateHash, err := witness.StateHash()
	if err != nil {
		return fmt.Errorf("failed to compute witness hash: %w", err)
	}
	if output != "" {
		witnessOutput := &WitnessOutput{
			Witness:   hexutil.Bytes(witness),
			StateHash: stateHash,
		}
		if err := jsonutil.WriteJSON(output, witnessOutput, OutFilePerm); err != nil {
			return fmt.Errorf("failed to write witness output %w", err)
		}
	}
	_, _ = fmt.Fprintln(ctx.App.Writer, stateHash.Hex())
	return nil
}

var WitnessCommand = &cli.Command{
	Name:        "witness",
	Usage:       "Compute the witness and state hash of a JSON state",
	Description: "Compute the witness and state hash of a JSON state. The statehash is written to stdout",
	Action:      Witness,
	Flags: []cli.Flag{
		WitnessInputFlag,
		WitnessOutputFlag,
	},
}
