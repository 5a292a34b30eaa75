package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"

	"github.com/ethereum-optimism/rvmini/rvgo/fast"
)

// LoadImage reads a raw memory image into a fresh state. The image is copied to address 0.
func LoadImage(ctx *cli.Context) error {
	imagePath := ctx.Path(LoadImagePathFlag.Name)
	pc := ctx.Uint(LoadImagePCFlag.Name)
	if pc >= fast.MemorySize {
		return fmt.Errorf("initial pc 0x%x outside of address space", pc)
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image %q: %w", imagePath, err)
	}
	defer f.Close()

	state := fast.NewVMState()
	if err := state.Memory.SetMemoryRange(0, f); err != nil {
		return fmt.Errorf("failed to load image %q: %w", imagePath, err)
	}
	state.PC = uint32(pc)

	return jsonutil.WriteJSON(ctx.Path(LoadImageOutFlag.Name), state, OutFilePerm)
}

var LoadImageCommand = &cli.Command{
	Name:        "load-image",
	Usage:       "Load a raw program image into JSON state",
	Description: "Load a raw big-endian program image into JSON state, starting at address 0",
	Action:      LoadImage,
	Flags: []cli.Flag{
		LoadImagePathFlag,
		LoadImageOutFlag,
		LoadImagePCFlag,
	},
}
