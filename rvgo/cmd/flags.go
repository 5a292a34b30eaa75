package cmd

import (
	"os"

	"github.com/urfave/cli/v2"
)

var OutFilePerm = os.FileMode(0o755)

var (
	LoadImagePathFlag = &cli.PathFlag{
		Name:      "path",
		Usage:     "Path to the raw big-endian program image, loaded at address 0",
		TakesFile: true,
		Required:  true,
	}
	LoadImageOutFlag = &cli.PathFlag{
		Name:     "output",
		Usage:    "Output path to write JSON state to. State is dumped to stdout if set to '-'.",
		Value:    "state.json",
		Required: false,
	}
	LoadImagePCFlag = &cli.UintFlag{
		Name:  "pc",
		Usage: "Initial program counter",
		Value: 0,
	}

	RunInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "path of input JSON state.",
		TakesFile: true,
		Value:     "state.json",
	}
	RunOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "path of output JSON state. Not written if empty, use - to write to Stdout.",
		TakesFile: true,
		Value:     "out.json",
	}
	RunProofAtFlag = &cli.GenericFlag{
		Name:  "proof-at",
		Usage: "step pattern to output proof at: 'never' (default), 'always', '=123' at exactly step 123, '%123' for every 123 steps",
		Value: new(StepMatcherFlag),
	}
	RunProofFmtFlag = &cli.StringFlag{
		Name:  "proof-fmt",
		Usage: "format for proof data output file names. Proof data is written to stdout if -.",
		Value: "proof-%d.json",
	}
	RunSnapshotAtFlag = &cli.GenericFlag{
		Name:  "snapshot-at",
		Usage: "step pattern to output snapshots at: 'never' (default), 'always', '=123' at exactly step 123, '%123' for every 123 steps",
		Value: new(StepMatcherFlag),
	}
	RunSnapshotFmtFlag = &cli.StringFlag{
		Name:  "snapshot-fmt",
		Usage: "format for snapshot output file names.",
		Value: "state-%d.json",
	}
	RunStopAtFlag = &cli.GenericFlag{
		Name:  "stop-at",
		Usage: "step pattern to stop at: 'never' (default), 'always', '=123' at exactly step 123, '%123' for every 123 steps",
		Value: new(StepMatcherFlag),
	}
	RunHaltPCFlag = &cli.UintFlag{
		Name:  "halt-pc",
		Usage: "stop once an instruction leaves the program counter at this address",
	}
	RunInfoAtFlag = &cli.GenericFlag{
		Name:  "info-at",
		Usage: "step pattern to print info at: 'never' (default), 'always', '=123' at exactly step 123, '%123' for every 123 steps",
		Value: MustStepMatcherFlag("%100000"),
	}
	RunWrappingFlag = &cli.BoolFlag{
		Name:  "wrapping",
		Usage: "wrap ADD and SUB results on overflow instead of saturating",
	}
	RunPProfCPU = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "enable pprof cpu profiling",
	}
	LogLevelFlag = &cli.StringFlag{
		Name:  "log.level",
		Usage: "log level: trace, debug, info, warn, error or crit",
		Value: "info",
	}

	WitnessInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "path of input JSON state.",
		TakesFile: true,
		Required:  true,
	}
	WitnessOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "path to write witness JSON to, if any.",
		TakesFile: true,
	}

	DisasmInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "path of input JSON state.",
		TakesFile: true,
		Required:  true,
	}
	DisasmStartFlag = &cli.UintFlag{
		Name:  "start",
		Usage: "address of the first word to disassemble. Defaults to the state PC.",
	}
	DisasmCountFlag = &cli.UintFlag{
		Name:  "count",
		Usage: "number of words to disassemble",
		Value: 16,
	}
)
