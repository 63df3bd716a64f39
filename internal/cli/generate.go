package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/slotbench/internal/trace"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	OutDir string
}

// GeneratedTrace describes one written trace file.
type GeneratedTrace struct {
	Scenario string `json:"scenario"`
	Worker   int    `json:"worker"`
	Path     string `json:"path"`
	Ops      int    `json:"ops"`
}

// GenerateResult lists every trace file written.
type GenerateResult struct {
	Dir    string           `json:"dir"`
	Traces []GeneratedTrace `json:"traces"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [scenario-file...]",
		Short: "Write operation trace files",
		Long: `Generate one trace file per worker for each scenario.

Files are named <prefix><worker>.txt and hold one operation per line:
"read <slot>", "write <slot> <value>" or "string". Without scenario
files the built-in Specific, Equal and Random scenarios are used.

Examples:
  slotbench generate --out ./traces
  slotbench generate --ops 1000 --threads 1,2,4 --out ./traces
  slotbench generate ./scenarios/hot.yaml --out ./traces`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "output directory")
	addBenchFlags(cmd.Flags())

	return cmd
}

func runGenerate(opts *GenerateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	scenarios, err := selectScenarios(cfg, paths)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScenario, "failed to load scenarios", err)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeTrace, "failed to create output directory", err)
	}

	suite, err := newSuite(cfg, cmd, opts.RootOptions, nil)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	result := GenerateResult{Dir: opts.OutDir, Traces: []GeneratedTrace{}}
	for i := range scenarios {
		sc := &scenarios[i]
		seqs, ops, err := suite.Sequences(sc)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeScenario,
				fmt.Sprintf("scenario %q", sc.Name), err)
		}
		files, err := trace.WriteFiles(opts.OutDir, sc.Prefix(), seqs)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeTrace, "failed to write traces", err)
		}
		for w, path := range files {
			result.Traces = append(result.Traces, GeneratedTrace{
				Scenario: sc.Name,
				Worker:   w,
				Path:     path,
				Ops:      ops,
			})
		}
		formatter.VerboseLog("%s: %d trace(s) of %d ops", sc.Name, len(files), ops)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	for _, t := range result.Traces {
		fmt.Fprintf(formatter.Writer, "%s\t%s\t%d ops\n", t.Scenario, t.Path, t.Ops)
	}
	return nil
}
