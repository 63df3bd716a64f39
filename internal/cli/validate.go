package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/slotbench/internal/harness"
)

// ValidationError is one invalid scenario file.
type ValidationError struct {
	File    string `json:"file"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ScenarioInfo summarizes a valid scenario.
type ScenarioInfo struct {
	File    string `json:"file"`
	Name    string `json:"name"`
	Hash    string `json:"hash"`
	Threads []int  `json:"threads"`
	Shapes  int    `json:"shapes"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Scenarios []ScenarioInfo    `json:"scenarios,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file>...",
		Short: "Validate scenario files without running them",
		Long: `Validate YAML or CUE scenario files.

Checks that every file parses, has no unknown fields, and describes a
usable mix: at least one shape, non-negative weights with a positive
total, and read/write slots inside the store.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var result ValidationResult
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("file not found: %s", path), nil)
			}
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "cannot read scenario file", err)
		}

		formatter.VerboseLog("Validating %s", path)
		sc, err := harness.LoadScenario(path)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				File:    path,
				Message: err.Error(),
				Code:    ErrCodeScenario,
			})
			continue
		}

		// Hashed with the declared trace length; zero stands for the
		// suite default.
		hash, err := sc.Hash(sc.OpsPerWorker)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to hash scenario", err)
		}
		result.Scenarios = append(result.Scenarios, ScenarioInfo{
			File:    path,
			Name:    sc.Name,
			Hash:    hash,
			Threads: sc.Threads,
			Shapes:  len(sc.Mix),
		})
	}

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}

	result.Valid = true
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ All scenarios valid (%d)\n", len(result.Scenarios))
	return nil
}

// outputValidationErrors reports every invalid file.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "%s\n  %s: %s\n\n", e.File, e.Code, e.Message)
	}
	return failure
}
