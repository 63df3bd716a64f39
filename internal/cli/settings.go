package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/slotbench/internal/config"
	"github.com/roach88/slotbench/internal/harness"
)

// configKey is the flag annotation naming the config key a flag overrides.
const configKey = "slotbench_config_key"

// bindFlag marks a registered flag as an override for a config key.
// Only flags the user set override the config.
func bindFlag(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, configKey, []string{key})
}

// addBenchFlags registers the trace-shaping flags shared by generate and bench.
func addBenchFlags(fs *pflag.FlagSet) {
	fs.Int("ops", config.DefaultOpsPerWorker, "operations per worker")
	fs.IntSlice("threads", config.DefaultThreads, "worker counts for the built-in scenarios")
	fs.Uint64("seed", config.DefaultSeed, "trace generator seed for the built-in scenarios")
	fs.Int("slots", config.DefaultSlots, "store slots for the built-in scenarios")

	bindFlag(fs, "ops", "bench.ops_per_worker")
	bindFlag(fs, "threads", "bench.threads")
	bindFlag(fs, "seed", "bench.seed")
	bindFlag(fs, "slots", "bench.slots")
}

// loadConfig merges defaults, the --config file, SLOTBENCH_ env vars and
// the flags the user actually set.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (*config.Config, error) {
	overrides, err := flagOverrides(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return config.Load(
		config.WithConfigFile(opts.ConfigFile),
		config.WithOverrides(overrides),
	)
}

func flagOverrides(fs *pflag.FlagSet) (map[string]any, error) {
	out := make(map[string]any)
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKey]
		if err != nil || len(keys) == 0 || !f.Changed {
			return
		}

		var v any
		switch f.Value.Type() {
		case "int":
			v, err = fs.GetInt(f.Name)
		case "intSlice":
			v, err = fs.GetIntSlice(f.Name)
		case "uint64":
			v, err = fs.GetUint64(f.Name)
		case "string":
			v, err = fs.GetString(f.Name)
		default:
			err = fmt.Errorf("unsupported flag type %s", f.Value.Type())
		}
		if err != nil {
			err = fmt.Errorf("flag --%s: %w", f.Name, err)
			return
		}
		out[keys[0]] = v
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// selectScenarios loads scenario files, or builds the built-in suite from
// the config when none are given. File scenarios keep their own threads,
// seed and slots.
func selectScenarios(cfg *config.Config, paths []string) ([]harness.Scenario, error) {
	if len(paths) > 0 {
		return harness.LoadScenarios(paths)
	}

	scenarios := harness.DefaultScenarios(cfg.Bench.OpsPerWorker)
	for i := range scenarios {
		scenarios[i].Threads = append([]int(nil), cfg.Bench.Threads...)
		scenarios[i].Seed = cfg.Bench.Seed
		scenarios[i].Slots = cfg.Bench.Slots
		if err := scenarios[i].Validate(); err != nil {
			return nil, fmt.Errorf("built-in scenario %s: %w", scenarios[i].Name, err)
		}
	}
	return scenarios, nil
}

// newSuite builds a suite from the config. extra options are applied last.
func newSuite(cfg *config.Config, cmd *cobra.Command, opts *RootOptions, recorders []harness.Recorder, extra ...harness.SuiteOption) (*harness.Suite, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	suiteOpts := []harness.SuiteOption{
		harness.WithLogger(newLogger(opts, level, cmd.ErrOrStderr())),
		harness.WithDefaultOps(cfg.Bench.OpsPerWorker),
		harness.WithMaxWorkers(cfg.Bench.MaxWorkers),
		harness.WithTraceDir(cfg.Bench.TraceDir),
		harness.WithRecorder(recorders...),
	}
	suiteOpts = append(suiteOpts, extra...)
	return harness.NewSuite(suiteOpts...), nil
}
