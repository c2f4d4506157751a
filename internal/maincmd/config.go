package maincmd

import (
	"github.com/caarlos0/env/v6"
)

// RuntimeConfig holds the LOX_* environment toggles that shape VM and GC
// behavior, parsed once per process by loadRuntimeConfig. This mirrors
// clox's build-time DEBUG_* macros (common.h) as runtime flags instead,
// since a single compiled binary here serves every mode.
type RuntimeConfig struct {
	// StressGC forces a full collection before every allocation, the
	// runtime equivalent of clox's DEBUG_STRESS_GC, used to shake out
	// missing GC roots.
	StressGC bool `env:"LOX_STRESS_GC" envDefault:"false"`

	// LogGC prints every allocation and collection phase transition to
	// stderr, the runtime equivalent of clox's DEBUG_LOG_GC.
	LogGC bool `env:"LOX_LOG_GC" envDefault:"false"`

	// TraceExec disassembles and prints every instruction before it runs,
	// the runtime equivalent of clox's DEBUG_TRACE_EXECUTION.
	TraceExec bool `env:"LOX_TRACE_EXEC" envDefault:"false"`

	// TraceScan is parsed from LOX_TRACE_SCAN but nothing reads it: setting
	// it does not print a token trace.
	TraceScan bool `env:"LOX_TRACE_SCAN" envDefault:"false"`
}

// loadRuntimeConfig reads RuntimeConfig from the environment, returning a
// zero-value (all toggles off) config if parsing fails; a malformed LOX_*
// variable shouldn't prevent the interpreter from starting.
func loadRuntimeConfig() RuntimeConfig {
	var cfg RuntimeConfig
	if err := env.Parse(&cfg); err != nil {
		return RuntimeConfig{}
	}
	return cfg
}
