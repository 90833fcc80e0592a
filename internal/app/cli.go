package app

import "github.com/spf13/pflag"

// RegisterFlags registers all CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", "", "Transport type: stdio or sse")
	flags.StringP("host", "H", "", "Host for SSE transport")
	flags.IntP("port", "p", 0, "Port for SSE transport")
	flags.StringP("auth-type", "a", "", "Authentication type: none, basic, or apikey")
	flags.StringP("auth-basic-username", "u", "", "Basic auth username")
	flags.StringP("auth-basic-password", "P", "", "Basic auth password")
	flags.StringSliceP("auth-api-keys", "k", nil, "API keys (comma-separated)")
	flags.Int("project-capacity", 0, "Maximum projects held open at once")
	flags.Int("max-chunk-bytes", 0, "Target semantic chunk size in bytes")
	flags.Int("peek-max-lines", 0, "Maximum lines per peek window")
	flags.Uint64("repl-max-steps", 0, "Starlark execution step ceiling")
	flags.Bool("evaluator-enabled", false, "Enable the sub-query evaluator backend")
	flags.String("evaluator-base-url", "", "Evaluator backend base URL")
	flags.String("evaluator-model", "", "Evaluator model name")
	flags.Duration("evaluator-timeout", 0, "Per-subcall evaluator timeout")
	flags.Int("evaluator-parallelism", 0, "Concurrent subcalls per batch")
	flags.Int("evaluator-max-depth", 0, "Recursive subcall depth ceiling")
}
