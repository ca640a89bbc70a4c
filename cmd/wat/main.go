// Command wat parses a single .wat module and invokes one exported
// function with integer arguments, printing its results.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	wat "github.com/go-wat/wat"
	"github.com/go-wat/wat/internal/logging"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr, os.Args[1:]))
}

func doMain(stdout, stderr *os.File, args []string) int {
	flags := flag.NewFlagSet("wat", flag.ContinueOnError)
	flags.SetOutput(stderr)
	verbose := flags.Bool("v", false, "enable debug logging for every pipeline stage")
	fn := flags.String("fn", "", "exported function to invoke")
	argsCSV := flags.String("args", "", "comma-separated i64-bit-pattern arguments")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 || *fn == "" {
		fmt.Fprintln(stderr, "usage: wat -fn <export> [-args a,b,c] <file.wat>")
		return 2
	}

	source, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg := wat.NewRuntimeConfig()
	if *verbose {
		cfg = cfg.WithLogger(zap.NewExample(), logging.ScopeAll)
	}
	r := wat.NewRuntime(cfg)

	mod, err := r.Instantiate(flags.Arg(0), source)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	callArgs, err := parseArgs(*argsCSV)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	results, err := mod.Call(*fn, callArgs...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, r := range results {
		fmt.Fprintln(stdout, int64(r))
	}
	return 0
}

func parseArgs(csv string) ([]uint64, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	out := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", p, err)
		}
		out[i] = uint64(v)
	}
	return out, nil
}
