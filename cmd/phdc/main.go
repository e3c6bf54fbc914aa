// Command phdc compiles .phd hardware description source into synthesizable
// SystemVerilog. Its flag-parsing shell follows the reference compiler's
// cmd/mygo/main.go run(args)-returns-error shape, simplified from mygo's
// multi-subcommand dispatch to this project's single-command CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/phdc-lang/phdc/internal/driver"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("phdc", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	outDir := fs.String("o", "../hdl", "output directory")
	verbose := fs.Bool("v", false, "verbose elaboration trace and diagnostics")
	dumpIR := fs.Bool("dump-ir", false, "write a human-readable IR dump alongside the .sv output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: phdc <path> [-o dir] [-v] [--dump-ir]")
		return 2
	}

	opts := driver.Options{DumpIR: *dumpIR, DumpDir: *outDir}
	if *verbose {
		opts.Trace = os.Stderr
	}

	reporter, err := driver.Run(fs.Arg(0), *outDir, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if *verbose || reporter.HasErrors("") {
		reporter.Write(os.Stderr, isTerminal(os.Stderr))
	}
	if reporter.HasErrors("") {
		return 1
	}
	return 0
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
