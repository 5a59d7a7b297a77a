package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/kr/pretty"
	"golang.org/x/sync/errgroup"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `baffl - an ahead-of-time compiler for the baffl language

Usage:
    baffl <command> [arguments]

Commands:
    compile <file> -o <out>   Compile a .baffl file (-vo also prints the IR)
    check <file>...           Parse, lower and verify .baffl files
    watch <file> -o <out>     Recompile a .baffl file whenever it changes
    help                      Show this help message

The output extension picks the artifact: .s is assembly, .o is an object
file, anything else is QBE IL. Assembly and objects need qbe and cc.

Examples:
    baffl compile hello.baffl -o hello.o
    baffl compile hello.baffl -vo hello.ssa
    baffl check examples/*.baffl
    baffl watch hello.baffl -o hello.s

Use "baffl <command> -h" for more information about a command.
`)
}

// parseInterspersed parses flags that may appear before or after the
// positional arguments, as in "compile in.baffl -o out".
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func compileCommand(args []string, logger *log.Logger) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	output := fs.String("o", "", "Output file path")
	verboseOutput := fs.String("vo", "", "Output file path; also print the IR before and after the passes")
	predeclare := fs.Bool("predeclare", false, "Allow calls to functions declared later in the file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: baffl compile [-predeclare] <file> -[v]o <output>\n")
		fmt.Fprintf(os.Stderr, "Compile a .baffl file\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	files, err := parseInterspersed(fs, args)
	if err != nil {
		os.Exit(1)
	}
	if len(files) != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}
	if (*output == "") == (*verboseOutput == "") {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one of -o and -vo\n")
		fs.Usage()
		os.Exit(1)
	}

	opts := compileOptions{Predeclare: *predeclare}
	outputFile := *output
	if *verboseOutput != "" {
		outputFile = *verboseOutput
		opts.Verbose = os.Stdout
		opts.Logger = logger
	}

	if err := compileFile(context.Background(), files[0], outputFile, opts); err != nil {
		logger.Printf("%s: %v", files[0], err)
		os.Exit(1)
	}
}

func checkCommand(args []string, logger *log.Logger) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Dump the AST of each file")
	predeclare := fs.Bool("predeclare", false, "Allow calls to functions declared later in the file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: baffl check [-v] [-predeclare] <file>...\n")
		fmt.Fprintf(os.Stderr, "Parse, lower and verify .baffl files\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	files, err := parseInterspersed(fs, args)
	if err != nil {
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Error: expected at least one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	if !checkFiles(files, compileOptions{Predeclare: *predeclare}, *verbose, os.Stdout, logger) {
		os.Exit(1)
	}
}

// checkFiles checks every file concurrently and reports each result. It
// returns false if any file failed.
func checkFiles(files []string, opts compileOptions, verbose bool, stdout io.Writer, logger *log.Logger) bool {
	type result struct {
		dump string
		err  error
	}
	results := make([]result, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			src, err := os.ReadFile(file)
			if err != nil {
				results[i].err = err
				return nil
			}
			prog, err := checkSource(src, opts)
			results[i].err = err
			if verbose && prog != nil {
				results[i].dump = pretty.Sprint(prog)
			}
			return nil
		})
	}
	g.Wait()

	ok := true
	for i, file := range files {
		if results[i].dump != "" {
			fmt.Fprintf(stdout, "%s: AST:\n%s\n", file, results[i].dump)
		}
		if err := results[i].err; err != nil {
			logger.Printf("%s: %v", file, err)
			ok = false
			continue
		}
		fmt.Fprintf(stdout, "%s: no errors found\n", file)
	}
	return ok
}

func watchCommand(args []string, logger *log.Logger) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	output := fs.String("o", "", "Output file path")
	predeclare := fs.Bool("predeclare", false, "Allow calls to functions declared later in the file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: baffl watch [-predeclare] <file> -o <output>\n")
		fmt.Fprintf(os.Stderr, "Recompile a .baffl file whenever it changes\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	files, err := parseInterspersed(fs, args)
	if err != nil {
		os.Exit(1)
	}
	if len(files) != 1 || *output == "" {
		fmt.Fprintf(os.Stderr, "Error: expected one file argument and -o\n")
		fs.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	opts := compileOptions{Predeclare: *predeclare}
	if err := watchFile(ctx, files[0], *output, opts, logger); err != nil {
		logger.Printf("%s: %v", files[0], err)
		os.Exit(1)
	}
}
