package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/baffl-lang/baffl/ast"
	"github.com/baffl-lang/baffl/backend"
	"github.com/baffl-lang/baffl/ir"
	"github.com/baffl-lang/baffl/lexer"
	"github.com/baffl-lang/baffl/lower"
	"github.com/baffl-lang/baffl/parser"
)

// compileOptions configure one run of the pipeline.
type compileOptions struct {
	Predeclare bool

	// Verbose receives the module listing before and after the backend
	// passes. Nil disables the listings.
	Verbose io.Writer

	Logger *log.Logger
}

// frontend turns source text into a lowered module. Errors carry the
// stage that produced them.
func frontend(src []byte, opts compileOptions) (ast.Program, *ir.Module, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	m, err := lower.Lower(prog, lower.Config{Predeclare: opts.Predeclare, Logger: opts.Logger})
	if err != nil {
		return prog, nil, fmt.Errorf("lower: %w", err)
	}
	return prog, m, nil
}

// checkSource runs the frontend and verifies the resulting module without
// writing anything.
func checkSource(src []byte, opts compileOptions) (ast.Program, error) {
	prog, m, err := frontend(src, opts)
	if err != nil {
		return prog, err
	}
	if err := backend.Verify(m); err != nil {
		return prog, fmt.Errorf("verify: %w", err)
	}
	return prog, nil
}

// compileFile compiles input into output. On failure output is left
// untouched.
func compileFile(ctx context.Context, input, output string, opts compileOptions) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	_, m, err := frontend(src, opts)
	if err != nil {
		return err
	}

	if opts.Verbose != nil {
		fmt.Fprintf(opts.Verbose, "; before passes\n")
		if err := ir.Fprint(opts.Verbose, m); err != nil {
			return err
		}
		fmt.Fprintf(opts.Verbose, "; after passes\n")
	}
	return backend.Build(ctx, m, output, backend.Options{
		Dump:   opts.Verbose,
		Logger: opts.Logger,
	})
}
