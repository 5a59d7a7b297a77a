// Package backend verifies, optimizes and serializes ir modules. Modules
// are written as QBE IL; assembly and object files are produced by the
// external qbe and cc tools.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/baffl-lang/baffl/ir"
)

// AcceptedVersions is the range of IR format versions this backend reads.
const AcceptedVersions = "^1.0"

var accepted = mustConstraint(AcceptedVersions)

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Verify checks the IR format version and the structural well-formedness
// of m.
func Verify(m *ir.Module) error {
	if m.Version == nil || !accepted.Check(m.Version) {
		return fmt.Errorf("unsupported IR version %v (want %s)", m.Version, AcceptedVersions)
	}
	if m.Function(SyscallSymbol) != nil {
		return fmt.Errorf("function @%s clashes with the system call routine", SyscallSymbol)
	}
	return ir.Verify(m)
}

type Options struct {
	// Passes run after verification. Nil means DefaultPasses.
	Passes []Pass

	// QBE and CC name the external tools. Empty means "qbe" and "cc".
	QBE string
	CC  string

	// Dump, if set, receives the module listing after the passes ran.
	Dump io.Writer

	// Logger receives one line per pass and per external command.
	// Nil discards.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Passes == nil {
		o.Passes = DefaultPasses()
	}
	if o.QBE == "" {
		o.QBE = "qbe"
	}
	if o.CC == "" {
		o.CC = "cc"
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return o
}

// Build verifies m, runs the passes and writes output. The extension of
// output picks the artifact:
//
//	.s  assembly, via qbe
//	.o  object file, via qbe and cc -c
//	*   QBE IL
//
// On failure no file is left at output.
func Build(ctx context.Context, m *ir.Module, output string, opts Options) error {
	opts = opts.withDefaults()

	if err := Verify(m); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	for _, p := range opts.Passes {
		opts.Logger.Printf("running pass %s", p.Name())
		p.Run(m)
	}
	if opts.Dump != nil {
		if err := ir.Fprint(opts.Dump, m); err != nil {
			return err
		}
	}

	var il bytes.Buffer
	if err := EmitQBE(&il, m); err != nil {
		return fmt.Errorf("emit: %w", err)
	}

	switch filepath.Ext(output) {
	case ".s":
		return writeAtomic(output, func(tmp string) error {
			return runQBE(ctx, opts, il.Bytes(), tmp)
		})
	case ".o":
		return writeAtomic(output, func(tmp string) error {
			asm := tmp + ".s"
			defer os.Remove(asm)
			if err := runQBE(ctx, opts, il.Bytes(), asm); err != nil {
				return err
			}
			return run(ctx, opts, nil, opts.CC, "-c", "-x", "assembler", "-o", tmp, asm)
		})
	default:
		return writeAtomic(output, func(tmp string) error {
			return os.WriteFile(tmp, il.Bytes(), 0o644)
		})
	}
}

func runQBE(ctx context.Context, opts Options, il []byte, output string) error {
	return run(ctx, opts, il, opts.QBE, "-o", output, "-")
}

// run executes an external tool. Its stderr becomes the error text.
func run(ctx context.Context, opts Options, stdin []byte, name string, args ...string) error {
	opts.Logger.Printf("exec %s %s", name, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// writeAtomic lets produce write a temporary file next to output and moves
// it into place only if produce succeeds.
func writeAtomic(output string, produce func(tmp string) error) error {
	f, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	f.Close()

	if err := produce(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, output); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
