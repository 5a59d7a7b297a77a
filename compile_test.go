package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/baffl-lang/baffl/ir"
	"github.com/baffl-lang/baffl/lexer"
	"github.com/baffl-lang/baffl/lower"
	"github.com/baffl-lang/baffl/parser"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	be.Err(t, os.WriteFile(path, []byte(src), 0o644), nil)
	return path
}

func TestFrontendStages(t *testing.T) {
	tests := []struct {
		src    string
		prefix string
	}{
		{"function main() { let x = $; }", "parse: lex error"},
		{"function main() { let x = 1 }", "parse: parse error"},
		{"function main() { x = 1; }", "lower: unknown variable"},
	}

	for _, test := range tests {
		_, _, err := frontend([]byte(test.src), compileOptions{})
		be.Err(t, err, test.prefix)
		be.True(t, strings.HasPrefix(err.Error(), test.prefix))
	}
}

func TestFrontendErrorTypes(t *testing.T) {
	_, _, err := frontend([]byte(`function main() { let s = "open; }`), compileOptions{})
	var lexErr *lexer.Error
	be.True(t, errors.As(err, &lexErr))

	_, _, err = frontend([]byte("function main( {}"), compileOptions{})
	var parseErr *parser.Error
	be.True(t, errors.As(err, &parseErr))

	_, _, err = frontend([]byte("function main() { let x = 1; x = 2; }"), compileOptions{})
	var scopeErr *lower.ScopeError
	be.True(t, errors.As(err, &scopeErr))
	be.Err(t, err, lower.ErrImmutableAssignment)

	_, err = checkSource([]byte("function main(): i32 { return true; }"), compileOptions{})
	var verifyErr *ir.VerificationError
	be.True(t, errors.As(err, &verifyErr))
	be.True(t, strings.HasPrefix(err.Error(), "verify: "))
}

func TestFrontendPredeclare(t *testing.T) {
	src := []byte("function main() { later(); } function later() {}")

	_, _, err := frontend(src, compileOptions{})
	be.Err(t, err, lower.ErrUnknownFunction)

	_, err = checkSource(src, compileOptions{Predeclare: true})
	be.Err(t, err, nil)
}

func TestCompileFileWritesIL(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "main.baffl", "function main(): i32 { return 3; }")
	output := filepath.Join(dir, "main.ssa")

	err := compileFile(context.Background(), input, output, compileOptions{})
	be.Err(t, err, nil)

	il, err := os.ReadFile(output)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(il), "export function w $main() {"))
	be.True(t, strings.Contains(string(il), "\tret 3\n"))
}

func TestCompileFileVerbose(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "main.baffl", "function main() { if (true) { return; } }")
	output := filepath.Join(dir, "main.ssa")

	var listing, logs bytes.Buffer
	opts := compileOptions{Verbose: &listing, Logger: log.New(&logs, "", 0)}
	err := compileFile(context.Background(), input, output, opts)
	be.Err(t, err, nil)

	text := listing.String()
	before := strings.Index(text, "; before passes")
	after := strings.Index(text, "; after passes")
	be.True(t, before >= 0)
	be.True(t, after > before)
	be.Equal(t, strings.Count(text, "define i32 @main()"), 2)
	be.True(t, strings.Contains(logs.String(), "lowered function main"))
	be.True(t, strings.Contains(logs.String(), "running pass remove-unreachable"))
}

func TestCompileFileFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "bad.baffl", "function main() { return nope; }")
	output := filepath.Join(dir, "bad.ssa")

	err := compileFile(context.Background(), input, output, compileOptions{})
	be.Err(t, err, `unknown variable "nope"`)

	_, err = os.Stat(output)
	be.True(t, os.IsNotExist(err))

	err = compileFile(context.Background(), filepath.Join(dir, "missing.baffl"), output, compileOptions{})
	be.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.baffl", "function main(): i32 { return 0; }")
	bad := writeSource(t, dir, "bad.baffl", "function main(): i32 { let x = 1; x = 2; return x; }")
	other := writeSource(t, dir, "other.baffl", "function f(a: i32): i32 { return a; }")

	var stdout, logs bytes.Buffer
	logger := log.New(&logs, "baffl: ", 0)
	ok := checkFiles([]string{good, bad, other}, compileOptions{}, false, &stdout, logger)

	be.True(t, !ok)
	be.Equal(t, stdout.String(), good+": no errors found\n"+other+": no errors found\n")
	be.Equal(t, logs.String(), "baffl: "+bad+`: lower: assignment to immutable variable "x" in function main`+"\n")
}

func TestCheckFilesVerbose(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "main.baffl", "function main() {}")

	var stdout bytes.Buffer
	ok := checkFiles([]string{file}, compileOptions{}, true, &stdout, log.New(io.Discard, "", 0))

	be.True(t, ok)
	be.True(t, strings.Contains(stdout.String(), file+": AST:\n"))
	be.True(t, strings.Contains(stdout.String(), `Name:`))
	be.True(t, strings.Contains(stdout.String(), `"main"`))
}

func TestParseInterspersed(t *testing.T) {
	tests := []struct {
		args       []string
		files      []string
		output     string
		predeclare bool
	}{
		{[]string{"in.baffl", "-o", "out.s"}, []string{"in.baffl"}, "out.s", false},
		{[]string{"-o", "out.s", "in.baffl"}, []string{"in.baffl"}, "out.s", false},
		{[]string{"-predeclare", "in.baffl", "-o", "out.o"}, []string{"in.baffl"}, "out.o", true},
		{[]string{"a.baffl", "b.baffl"}, []string{"a.baffl", "b.baffl"}, "", false},
	}

	for _, test := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		output := fs.String("o", "", "")
		predeclare := fs.Bool("predeclare", false, "")

		files, err := parseInterspersed(fs, test.args)
		be.Err(t, err, nil)
		be.Equal(t, files, test.files)
		be.Equal(t, *output, test.output)
		be.Equal(t, *predeclare, test.predeclare)
	}
}

func TestWatchRecompiles(t *testing.T) {
	dir := t.TempDir()
	input := writeSource(t, dir, "main.baffl", "function main(): i32 { return 1; }")
	output := filepath.Join(dir, "main.ssa")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, input, output, compileOptions{}, log.New(io.Discard, "", 0))
	}()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if data, err := os.ReadFile(output); err == nil && strings.Contains(string(data), want) {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatalf("output never contained %q", want)
	}

	waitFor("\tret 1\n")
	be.Err(t, os.WriteFile(input, []byte("function main(): i32 { return 2; }"), 0o644), nil)
	waitFor("\tret 2\n")

	cancel()
	be.Err(t, <-done, nil)
}

func TestPipelineScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"shadowing with different types", `
function main() {
	let x = 42;
	if (true) {
		let x = true;
		if (x) {
			let x = "inner";
		}
	}
	let y = x + 1;
}`},
		{"parameter shadowing", `
function test(x: i32): i32 {
	if (x == 42) {
		let x = 99;
	}
	return x;
}
function main(): i32 { return test(42); }`},
		{"nested loops", `
function main(): i32 {
	var total = 0;
	var i = 0;
	while (i < 3) {
		var j = 0;
		while (j < 3) {
			total = total + i % 2;
			j = j + 1;
		}
		i = i + 1;
	}
	return total;
}`},
		{"loop exits through return", `
function find(limit: i32): i32 {
	var i = 0;
	while (i <= limit) {
		if (i == 7) {
			return i;
		}
		i = i + 1;
	}
	return 0 - 1;
}`},
		{"boolean parameters and returns", `
function both(a: bool, b: bool): bool {
	if (a) {
		return b;
	}
	return false;
}
function main(): i32 {
	if (both(true, 1 < 2)) {
		return 1;
	}
	return 0;
}`},
		{"nested calls", `
function add(a: i32, b: i32): i32 { return a + b; }
function twice(n: i32): i32 { return add(n, n); }
function main(): i32 { return add(twice(2), twice(add(1, 1))); }`},
		{"void functions", `
function nothing() {}
function early(n: i32) {
	if (n == 0) {
		return;
	}
	nothing();
}
function main() { early(1); }`},
		{"wide integers", `
function same(n: i64): i64 { return n; }
function pass(n: i64): i64 { return same(n); }`},
		{"printing", `
import print;
import toString;
function main(): i32 {
	var i = 0;
	while (i < 2) {
		print("line\n");
		print(toString(i));
		i = i + 1;
	}
	return 0;
}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, m, err := frontend([]byte(test.src), compileOptions{})
			be.Err(t, err, nil)
			be.Err(t, ir.Verify(m), nil)

			output := filepath.Join(t.TempDir(), "out.ssa")
			input := writeSource(t, t.TempDir(), "in.baffl", test.src)
			be.Err(t, compileFile(context.Background(), input, output, compileOptions{}), nil)
		})
	}
}
