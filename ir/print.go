package ir

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Fprint writes a human-readable listing of m to w.
func Fprint(w io.Writer, m *Module) error {
	p := &printer{w: w}
	p.printf("; module %s (ir %s)\n", m.Name, m.Version)

	keys := make([]string, 0, len(m.Metadata))
	for k := range m.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.printf("!%s = %q\n", k, m.Metadata[k])
	}

	for _, g := range m.Globals {
		p.printf("%s\n", globalString(g))
	}
	for _, f := range m.Functions {
		p.printf("\n")
		p.function(f)
	}
	return p.err
}

func (m *Module) String() string {
	var sb strings.Builder
	Fprint(&sb, m)
	return sb.String()
}

func (f *Function) String() string {
	var sb strings.Builder
	p := &printer{w: &sb}
	p.function(f)
	return sb.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) function(f *Function) {
	params := make([]string, len(f.Params))
	for i, param := range f.Params {
		params[i] = typed(param)
	}
	header := fmt.Sprintf("define %s @%s(%s)", f.Ret, f.Name, strings.Join(params, ", "))
	if len(f.Attributes) > 0 {
		header += " " + strings.Join(f.Attributes, " ")
	}
	p.printf("%s {\n", header)
	for _, b := range f.Blocks {
		p.printf("%s:\n", b.Label)
		for _, instr := range b.Instrs {
			p.printf("  %s\n", instr)
		}
	}
	p.printf("}\n")
}

func globalString(g *Global) string {
	var sb strings.Builder
	sb.WriteString("@" + g.Name + " = ")
	if g.Private {
		sb.WriteString("private ")
	}
	if g.UnnamedAddr {
		sb.WriteString("unnamed_addr ")
	}
	if g.ReadOnly {
		sb.WriteString("constant ")
	} else {
		sb.WriteString("global ")
	}
	fmt.Fprintf(&sb, "%s c\"", g.Ty)
	for _, c := range g.Data {
		if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, "\\%02X", c)
		}
	}
	sb.WriteString("\"")
	if g.Align > 0 {
		fmt.Fprintf(&sb, ", align %d", g.Align)
	}
	return sb.String()
}
