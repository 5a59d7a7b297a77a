package backend

import "github.com/baffl-lang/baffl/ir"

// Pass transforms a verified module in place. A pass must keep the
// module valid.
type Pass interface {
	Name() string
	Run(m *ir.Module)
}

func DefaultPasses() []Pass {
	return []Pass{RemoveUnreachable{}}
}

// RemoveUnreachable drops blocks that cannot be reached from their
// function's entry block.
type RemoveUnreachable struct{}

func (RemoveUnreachable) Name() string { return "remove-unreachable" }

func (RemoveUnreachable) Run(m *ir.Module) {
	for _, f := range m.Functions {
		entry := f.Entry()
		if entry == nil {
			continue
		}

		reached := map[*ir.Block]bool{entry: true}
		work := []*ir.Block{entry}
		for len(work) > 0 {
			b := work[len(work)-1]
			work = work[:len(work)-1]
			term := b.Terminator()
			if term == nil {
				continue
			}
			for _, succ := range term.Successors() {
				if !reached[succ] {
					reached[succ] = true
					work = append(work, succ)
				}
			}
		}

		kept := f.Blocks[:0]
		for _, b := range f.Blocks {
			if reached[b] {
				kept = append(kept, b)
			}
		}
		f.Blocks = kept
	}
}
