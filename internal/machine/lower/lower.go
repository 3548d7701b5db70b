// Package lower implements the Machine IR Builder's three passes:
// Pass 1 lowers data declarations into struct types and `mk`
// constructors and allocates a NodeDef skeleton per bind; Pass 2
// classifies each node's statefulness and allocates persistent-state
// member slots; Pass 3 emits each non-static node's update function
// body by structural recursion on the desugared Core tree.
//
// Grounded on internal/bytecode/compiler.go's single-pass AST-to-
// bytecode walker, generalized to three cooperating passes since this
// IR's NodeDef metadata must settle (Pass 2) before any update-function
// body can be emitted (Pass 3).
package lower

import (
	"github.com/curtismckinney/necronomicon/internal/core"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/machine"
	"github.com/curtismckinney/necronomicon/internal/machine/prim"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// Lowerer carries the cross-pass state: the program being built, the
// process-wide symbol table (mutated in place — State/SlotIndex/
// CurrentNode fields record what each pass has settled so far; only the
// declare pass, the machine-prim initializer, and this package ever
// write to it), and the cached prim handles.
type Lowerer struct {
	Prog     *machine.Program
	Table    *symtable.Table
	Interner *intern.Table
	Handles  *prim.Handles

	// dataStructs caches the one shared struct type per data
	// declaration: one struct type with A+1 members, shared across every
	// constructor of that data type.
	dataStructs map[symtable.ID]*machine.Type

	// allNodes lists every NodeDef skeleton Pass 1 created, top-level and
	// nested, in creation order — Pass 2/3 iterate this rather than
	// re-deriving it from the program's top-level Nodes vector (which
	// only holds top-level entries).
	allNodes []*machine.NodeDef

	// bodies maps a NodeDef to the Core expression remaining after its
	// own lambda layers were stripped in Pass 1 (the expression Pass 2/3
	// actually traverse).
	bodies map[*machine.NodeDef]core.Node

	// appSlots records, per application site whose callee is a stateful
	// function, the persistent-closure member slot Pass 2 allocated in
	// the enclosing node for that call site: the app-site is annotated
	// with the chosen slot index.
	appSlots map[*core.App]int
}

func New(prog *machine.Program, table *symtable.Table, interner *intern.Table, handles *prim.Handles) *Lowerer {
	return &Lowerer{
		Prog:        prog,
		Table:       table,
		Interner:    interner,
		Handles:     handles,
		dataStructs: make(map[symtable.ID]*machine.Type),
		bodies:      make(map[*machine.NodeDef]core.Node),
		appSlots:    make(map[*core.App]int),
	}
}

// Run drives all three passes over prog in order, the only entry point
// callers need: Pass 1 must run before Pass 2, which must run before
// Pass 3.
func (l *Lowerer) Run(prog *core.Program) {
	l.pass1(prog)
	l.pass2(prog)
	l.pass3(prog)
}

// nodeOf returns the NodeDef skeleton Pass 1 attached to a bind's
// symbol, or nil if id names something else (a constructor, a plain
// local, an argument).
func (l *Lowerer) nodeOf(id symtable.ID) *machine.NodeDef {
	if id == 0 {
		return nil
	}
	n, _ := l.Table.Get(id).CurrentNode.(*machine.NodeDef)
	return n
}

// unwrapLambdas peels successive core.Lambda layers off n, returning the
// parameter symbol/def pairs (in source order) and the innermost
// non-Lambda body, copying argument names forward from successive
// lambda layers.
func unwrapLambdas(n core.Node) (syms []intern.Symbol, defs []symtable.ID, body core.Node) {
	for {
		lam, ok := n.(*core.Lambda)
		if !ok {
			return syms, defs, n
		}
		syms = append(syms, lam.ParamSym)
		defs = append(defs, lam.ParamDef)
		n = lam.Body
	}
}
