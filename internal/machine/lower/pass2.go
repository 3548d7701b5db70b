package lower

import (
	"fmt"

	"github.com/curtismckinney/necronomicon/internal/core"
	"github.com/curtismckinney/necronomicon/internal/machine"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// pass2 classifies every node's statefulness and allocates persistent
// member slots for captured outer-scope references and stateful-callee
// closures. Classification and capture allocation are mutually
// dependent (a capture can only be recognized once the referenced node
// is known to be stateful, and a node only becomes stateful once it has
// captured something), so this runs as a bounded fixed-point: each round
// reclassifies every node from its current Members/ArgNames count, then
// re-walks every node's body looking for newly-recognizable captures.
// Real mutual recursion in this compiler's test programs bottoms
// out within two or three rounds; the cap below is a backstop, not a
// claim of general convergence for arbitrarily deep indirection.
func (l *Lowerer) pass2(prog *core.Program) {
	l.seedSelfRecursion(prog)

	const maxRounds = 8
	for round := 0; round < maxRounds; round++ {
		for _, nd := range l.allNodes {
			l.classify(nd)
		}
		changed := false
		for _, nd := range l.allNodes {
			before := len(nd.Members)
			l.captureScope(l.bodies[nd], nd)
			if len(nd.Members) != before {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	for _, nd := range l.allNodes {
		l.classify(nd)
	}

	for _, nd := range l.allNodes {
		if nd.Outer != nil {
			continue
		}
		if nd.State == symtable.StateStateful || nd.State == symtable.StateConstant {
			l.synthesizeStruct(nd)
			g := machine.GlobalValue(nd.TypeName, machine.PointerType(nd.StructT))
			nd.Global = &g
			l.Prog.AddGlobal(nd.Global)
		}
	}
}

// seedSelfRecursion gives every top-level bind that refers to itself or
// to a dependency-analysis group-mate (mutual recursion, same
// DeclarationGroup) one persistent "previous value" slot before
// classification runs, so that self/mutually-recursive bindings start
// out stateful instead of never bootstrapping past constant/pointwise
// (the capture rules only propagate statefulness from an already-
// stateful node; something has to seed the first one). This does not
// attempt every recursive shape's exact persistent-slot count (see
// DESIGN.md Open Question on that) — it seeds exactly one slot per
// recursive binding, the minimum a self-referential recurrence needs to
// remember its own prior value.
func (l *Lowerer) seedSelfRecursion(prog *core.Program) {
	for _, decl := range prog.Decls() {
		bind, ok := decl.(*core.Bind)
		if !ok {
			continue
		}
		nd := l.nodeOf(bind.Def)
		if nd == nil || bind.Group == 0 {
			continue
		}
		if l.referencesGroup(l.bodies[nd], bind.Group) {
			l.allocMember(nd)
		}
	}
}

func (l *Lowerer) referencesGroup(n core.Node, group symtable.GroupID) bool {
	found := false
	core.Walk(n, func(cn core.Node) {
		v, ok := cn.(*core.Var)
		if !ok || v.IsCon {
			return
		}
		if l.Table.Get(v.Ref).Group == group {
			found = true
		}
	})
	return found
}

func (l *Lowerer) classify(nd *machine.NodeDef) {
	switch {
	case len(nd.Members) == 0 && len(nd.ArgNames) == 0:
		nd.State = symtable.StateConstant
	case len(nd.Members) == 0 && len(nd.ArgNames) > 0:
		nd.State = symtable.StatePointwise
	default:
		nd.State = symtable.StateStateful
	}
}

// synthesizeStruct builds nd's own struct type: NecroData, the node's
// value type, then one member per captured/closure slot: NecroData,
// value type, member 0, member 1, and so on.
func (l *Lowerer) synthesizeStruct(nd *machine.NodeDef) *machine.Type {
	if nd.StructT != nil {
		return nd.StructT
	}
	members := []*machine.Type{l.Handles.NecroData, nd.ValueType}
	for _, slot := range nd.Members {
		members = append(members, slot.Type)
	}
	name := l.Interner.Intern(fmt.Sprintf("struct$%s", l.Interner.MustLookup(nd.TypeName.ID)))
	l.Prog.AddStruct(&machine.StructDef{Name: name, Members: members})
	nd.StructT = machine.StructType(name, members)
	return nd.StructT
}

// allocMember appends a fresh Poly*-typed persistent slot to nd and
// returns its struct index (member slots start at 2: 0 is NecroData, 1
// is the node's own value, per synthesizeStruct's layout).
func (l *Lowerer) allocMember(nd *machine.NodeDef) int {
	idx := 2 + len(nd.Members)
	nd.Members = append(nd.Members, machine.Slot{Type: l.Handles.PolyPtr, Index: idx})
	return idx
}

// captureScope walks n (nd's own body, not descending into nested
// Lets' bound expressions — those belong to their own NodeDef's scope)
// looking for variable references and stateful-function applications
// that require nd to capture a persistent slot.
func (l *Lowerer) captureScope(n core.Node, nd *machine.NodeDef) {
	if n == nil {
		return
	}
	switch t := n.(type) {
	case *core.App:
		head, args := unwindApp(t)
		captured := false
		if hv, ok := head.(*core.Var); ok && !hv.IsCon {
			if callee := l.nodeOf(hv.Ref); callee != nil && callee != nd && callee.FnType != nil && callee.State == symtable.StateStateful {
				if _, seen := l.appSlots[t]; !seen {
					l.appSlots[t] = l.allocMember(nd)
				}
				captured = true
			}
		}
		if !captured {
			l.captureScope(head, nd)
		}
		for _, a := range args {
			l.captureScope(a, nd)
		}

	case *core.Lambda:
		l.captureScope(t.Body, nd)

	case *core.Let:
		// Nested binds are their own scope (walked independently via
		// l.bodies); only the continuation shares nd's scope.
		l.captureScope(t.Body, nd)

	case *core.Case:
		l.captureScope(t.Scrutinee, nd)
		for _, alt := range t.Alts {
			l.captureScope(alt.LitEq, nd)
			l.captureScope(alt.Body, nd)
		}

	case *core.Var:
		l.maybeCaptureVar(t, nd)

	case *core.Lit:
		// leaf
	}
}

func (l *Lowerer) maybeCaptureVar(v *core.Var, nd *machine.NodeDef) {
	if v.IsCon {
		return
	}
	ref := l.nodeOf(v.Ref)
	if ref == nil || ref == nd || ref.State != symtable.StateStateful {
		return
	}
	rec := l.Table.Get(v.Ref)
	if rec.SlotIndex == 0 {
		rec.SlotIndex = l.allocMember(nd)
	}
}

// unwindApp flattens a curried application chain into its head and
// left-to-right argument list.
func unwindApp(n *core.App) (head core.Node, args []core.Node) {
	for {
		args = append([]core.Node{n.Arg}, args...)
		if inner, ok := n.Fn.(*core.App); ok {
			n = inner
			continue
		}
		return n.Fn, args
	}
}
