package lower

import (
	"fmt"

	"github.com/curtismckinney/necronomicon/internal/core"
	"github.com/curtismckinney/necronomicon/internal/machine"
	"github.com/curtismckinney/necronomicon/internal/machine/build"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// pass1 lowers data declarations into struct types and mk constructors,
// and allocates a NodeDef skeleton per bind.
func (l *Lowerer) pass1(prog *core.Program) {
	for _, decl := range prog.Decls() {
		switch d := decl.(type) {
		case *core.DataDecl:
			l.lowerDataDecl(d)
		case *core.Bind:
			nd, body, _ := l.makeNodeSkeleton(d, nil)
			l.recurseExpr(body, nd)
		}
	}
}

// lowerDataDecl allocates the one shared struct type for d (header plus
// the max constructor arity's worth of polymorphic slots) and emits a
// mk function per constructor.
func (l *Lowerer) lowerDataDecl(d *core.DataDecl) {
	maxArity := 0
	for _, c := range d.Constructors {
		if c.Arity > maxArity {
			maxArity = c.Arity
		}
	}
	members := make([]*machine.Type, maxArity+1)
	members[0] = l.Handles.NecroData
	for i := 1; i <= maxArity; i++ {
		members[i] = l.Handles.PolyPtr
	}
	name := l.Interner.Intern("struct$" + l.Interner.MustLookup(d.Sym.ID))
	structT := machine.StructType(name, members)
	l.Prog.AddStruct(&machine.StructDef{Name: name, Members: members})
	l.dataStructs[d.Def] = structT

	for _, c := range d.Constructors {
		params := make([]*machine.Type, c.Arity)
		for i := range params {
			params[i] = l.Handles.PolyPtr
		}
		conName := l.Interner.MustLookup(c.Sym.ID)
		fn := machine.NewFnDef(l.Interner.Intern("mk@"+conName), params, machine.PointerType(structT), machine.FnUser)
		b := build.New(fn, l.Interner)
		ptr := b.Nalloc(structT, len(members))
		b.StoreIntoTag(machine.U32Value(uint32(c.Tag)), ptr)
		for i := 0; i < c.Arity; i++ {
			arg := machine.ParamValue(fn.Name, i, l.Handles.PolyPtr)
			b.StoreIntoSlot(arg, ptr, i+1)
		}
		for i := c.Arity + 1; i <= maxArity; i++ {
			b.StoreIntoSlot(machine.NullPtrValue(l.Handles.PolyPtr), ptr, i)
		}
		b.Return(ptr)
		l.Prog.AddFunc(fn)

		rec := l.Table.Get(c.Def)
		rec.IsConstructor = true
		rec.Arity = c.Arity
		rec.ConstructorTag = c.Tag
		rec.CurrentNode = fn
	}
}

// makeNodeSkeleton allocates an initial NodeDef for bind: binding name,
// synthesized node-type name, and argument names copied from successive
// lambda layers. ValueType/FnType stand in for the inferencer's
// annotation: since no external inferencer runs here, every node's
// value is uniformly typed Poly* (see DESIGN.md Open Question on the
// absent monomorphizer).
func (l *Lowerer) makeNodeSkeleton(bind *core.Bind, outer *machine.NodeDef) (*machine.NodeDef, core.Node, []symtable.ID) {
	argSyms, argDefs, body := unwrapLambdas(bind.Expr)

	var fnType *machine.Type
	if len(argSyms) > 0 {
		params := make([]*machine.Type, len(argSyms))
		for i := range params {
			params[i] = l.Handles.PolyPtr
		}
		fnType = machine.FunctionType(params, l.Handles.PolyPtr)
	}

	typeName := l.Interner.Intern(fmt.Sprintf("Node$%s", l.Interner.MustLookup(bind.Sym.ID)))
	nd := &machine.NodeDef{
		BindingName: bind.Sym,
		TypeName:    typeName,
		ValueType:   l.Handles.PolyPtr,
		FnType:      fnType,
		ArgNames:    argSyms,
		ArgDefs:     argDefs,
		Outer:       outer,
	}

	rec := l.Table.Get(bind.Def)
	rec.CurrentNode = nd

	if outer == nil {
		l.Prog.AddNode(nd)
	}
	l.allNodes = append(l.allNodes, nd)
	l.bodies[nd] = body

	return nd, body, argDefs
}

// recurseExpr walks n looking for nested Let-bound binds, giving each its
// own NodeDef skeleton linked to outer via Outer, recursing into let,
// lambda, app, and case so nested binds also get skeletons.
func (l *Lowerer) recurseExpr(n core.Node, outer *machine.NodeDef) {
	if n == nil {
		return
	}
	switch t := n.(type) {
	case *core.App:
		l.recurseExpr(t.Fn, outer)
		l.recurseExpr(t.Arg, outer)

	case *core.Lambda:
		l.recurseExpr(t.Body, outer)

	case *core.Let:
		for _, bind := range t.Binds {
			nd2, body2, _ := l.makeNodeSkeleton(bind, outer)
			l.recurseExpr(body2, nd2)
		}
		l.recurseExpr(t.Body, outer)

	case *core.Case:
		l.recurseExpr(t.Scrutinee, outer)
		for _, alt := range t.Alts {
			l.recurseExpr(alt.LitEq, outer)
			l.recurseExpr(alt.Body, outer)
		}

	case *core.Var, *core.Lit:
		// leaves: no nested binds possible

	default:
		// DataCon/Type/ListCons/DataDecl/Bind/CaseAlt never appear as a
		// bind's body directly; nothing further to recurse into.
	}
}
