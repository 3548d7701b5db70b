package lower

import (
	"testing"

	"github.com/curtismckinney/necronomicon/internal/core"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/machine"
	"github.com/curtismckinney/necronomicon/internal/machine/prim"
	"github.com/curtismckinney/necronomicon/internal/scope"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

func cons(head core.Node, tail core.Node) *core.ListCons {
	return &core.ListCons{Head: head, Tail: tail}
}

// newFixture seeds the prelude exactly the way a real pipeline run does
// (mirrors internal/machine/printer's buildProgram helper) so lowering
// can resolve builtin names like fromInt through the same rows
// prim.Install populates.
func newFixture(t *testing.T) (*machine.Program, *symtable.Table, *intern.Table, *prim.Handles) {
	t.Helper()
	interner := intern.New()
	stack := scope.New()
	table := stack.Table
	ids := prim.SeedScope(stack, interner)
	prog := machine.NewProgram()
	handles := prim.Install(prog, table, interner, ids)
	return prog, table, interner, handles
}

func findNode(prog *machine.Program, name string, interner *intern.Table) *machine.NodeDef {
	for _, nd := range prog.Nodes {
		if interner.MustLookup(nd.BindingName.ID) == name {
			return nd
		}
	}
	return nil
}

func findFunc(prog *machine.Program, name string, interner *intern.Table) *machine.FnDef {
	for _, fn := range prog.Funcs {
		if interner.MustLookup(fn.Name.ID) == name {
			return fn
		}
	}
	return nil
}

// TestRun_ConstantBindingHasNoMembers covers the non-recursive constant
// shape: `x = fromInt 1` has no arguments and references nothing
// stateful, so Pass 2 classifies it constant with zero captured members.
func TestRun_ConstantBindingHasNoMembers(t *testing.T) {
	prog, table, interner, handles := newFixture(t)

	fromIntSym := interner.Intern("fromInt")
	xSym := interner.Intern("x")
	xDef := table.Insert(symtable.Record{Name: xSym, Arity: -1, Namespace: symtable.TermNamespace})
	var fromIntRef symtable.ID
	table.All(func(id symtable.ID, rec *symtable.Record) {
		if rec.Name.ID == fromIntSym.ID && rec.Namespace == symtable.TermNamespace {
			fromIntRef = id
		}
	})
	xBind := &core.Bind{
		Sym: xSym, Def: xDef,
		Expr: &core.App{
			Fn:  &core.Var{Sym: fromIntSym, Ref: fromIntRef},
			Arg: &core.Lit{LitKind: core.LitInt, Int: 1},
		},
	}

	l := New(prog, table, interner, handles)
	l.Run(&core.Program{Top: cons(xBind, nil)})

	nd := findNode(prog, "x", interner)
	if nd == nil {
		t.Fatal("want a NodeDef for x")
	}
	if nd.State != symtable.StateConstant {
		t.Fatalf("want x classified StateConstant, got %v", nd.State)
	}
	if len(nd.Members) != 0 {
		t.Fatalf("want x to have no captured members, got %d", len(nd.Members))
	}
	if nd.Global == nil {
		t.Fatal("want a top-level constant binding to get a global slot")
	}
	if findFunc(prog, "update@x", interner) == nil {
		t.Fatal("want an update@x function emitted")
	}
}

// TestRun_PointwiseBindingHasOneArgAndNoSelfPointer covers the pointwise
// shape: `f x = x` takes one argument and captures nothing, so it classifies
// pointwise and its update function takes exactly the argument (no
// leading self-struct pointer, unlike a stateful node's update).
func TestRun_PointwiseBindingHasOneArgAndNoSelfPointer(t *testing.T) {
	prog, table, interner, handles := newFixture(t)

	fSym := interner.Intern("f")
	fDef := table.Insert(symtable.Record{Name: fSym, Arity: 1, Namespace: symtable.TermNamespace})
	paramSym := interner.Intern("x")
	paramDef := table.Insert(symtable.Record{Name: paramSym, Arity: -1, Namespace: symtable.TermNamespace})
	fBind := &core.Bind{
		Sym: fSym, Def: fDef,
		Expr: &core.Lambda{
			ParamSym: paramSym, ParamDef: paramDef,
			Body: &core.Var{Sym: paramSym, Ref: paramDef},
		},
	}

	l := New(prog, table, interner, handles)
	l.Run(&core.Program{Top: cons(fBind, nil)})

	nd := findNode(prog, "f", interner)
	if nd == nil {
		t.Fatal("want a NodeDef for f")
	}
	if nd.State != symtable.StatePointwise {
		t.Fatalf("want f classified StatePointwise, got %v", nd.State)
	}
	if len(nd.Members) != 0 {
		t.Fatalf("want f to capture nothing, got %d member(s)", len(nd.Members))
	}
	if len(nd.ArgNames) != 1 {
		t.Fatalf("want f to carry 1 argument, got %d", len(nd.ArgNames))
	}
	fn := nd.Update
	if fn == nil {
		t.Fatal("want an update function attached to f's NodeDef")
	}
	if len(fn.Params) != 1 {
		t.Fatalf("want f's update fn to take exactly 1 param (no self pointer), got %d", len(fn.Params))
	}
}

// TestRun_MutuallyRecursiveBindingsSeedOneMemberEach covers mutual
// recursion: two bindings in the same DeclarationGroup that reference each other
// must each be seeded with one persistent "previous value" slot before
// classification, becoming stateful rather than stuck as constant.
func TestRun_MutuallyRecursiveBindingsSeedOneMemberEach(t *testing.T) {
	prog, table, interner, handles := newFixture(t)

	const group symtable.GroupID = 1

	evenSym := interner.Intern("even")
	oddSym := interner.Intern("odd")
	evenDef := table.Insert(symtable.Record{Name: evenSym, Arity: -1, Namespace: symtable.TermNamespace, Group: group})
	oddDef := table.Insert(symtable.Record{Name: oddSym, Arity: -1, Namespace: symtable.TermNamespace, Group: group})

	evenBind := &core.Bind{
		Sym: evenSym, Def: evenDef, Group: group,
		Expr: &core.Var{Sym: oddSym, Ref: oddDef},
	}
	oddBind := &core.Bind{
		Sym: oddSym, Def: oddDef, Group: group,
		Expr: &core.Var{Sym: evenSym, Ref: evenDef},
	}

	l := New(prog, table, interner, handles)
	l.Run(&core.Program{Top: cons(evenBind, cons(oddBind, nil))})

	for _, name := range []string{"even", "odd"} {
		nd := findNode(prog, name, interner)
		if nd == nil {
			t.Fatalf("want a NodeDef for %s", name)
		}
		if nd.State != symtable.StateStateful {
			t.Fatalf("want %s classified StateStateful after self-recursion seeding, got %v", name, nd.State)
		}
		if len(nd.Members) == 0 {
			t.Fatalf("want %s seeded with at least one persistent member", name)
		}
	}
}

// TestLowerDataDecl_SharesOneStructAcrossConstructors covers the rule
// that one struct type with A+1 members is shared across every
// constructor of a data type: a two-constructor data declaration (nullary Nil,
// unary Cons) must synthesize a single struct sized to the max arity,
// with one mk function per constructor.
func TestLowerDataDecl_SharesOneStructAcrossConstructors(t *testing.T) {
	prog, table, interner, handles := newFixture(t)

	listSym := interner.Intern("List")
	listDef := table.Insert(symtable.Record{Name: listSym, Namespace: symtable.TypeNamespace})

	nilSym := interner.Intern("Nil")
	nilDef := table.Insert(symtable.Record{Name: nilSym, Namespace: symtable.TermNamespace})
	consSym := interner.Intern("Cons")
	consDef := table.Insert(symtable.Record{Name: consSym, Namespace: symtable.TermNamespace})

	decl := &core.DataDecl{
		Sym: listSym, Def: listDef,
		Constructors: []*core.DataCon{
			{Sym: nilSym, Def: nilDef, Tag: 0, Arity: 0},
			{Sym: consSym, Def: consDef, Tag: 1, Arity: 2},
		},
	}

	l := New(prog, table, interner, handles)
	before := len(prog.Structs) // prim.Install's own structs
	l.Run(&core.Program{Top: cons(decl, nil)})

	if len(prog.Structs)-before != 1 {
		t.Fatalf("want exactly one struct synthesized for List, got %d", len(prog.Structs)-before)
	}
	st := prog.Structs[before]
	if len(st.Members) != 3 { // NecroData + 2 fields (max arity 2)
		t.Fatalf("want 3 struct members (NecroData + max arity 2), got %d", len(st.Members))
	}

	nilRec := table.Get(nilDef)
	if !nilRec.IsConstructor || nilRec.Arity != 0 {
		t.Fatalf("want Nil marked a 0-arity constructor, got %#v", nilRec)
	}
	consRec := table.Get(consDef)
	if !consRec.IsConstructor || consRec.Arity != 2 || consRec.ConstructorTag != 1 {
		t.Fatalf("want Cons marked a 2-arity, tag-1 constructor, got %#v", consRec)
	}

	if findFunc(prog, "mk@Nil", interner) == nil {
		t.Fatal("want a mk@Nil constructor function")
	}
	if findFunc(prog, "mk@Cons", interner) == nil {
		t.Fatal("want a mk@Cons constructor function")
	}
}

// blocks flattens fn's linked block list for assertions.
func blocks(fn *machine.FnDef) []*machine.Block {
	var out []*machine.Block
	for b := fn.Blocks; b != nil; b = b.Next {
		out = append(out, b)
	}
	return out
}

// TestRun_CaseOverConstructorScrutineeEmitsTagSwitch covers a function
// dispatching on a two-constructor data type's tag: `pick b = case b of
// { True -> 1; False -> 2 }`. The dispatch block must load the
// scrutinee's tag and terminate with a Switch covering both tags.
func TestRun_CaseOverConstructorScrutineeEmitsTagSwitch(t *testing.T) {
	prog, table, interner, handles := newFixture(t)

	boolSym := interner.Intern("Bool")
	boolDef := table.Insert(symtable.Record{Name: boolSym, Namespace: symtable.TypeNamespace})
	trueSym := interner.Intern("True")
	trueDef := table.Insert(symtable.Record{Name: trueSym, Namespace: symtable.TermNamespace})
	falseSym := interner.Intern("False")
	falseDef := table.Insert(symtable.Record{Name: falseSym, Namespace: symtable.TermNamespace})

	boolDecl := &core.DataDecl{
		Sym: boolSym, Def: boolDef,
		Constructors: []*core.DataCon{
			{Sym: trueSym, Def: trueDef, Tag: 0, Arity: 0},
			{Sym: falseSym, Def: falseDef, Tag: 1, Arity: 0},
		},
	}

	pickSym := interner.Intern("pick")
	pickDef := table.Insert(symtable.Record{Name: pickSym, Arity: 1, Namespace: symtable.TermNamespace})
	paramSym := interner.Intern("b")
	paramDef := table.Insert(symtable.Record{Name: paramSym, Arity: -1, Namespace: symtable.TermNamespace})

	pickBind := &core.Bind{
		Sym: pickSym, Def: pickDef,
		Expr: &core.Lambda{
			ParamSym: paramSym, ParamDef: paramDef,
			Body: &core.Case{
				Scrutinee: &core.Var{Sym: paramSym, Ref: paramDef},
				Alts: []*core.CaseAlt{
					{ConRef: trueDef, Tag: 0, Body: &core.Lit{LitKind: core.LitInt, Int: 1}},
					{ConRef: falseDef, Tag: 1, Body: &core.Lit{LitKind: core.LitInt, Int: 2}},
				},
			},
		},
	}

	l := New(prog, table, interner, handles)
	l.Run(&core.Program{Top: cons(boolDecl, cons(pickBind, nil))})

	nd := findNode(prog, "pick", interner)
	if nd == nil || nd.Update == nil {
		t.Fatal("want an update function for pick")
	}

	var dispatch *machine.Terminator
	for _, b := range blocks(nd.Update) {
		if b.Term != nil && b.Term.Kind == machine.TermSwitch {
			dispatch = b.Term
		}
	}
	if dispatch == nil {
		t.Fatal("want a block terminated by a tag Switch")
	}
	if len(dispatch.Cases) != 2 {
		t.Fatalf("want 2 switch cases (one per constructor), got %d", len(dispatch.Cases))
	}
	if dispatch.Default != nil {
		t.Fatal("want no default case: both constructor tags are covered explicitly")
	}
	seen := map[int]bool{}
	for _, c := range dispatch.Cases {
		seen[c.Tag] = true
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("want switch cases for tags 0 and 1, got %#v", dispatch.Cases)
	}
}

// TestRun_CaseWithLiteralPatternEmitsEqualityChain covers the LitEq
// alternative shape a multi-clause function with a literal first clause
// desugars to: `classify n = case n of { 0 -> 100; _ -> 200 }`. Since a
// literal pattern carries no constructor tag to switch on, pass 3 must
// compile it as a cascading equality test rather than a Switch, whose
// failed test branches on to the wildcard alternative.
func TestRun_CaseWithLiteralPatternEmitsEqualityChain(t *testing.T) {
	prog, table, interner, handles := newFixture(t)

	classifySym := interner.Intern("classify")
	classifyDef := table.Insert(symtable.Record{Name: classifySym, Arity: 1, Namespace: symtable.TermNamespace})
	paramSym := interner.Intern("n")
	paramDef := table.Insert(symtable.Record{Name: paramSym, Arity: -1, Namespace: symtable.TermNamespace})

	classifyBind := &core.Bind{
		Sym: classifySym, Def: classifyDef,
		Expr: &core.Lambda{
			ParamSym: paramSym, ParamDef: paramDef,
			Body: &core.Case{
				Scrutinee: &core.Var{Sym: paramSym, Ref: paramDef},
				Alts: []*core.CaseAlt{
					{
						LitEq: &core.Lit{LitKind: core.LitInt, Int: 0},
						Body:  &core.Lit{LitKind: core.LitInt, Int: 100},
					},
					{
						IsWildcard: true,
						Body:       &core.Lit{LitKind: core.LitInt, Int: 200},
					},
				},
			},
		},
	}

	l := New(prog, table, interner, handles)
	l.Run(&core.Program{Top: cons(classifyBind, nil)})

	nd := findNode(prog, "classify", interner)
	if nd == nil || nd.Update == nil {
		t.Fatal("want an update function for classify")
	}

	var condBr, br int
	for _, b := range blocks(nd.Update) {
		if b.Term == nil {
			continue
		}
		switch b.Term.Kind {
		case machine.TermCondBr:
			condBr++
		case machine.TermSwitch:
			t.Fatal("a literal-pattern case must not compile to a tag Switch")
		case machine.TermBr:
			br++
		}
	}
	if condBr == 0 {
		t.Fatal("want at least one conditional branch testing the literal guard")
	}
	if br == 0 {
		t.Fatal("want the equality chain to fall through to the wildcard alternative via a branch")
	}
}
