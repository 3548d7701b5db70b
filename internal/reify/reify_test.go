package reify

import (
	"testing"

	"github.com/curtismckinney/necronomicon/internal/ast"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/parseast"
)

// TestExpr_IntLiteralDesugarsToFromInt covers the integer-literal
// desugaring: a bare int constant reifies to App(VarRef("fromInt"), IntLit).
func TestExpr_IntLiteralDesugarsToFromInt(t *testing.T) {
	arena := parseast.NewArena()
	lit := arena.Add(parseast.Node{Tag: parseast.TagConst, ConstKind: parseast.ConstInt, IntVal: 42})

	r := New(intern.New())
	got := r.expr(arena, lit)

	app, ok := got.(*ast.App)
	if !ok {
		t.Fatalf("want *ast.App, got %T", got)
	}
	fn, ok := app.Fn.(*ast.VarRef)
	if !ok || r.Interner.MustLookup(fn.Sym.ID) != "fromInt" {
		t.Fatalf("want App's Fn to be VarRef(\"fromInt\"), got %#v", app.Fn)
	}
	intLit, ok := app.Arg.(*ast.IntLit)
	if !ok || intLit.Value != 42 {
		t.Fatalf("want App's Arg to be IntLit(42), got %#v", app.Arg)
	}
}

// TestExpr_FloatLiteralDesugarsToFromRational mirrors the int case for
// floating-point constants.
func TestExpr_FloatLiteralDesugarsToFromRational(t *testing.T) {
	arena := parseast.NewArena()
	lit := arena.Add(parseast.Node{Tag: parseast.TagConst, ConstKind: parseast.ConstFloat, FloatVal: 3.5})

	r := New(intern.New())
	got := r.expr(arena, lit)

	app, ok := got.(*ast.App)
	if !ok {
		t.Fatalf("want *ast.App, got %T", got)
	}
	fn := app.Fn.(*ast.VarRef)
	if r.Interner.MustLookup(fn.Sym.ID) != "fromRational" {
		t.Fatalf("want fromRational, got %q", r.Interner.MustLookup(fn.Sym.ID))
	}
}

// TestPattern_IntLiteralStaysUndesugared confirms pattern-literal
// variants are left as literals: the same int constant, reached via
// pattern position with IsPattern set, must NOT be wrapped in fromInt.
func TestPattern_IntLiteralStaysUndesugared(t *testing.T) {
	arena := parseast.NewArena()
	lit := arena.Add(parseast.Node{Tag: parseast.TagConst, ConstKind: parseast.ConstInt, IntVal: 0, IsPattern: true})

	r := New(intern.New())
	got := r.pattern(arena, lit)

	patLit, ok := got.(*ast.PatLiteral)
	if !ok {
		t.Fatalf("want *ast.PatLiteral, got %T", got)
	}
	intLit, ok := patLit.Literal.(*ast.IntLit)
	if !ok || intLit.Value != 0 {
		t.Fatalf("want the pattern literal to stay a bare IntLit(0), got %#v", patLit.Literal)
	}
}

// TestBinOp_CanonicalOperatorRewritesToMethodName covers the operator
// rewrite: `x + y` reifies to a BinOp whose Op is the "add" method symbol,
// not the literal "+" spelling.
func TestBinOp_CanonicalOperatorRewritesToMethodName(t *testing.T) {
	arena := parseast.NewArena()
	left := arena.Add(parseast.Node{Tag: parseast.TagVar, Ident: "x"})
	right := arena.Add(parseast.Node{Tag: parseast.TagVar, Ident: "y"})
	plus := arena.Add(parseast.Node{Tag: parseast.TagBinOp, Ident: "+", OpType: parseast.OpAdd, Left: left, Right: right})

	r := New(intern.New())
	got := r.expr(arena, plus)

	bin, ok := got.(*ast.BinOp)
	if !ok {
		t.Fatalf("want *ast.BinOp, got %T", got)
	}
	if r.Interner.MustLookup(bin.Op.ID) != "add" {
		t.Fatalf("want the operator symbol rewritten to \"add\", got %q", r.Interner.MustLookup(bin.Op.ID))
	}
}

// TestBinOp_UserOperatorKeepsSourceSpelling covers the explicit
// exception: a user-defined operator (OpUser) is not rewritten to a
// canonical method name.
func TestBinOp_UserOperatorKeepsSourceSpelling(t *testing.T) {
	arena := parseast.NewArena()
	left := arena.Add(parseast.Node{Tag: parseast.TagVar, Ident: "x"})
	right := arena.Add(parseast.Node{Tag: parseast.TagVar, Ident: "y"})
	op := arena.Add(parseast.Node{Tag: parseast.TagBinOp, Ident: "<+>", OpType: parseast.OpUser, Left: left, Right: right})

	r := New(intern.New())
	got := r.expr(arena, op).(*ast.BinOp)

	if r.Interner.MustLookup(got.Op.ID) != "<+>" {
		t.Fatalf("want the user operator's source spelling preserved, got %q", r.Interner.MustLookup(got.Op.ID))
	}
}

// TestFunExpr_CurriedChainBuildsLeftAssociativeApp reifies `f a b` (a
// TagFunExpr chain of three terms) into nested App(App(f,a),b).
func TestFunExpr_CurriedChainBuildsLeftAssociativeApp(t *testing.T) {
	arena := parseast.NewArena()
	fRef := arena.Add(parseast.Node{Tag: parseast.TagVar, Ident: "f"})
	aRef := arena.Add(parseast.Node{Tag: parseast.TagVar, Ident: "a"})
	bRef := arena.Add(parseast.Node{Tag: parseast.TagVar, Ident: "b"})

	term3 := arena.Add(parseast.Node{Item: bRef})
	term2 := arena.Add(parseast.Node{Item: aRef, Next: term3})
	term1 := arena.Add(parseast.Node{Item: fRef, Next: term2})

	r := New(intern.New())
	got := r.funExpr(arena, term1)

	outer, ok := got.(*ast.App)
	if !ok {
		t.Fatalf("want outer node to be *ast.App, got %T", got)
	}
	inner, ok := outer.Fn.(*ast.App)
	if !ok {
		t.Fatalf("want outer.Fn to be *ast.App (left-associative nesting), got %T", outer.Fn)
	}
	if _, ok := inner.Fn.(*ast.VarRef); !ok {
		t.Fatalf("want the innermost Fn to be the VarRef for f, got %T", inner.Fn)
	}
	if outer.Arg.(*ast.VarRef).Sym.ID == 0 {
		t.Fatalf("want outer.Arg (b) to carry an interned symbol")
	}
}

// TestProgram_XEquals1 exercises the top-level
// Program() driver end to end for the `x = 1` shape.
func TestProgram_XEquals1(t *testing.T) {
	arena := parseast.NewArena()
	nameNode := arena.Add(parseast.Node{Tag: parseast.TagVar, Ident: "x"})
	litNode := arena.Add(parseast.Node{Tag: parseast.TagConst, ConstKind: parseast.ConstInt, IntVal: 1})
	rhsNode := arena.Add(parseast.Node{Tag: parseast.TagRHS, Body: litNode})
	declNode := arena.Add(parseast.Node{Tag: parseast.TagSimpleAssignment, Name: nameNode, RHS: rhsNode})
	topNode := arena.Add(parseast.Node{Tag: parseast.TagTopDecl, Item: declNode})
	arena.Root = topNode

	r := New(intern.New())
	prog := r.Program(arena)

	if len(prog.Decls) != 1 {
		t.Fatalf("want exactly one top-level decl, got %d", len(prog.Decls))
	}
	assign, ok := prog.Decls[0].(*ast.SimpleAssignment)
	if !ok {
		t.Fatalf("want *ast.SimpleAssignment, got %T", prog.Decls[0])
	}
	if r.Interner.MustLookup(assign.NameSym.ID) != "x" {
		t.Fatalf("want binding name \"x\", got %q", r.Interner.MustLookup(assign.NameSym.ID))
	}
	if _, ok := assign.RHS.Expr.(*ast.App); !ok {
		t.Fatalf("want the RHS body desugared to an App(fromInt, 1), got %T", assign.RHS.Expr)
	}
}
