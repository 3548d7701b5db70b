package rename

import (
	"testing"

	"github.com/curtismckinney/necronomicon/internal/ast"
	"github.com/curtismckinney/necronomicon/internal/depanalysis"
	"github.com/curtismckinney/necronomicon/internal/diag"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/scope"
)

func newRenamer() (*Renamer, *intern.Table) {
	in := intern.New()
	return New(scope.New(), depanalysis.NewRegistry(), in), in
}

// TestProgram_XEquals1 covers the simplest case: `x = 1` renames clean,
// with x's single occurrence-free RHS and no diagnostics.
func TestProgram_XEquals1(t *testing.T) {
	rn, in := newRenamer()
	xSym := in.Intern("x")
	decl := &ast.SimpleAssignment{NameSym: xSym, RHS: &ast.RHS{Expr: &ast.IntLit{Value: 1}}}

	rn.Program(&ast.Program{Decls: []ast.Node{decl}})

	if rn.Bag.HasErrors() {
		t.Fatalf("want no diagnostics, got %v", rn.Bag.Errors())
	}
	if decl.NameDef == 0 {
		t.Fatalf("want x's binding to receive a nonzero symbol id")
	}
}

// TestProgram_MutualRecursionResolvesBothWays covers even referencing odd
// and odd referencing even: both must resolve, since declareBlock
// installs every name before useBlock runs.
func TestProgram_MutualRecursionResolvesBothWays(t *testing.T) {
	rn, in := newRenamer()
	evenSym, oddSym := in.Intern("even"), in.Intern("odd")

	evenRef := &ast.VarRef{Sym: oddSym}
	oddRef := &ast.VarRef{Sym: evenSym}
	evenDecl := &ast.SimpleAssignment{NameSym: evenSym, RHS: &ast.RHS{Expr: evenRef}}
	oddDecl := &ast.SimpleAssignment{NameSym: oddSym, RHS: &ast.RHS{Expr: oddRef}}

	rn.Program(&ast.Program{Decls: []ast.Node{evenDecl, oddDecl}})

	if rn.Bag.HasErrors() {
		t.Fatalf("want no diagnostics, got %v", rn.Bag.Errors())
	}
	if evenRef.Ref == 0 || evenRef.Ref != oddDecl.NameDef {
		t.Fatalf("want even's body to resolve to odd's symbol id")
	}
	if oddRef.Ref == 0 || oddRef.Ref != evenDecl.NameDef {
		t.Fatalf("want odd's body to resolve to even's symbol id")
	}
}

func TestProgram_UnboundVariableRecordsDiagnostic(t *testing.T) {
	rn, in := newRenamer()
	decl := &ast.SimpleAssignment{
		NameSym: in.Intern("f"),
		RHS:     &ast.RHS{Expr: &ast.VarRef{Sym: in.Intern("neverDeclared")}},
	}

	rn.Program(&ast.Program{Decls: []ast.Node{decl}})

	if !rn.Bag.HasErrors() {
		t.Fatalf("want an unbound-variable diagnostic")
	}
	if rn.Bag.Errors()[0].Kind != diag.KindUnboundVariable {
		t.Fatalf("want KindUnboundVariable, got %v", rn.Bag.Errors()[0].Kind)
	}
}

func TestProgram_DuplicateTopLevelDeclarationIsRejected(t *testing.T) {
	rn, in := newRenamer()
	xSym := in.Intern("x")
	first := &ast.SimpleAssignment{NameSym: xSym, RHS: &ast.RHS{Expr: &ast.IntLit{Value: 1}}}
	second := &ast.SimpleAssignment{NameSym: xSym, RHS: &ast.RHS{Expr: &ast.IntLit{Value: 2}}}

	rn.Program(&ast.Program{Decls: []ast.Node{first, second}})

	if !rn.Bag.HasErrors() {
		t.Fatalf("want a multiple-declaration diagnostic")
	}
	if rn.Bag.Errors()[0].Kind != diag.KindMultipleDecl {
		t.Fatalf("want KindMultipleDecl, got %v", rn.Bag.Errors()[0].Kind)
	}
}

// TestProgram_MultiClauseFunctionSharesOneSymbol covers clause-linking:
// two ApatsAssignment clauses for the same name share NameDef/Group and
// are threaded via NextClause.
func TestProgram_MultiClauseFunctionSharesOneSymbol(t *testing.T) {
	rn, in := newRenamer()
	fSym := in.Intern("f")
	clause1 := &ast.ApatsAssignment{
		NameSym: fSym,
		Apats:   []ast.Node{&ast.PatLiteral{Literal: &ast.IntLit{Value: 0}}},
		RHS:     &ast.RHS{Expr: &ast.IntLit{Value: 1}},
	}
	clause2 := &ast.ApatsAssignment{
		NameSym: fSym,
		Apats:   []ast.Node{&ast.PatVar{Sym: in.Intern("n")}},
		RHS:     &ast.RHS{Expr: &ast.IntLit{Value: 2}},
	}

	rn.Program(&ast.Program{Decls: []ast.Node{clause1, clause2}})

	if rn.Bag.HasErrors() {
		t.Fatalf("want no diagnostics, got %v", rn.Bag.Errors())
	}
	if clause1.NextClause != clause2 {
		t.Fatalf("want clause1.NextClause to be clause2")
	}
	if clause2.NameDef != clause1.NameDef || clause2.Group != clause1.Group {
		t.Fatalf("want both clauses to share the same symbol and group")
	}
}

// TestProgram_LambdaParamShadowsOuterBinding confirms a lambda opens its
// own scope: the inner `x` shadows the outer `x` without raising a
// multiple-declaration diagnostic, and the lambda body resolves to the
// inner one.
func TestProgram_LambdaParamShadowsOuterBinding(t *testing.T) {
	rn, in := newRenamer()
	xSym := in.Intern("x")
	innerRef := &ast.VarRef{Sym: xSym}
	lambda := &ast.Lambda{Params: []ast.Node{&ast.PatVar{Sym: xSym}}, Body: innerRef}
	outer := &ast.SimpleAssignment{NameSym: xSym, RHS: &ast.RHS{Expr: &ast.IntLit{Value: 1}}}
	user := &ast.SimpleAssignment{NameSym: in.Intern("g"), RHS: &ast.RHS{Expr: lambda}}

	rn.Program(&ast.Program{Decls: []ast.Node{outer, user}})

	if rn.Bag.HasErrors() {
		t.Fatalf("want no diagnostics (shadowing is legal), got %v", rn.Bag.Errors())
	}
	if innerRef.Ref == 0 || innerRef.Ref == outer.NameDef {
		t.Fatalf("want the lambda body's x to resolve to the lambda's own param, not the outer binding")
	}
}

// TestProgram_LetWhereBindingsVisibleInRHS checks a `where`-style RHS
// scope (built via Decls on a Let expression, since ast.Let models both
// `let` and `where`'s structural shape of "more bindings, then a body").
func TestProgram_LetWhereBindingsVisibleInRHS(t *testing.T) {
	rn, in := newRenamer()
	ySym := in.Intern("y")
	yRef := &ast.VarRef{Sym: ySym}
	letExpr := &ast.Let{
		Decls: []ast.Node{&ast.SimpleAssignment{NameSym: ySym, RHS: &ast.RHS{Expr: &ast.IntLit{Value: 1}}}},
		Body:  yRef,
	}
	decl := &ast.SimpleAssignment{NameSym: in.Intern("f"), RHS: &ast.RHS{Expr: letExpr}}

	rn.Program(&ast.Program{Decls: []ast.Node{decl}})

	if rn.Bag.HasErrors() {
		t.Fatalf("want no diagnostics, got %v", rn.Bag.Errors())
	}
	if yRef.Ref == 0 {
		t.Fatalf("want the let-body's y to resolve against the let's own binding")
	}
}
