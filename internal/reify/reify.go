// Package reify implements the reifier: it consumes a
// parseast.Arena (the compact, integer-offset-child form produced by the
// external lexer/parser) and rehydrates it into the pointer-linked
// semantic AST (package ast). Two desugarings happen here and nowhere
// else downstream: integer/float literals become fromInt/fromRational
// applications, and canonical binary operators are rewritten to their
// method-name symbol.
//
// Each AST node is built by copying the parser's fields one-for-one
// into the semantic node and recursing into children, collapsed here
// into one recursive function per parseast.Tag since this package owns
// a single flat Node interface rather than many per-kind Go types.
package reify

import (
	"fmt"

	"github.com/curtismckinney/necronomicon/internal/ast"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/parseast"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// Reifier holds the shared interner every reified name occurrence is
// hashed into.
type Reifier struct {
	Interner *intern.Table
}

func New(interner *intern.Table) *Reifier {
	return &Reifier{Interner: interner}
}

// Program reifies the whole top-level declaration chain rooted at
// arena.Root (a TagTopDecl chain) into an ast.Program.
func (r *Reifier) Program(arena *parseast.Arena) *ast.Program {
	prog := &ast.Program{}
	for ref := arena.Root; ref != 0; {
		n := arena.Get(ref)
		prog.Decls = append(prog.Decls, r.decl(arena, n.Item))
		ref = n.Next
	}
	return prog
}

// sym interns ident, returning the zero Symbol if ident is empty (nodes
// with no name, e.g. wildcards).
func (r *Reifier) sym(ident string) intern.Symbol {
	if ident == "" {
		return intern.Symbol{}
	}
	return r.Interner.Intern(ident)
}

// expr reifies an expression-position node. Every reachable parseast.Tag
// must be handled here or in one of the sibling dispatch functions
// (decl, pattern, typeExpr); an unhandled tag is a compiler bug, not a
// user-visible diagnostic.
func (r *Reifier) expr(arena *parseast.Arena, ref parseast.Ref) ast.Node {
	if ref == 0 {
		return nil
	}
	n := arena.Get(ref)
	base := ast.NewBase(n.Pos)

	switch n.Tag {
	case parseast.TagConst:
		return r.literal(n, base)

	case parseast.TagVar:
		return &ast.VarRef{Base: base, Sym: r.sym(n.Ident)}

	case parseast.TagConId:
		return &ast.ConRef{Base: base, Sym: r.sym(n.Ident)}

	case parseast.TagFunExpr:
		return r.funExpr(arena, ref)

	case parseast.TagBinOp:
		return r.binOp(arena, n, base)

	case parseast.TagUnOp:
		return &ast.UnOp{
			Base:  base,
			Right: r.expr(arena, n.Right),
			Op:    r.sym(n.Ident),
		}

	case parseast.TagOpSymbol:
		// A bare operator-as-symbol node reifies the same as a BinOp; the
		// parser only emits this for sections (handled below) and for
		// intermediate fixity-resolution input, which is already resolved
		// by the time this pipeline sees it.
		return r.binOp(arena, n, base)

	case parseast.TagIfThenElse:
		return &ast.If{
			Base: base,
			Cond: r.expr(arena, n.Cond),
			Then: r.expr(arena, n.Then),
			Else: r.expr(arena, n.Else),
		}

	case parseast.TagLet:
		return &ast.Let{
			Base:  base,
			Decls: r.declChain(arena, n.Decls),
			Body:  r.expr(arena, n.Body),
		}

	case parseast.TagLambda:
		return &ast.Lambda{
			Base:   base,
			Params: r.apatList(arena, n.Apats),
			Body:   r.expr(arena, n.Body),
		}

	case parseast.TagDo:
		return r.doExpr(arena, n, base)

	case parseast.TagCaseExpr:
		var alts []*ast.CaseAlt
		for ref := n.Alts; ref != 0; {
			altN := arena.Get(ref)
			alts = append(alts, r.caseAlt(arena, altN))
			ref = altN.Next
		}
		return &ast.Case{Base: base, Scrutinee: r.expr(arena, n.Scrutinee), Alts: alts}

	case parseast.TagListExpr:
		return &ast.ListExpr{Base: base, Elements: r.exprChain(arena, n.Elements)}

	case parseast.TagArrayExpr:
		return &ast.ArrayExpr{Base: base, Elements: r.exprChain(arena, n.Elements)}

	case parseast.TagTupleExpr:
		return &ast.TupleExpr{Base: base, Elements: r.exprChain(arena, n.Elements)}

	case parseast.TagArithSeq:
		seq := &ast.ArithSeq{Base: base, SeqKind: ast.ArithSeqKind(n.ArithKind), From: r.expr(arena, n.From)}
		if n.To != 0 {
			seq.To = r.expr(arena, n.To)
		}
		if n.Then_ != 0 {
			seq.Then = r.expr(arena, n.Then_)
		}
		return seq

	case parseast.TagLeftSection:
		opSym, opRef := r.opSymbol(arena, n)
		return &ast.LeftSection{Base: base, Expr: r.expr(arena, n.Left), Op: opSym, OpRef: opRef}

	case parseast.TagRightSection:
		opSym, opRef := r.opSymbol(arena, n)
		return &ast.RightSection{Base: base, Op: opSym, OpRef: opRef, Expr: r.expr(arena, n.Right)}

	case parseast.TagPatExpr:
		return r.pattern(arena, n.Pattern)

	default:
		panic(fmt.Sprintf("reify: unhandled expression tag %s", n.Tag))
	}
}

// literal applies the numeric-literal desugaring: integers become
// `fromInt L`, floats become `fromRational L`, strings/chars stay
// literal. Pattern-literal variants (n.IsPattern) are left undesugared;
// callers reifying a pattern route through (*Reifier).pattern instead.
func (r *Reifier) literal(n *parseast.Node, base ast.Base) ast.Node {
	switch n.ConstKind {
	case parseast.ConstInt:
		lit := &ast.IntLit{Base: base, Value: n.IntVal}
		if n.IsPattern {
			return lit
		}
		return r.wrapFrom(base, "fromInt", lit)
	case parseast.ConstFloat:
		lit := &ast.FloatLit{Base: base, Value: n.FloatVal}
		if n.IsPattern {
			return lit
		}
		return r.wrapFrom(base, "fromRational", lit)
	case parseast.ConstString:
		return &ast.StringLit{Base: base, Value: n.StrVal}
	case parseast.ConstChar:
		var c rune
		for _, rv := range n.StrVal {
			c = rv
			break
		}
		return &ast.CharLit{Base: base, Value: c}
	default:
		panic("reify: unknown const kind")
	}
}

// wrapFrom builds the App(VarRef(name), lit) node the numeric-literal
// desugaring produces.
func (r *Reifier) wrapFrom(base ast.Base, name string, lit ast.Node) ast.Node {
	fn := &ast.VarRef{Base: base, Sym: r.Interner.Intern(name)}
	return &ast.App{Base: base, Fn: fn, Arg: lit}
}

// funExpr reifies a TagFunExpr chain (a curried application written
// `f a b c`) into nested, left-associative App nodes.
func (r *Reifier) funExpr(arena *parseast.Arena, head parseast.Ref) ast.Node {
	var terms []ast.Node
	for ref := head; ref != 0; {
		n := arena.Get(ref)
		terms = append(terms, r.expr(arena, n.Item))
		ref = n.Next
	}
	if len(terms) == 0 {
		return nil
	}
	result := terms[0]
	for _, arg := range terms[1:] {
		result = &ast.App{Base: ast.NewBase(result.Pos()), Fn: result, Arg: arg}
	}
	return result
}

// opSymbol resolves the interned method-name symbol for an operator
// node, applying the canonical-operator rewrite; OpUser operators keep
// their source spelling unrewritten. The returned symtable.ID is
// always 0: operator occurrences in sections are resolved by the
// renamer's use pass, same as any other VarRef/ConRef, not here.
func (r *Reifier) opSymbol(arena *parseast.Arena, n *parseast.Node) (intern.Symbol, symtable.ID) {
	if name, ok := n.OpType.MethodName(); ok {
		return r.Interner.Intern(name), 0
	}
	return r.sym(n.Ident), 0
}

func (r *Reifier) binOp(arena *parseast.Arena, n *parseast.Node, base ast.Base) ast.Node {
	opSym := r.sym(n.Ident)
	if name, ok := n.OpType.MethodName(); ok {
		opSym = r.Interner.Intern(name)
	}
	return &ast.BinOp{
		Base:   base,
		Left:   r.expr(arena, n.Left),
		Right:  r.expr(arena, n.Right),
		Op:     opSym,
		OpType: ast.OpType(n.OpType),
	}
}

func (r *Reifier) exprChain(arena *parseast.Arena, head parseast.Ref) []ast.Node {
	var out []ast.Node
	for ref := head; ref != 0; {
		n := arena.Get(ref)
		out = append(out, r.expr(arena, n.Item))
		ref = n.Next
	}
	return out
}

func (r *Reifier) apatList(arena *parseast.Arena, head parseast.Ref) []ast.Node {
	var out []ast.Node
	for ref := head; ref != 0; {
		n := arena.Get(ref)
		out = append(out, r.pattern(arena, ref))
		ref = n.Next
	}
	return out
}

func (r *Reifier) doExpr(arena *parseast.Arena, n *parseast.Node, base ast.Base) ast.Node {
	var stmts []ast.Node
	for ref := n.Stmts; ref != 0; {
		sn := arena.Get(ref)
		switch sn.Tag {
		case parseast.TagBindAssignment:
			stmts = append(stmts, &ast.DoBind{
				Base:    ast.NewBase(sn.Pos),
				Pattern: &ast.PatVar{Base: ast.NewBase(sn.Pos), Sym: r.sym(sn.Ident)},
				Expr:    r.expr(arena, sn.RHS),
			})
		case parseast.TagPatBindAssignment:
			stmts = append(stmts, &ast.DoBind{
				Base:    ast.NewBase(sn.Pos),
				Pattern: r.pattern(arena, sn.Pattern),
				Expr:    r.expr(arena, sn.RHS),
			})
		case parseast.TagDecl:
			stmts = append(stmts, r.decl(arena, sn.Item))
		default:
			stmts = append(stmts, &ast.DoExprStmt{Base: ast.NewBase(sn.Pos), Expr: r.expr(arena, sn.Item)})
		}
		ref = sn.Next
	}
	return &ast.Do{Base: base, Stmts: stmts}
}

func (r *Reifier) caseAlt(arena *parseast.Arena, n *parseast.Node) *ast.CaseAlt {
	return &ast.CaseAlt{
		Base:    ast.NewBase(n.Pos),
		Pattern: r.pattern(arena, n.Pattern),
		RHS:     r.rhs(arena, n.RHS),
	}
}

// pattern reifies a node in pattern position. Literal constants keep
// their literal form — no fromInt/fromRational wrapping.
func (r *Reifier) pattern(arena *parseast.Arena, ref parseast.Ref) ast.Node {
	if ref == 0 {
		return nil
	}
	n := arena.Get(ref)
	base := ast.NewBase(n.Pos)

	switch n.Tag {
	case parseast.TagWildcard:
		return &ast.PatWildcard{Base: base}

	case parseast.TagApat:
		return r.pattern(arena, n.Item)

	case parseast.TagVar:
		return &ast.PatVar{Base: base, Sym: r.sym(n.Ident)}

	case parseast.TagConst:
		return &ast.PatLiteral{Base: base, Literal: r.literal(n, base)}

	case parseast.TagConId:
		var sub []ast.Node
		for ref := n.Elements; ref != 0; {
			en := arena.Get(ref)
			sub = append(sub, r.pattern(arena, en.Item))
			ref = en.Next
		}
		return &ast.PatCon{Base: base, Sym: r.sym(n.Ident), SubPats: sub}

	case parseast.TagTupleExpr:
		var elems []ast.Node
		for ref := n.Elements; ref != 0; {
			en := arena.Get(ref)
			elems = append(elems, r.pattern(arena, en.Item))
			ref = en.Next
		}
		return &ast.PatTuple{Base: base, Elements: elems}

	case parseast.TagPatExpr:
		// An as-pattern: Name holds the bound variable, Pattern the
		// sub-pattern it aliases.
		if n.Name != 0 {
			return &ast.PatAs{Base: base, Sym: r.sym(arena.Get(n.Name).Ident), SubPat: r.pattern(arena, n.Pattern)}
		}
		return r.pattern(arena, n.Pattern)

	default:
		panic(fmt.Sprintf("reify: unhandled pattern tag %s", n.Tag))
	}
}

func (r *Reifier) rhs(arena *parseast.Arena, ref parseast.Ref) *ast.RHS {
	if ref == 0 {
		return nil
	}
	n := arena.Get(ref)
	return &ast.RHS{
		Base:  ast.NewBase(n.Pos),
		Where: r.declChain(arena, n.Where),
		Expr:  r.expr(arena, n.Body),
	}
}

func (r *Reifier) declChain(arena *parseast.Arena, head parseast.Ref) []ast.Node {
	var out []ast.Node
	for ref := head; ref != 0; {
		n := arena.Get(ref)
		out = append(out, r.decl(arena, n.Item))
		ref = n.Next
	}
	return out
}

// decl reifies one declaration-position node.
func (r *Reifier) decl(arena *parseast.Arena, ref parseast.Ref) ast.Node {
	if ref == 0 {
		return nil
	}
	n := arena.Get(ref)
	base := ast.NewBase(n.Pos)

	switch n.Tag {
	case parseast.TagSimpleAssignment:
		return &ast.SimpleAssignment{Base: base, NameSym: r.sym(arena.Get(n.Name).Ident), RHS: r.rhs(arena, n.RHS)}

	case parseast.TagApatsAssignment:
		return &ast.ApatsAssignment{
			Base:    base,
			NameSym: r.sym(arena.Get(n.Name).Ident),
			Apats:   r.apatList(arena, n.Apats),
			RHS:     r.rhs(arena, n.RHS),
		}

	case parseast.TagPatAssignment:
		return &ast.PatAssignment{Base: base, Pattern: r.pattern(arena, n.Pattern), RHS: r.rhs(arena, n.RHS)}

	case parseast.TagTypeSig:
		return &ast.TypeSig{
			Base:    base,
			NameSym: r.sym(n.Ident),
			Context: r.classContextChain(arena, n.Context),
			Type:    r.typeExpr(arena, n.TypeExpr),
		}

	case parseast.TagDataDecl:
		return r.dataDecl(arena, n, base)

	case parseast.TagClassDecl:
		return &ast.ClassDecl{
			Base:     base,
			NameSym:  r.sym(n.Ident),
			TypeVars: r.typeVarChain(arena, n.TyVars),
			Methods:  r.declChain(arena, n.Methods),
		}

	case parseast.TagInstanceDecl:
		return &ast.InstanceDecl{
			Base:     base,
			ClassSym: r.sym(n.Ident),
			Context:  r.classContextChain(arena, n.Context),
			Type:     r.typeExpr(arena, n.TypeExpr),
			Methods:  r.declChain(arena, n.Methods),
		}

	default:
		panic(fmt.Sprintf("reify: unhandled declaration tag %s", n.Tag))
	}
}

func (r *Reifier) dataDecl(arena *parseast.Arena, n *parseast.Node, base ast.Base) ast.Node {
	d := &ast.DataDecl{Base: base, NameSym: r.sym(n.Ident), TypeVars: r.typeVarChain(arena, n.TyVars)}
	tag := 0
	for ref := n.Ctors; ref != 0; {
		cn := arena.Get(ref)
		ctor := &ast.ConstructorDecl{
			Base:    ast.NewBase(cn.Pos),
			NameSym: r.sym(cn.Ident),
			Tag:     tag,
			Fields:  r.typeExprChain(arena, cn.Fields),
		}
		d.Constructors = append(d.Constructors, ctor)
		tag++
		ref = cn.Next
	}
	return d
}

func (r *Reifier) classContextChain(arena *parseast.Arena, head parseast.Ref) []*ast.ClassContext {
	var out []*ast.ClassContext
	for ref := head; ref != 0; {
		n := arena.Get(ref)
		out = append(out, &ast.ClassContext{
			Base:     ast.NewBase(n.Pos),
			ClassSym: r.sym(n.Ident),
			TypeVar:  r.sym(arena.Get(n.Left).Ident),
		})
		ref = n.Next
	}
	return out
}

func (r *Reifier) typeVarChain(arena *parseast.Arena, head parseast.Ref) []*ast.TypeVar {
	var out []*ast.TypeVar
	for ref := head; ref != 0; {
		n := arena.Get(ref)
		out = append(out, &ast.TypeVar{Base: ast.NewBase(n.Pos), Sym: r.sym(n.Ident)})
		ref = n.Next
	}
	return out
}

func (r *Reifier) typeExprChain(arena *parseast.Arena, head parseast.Ref) []ast.Node {
	var out []ast.Node
	for ref := head; ref != 0; {
		n := arena.Get(ref)
		out = append(out, r.typeExpr(arena, ref))
		ref = n.Next
	}
	return out
}

func (r *Reifier) typeExpr(arena *parseast.Arena, ref parseast.Ref) ast.Node {
	if ref == 0 {
		return nil
	}
	n := arena.Get(ref)
	base := ast.NewBase(n.Pos)

	switch n.Tag {
	case parseast.TagSimpleType:
		return &ast.SimpleType{Base: base, Sym: r.sym(n.Ident)}

	case parseast.TagVar:
		return &ast.TypeVar{Base: base, Sym: r.sym(n.Ident)}

	case parseast.TagTypeApp:
		var args []ast.Node
		for ref := n.Elements; ref != 0; {
			en := arena.Get(ref)
			args = append(args, r.typeExpr(arena, en.Item))
			ref = en.Next
		}
		return &ast.TypeApp{Base: base, Fn: r.typeExpr(arena, n.Left), Args: args}

	case parseast.TagFunType:
		return &ast.FunType{Base: base, Params: r.typeExprChain(arena, n.Params), Return: r.typeExpr(arena, n.RHS)}

	default:
		panic(fmt.Sprintf("reify: unhandled type-expression tag %s", n.Tag))
	}
}
