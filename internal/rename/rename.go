// Package rename implements the renamer: a declare pass that installs
// every binding into the scope chain, and a use pass that resolves
// every occurrence against it. Both sub-passes are applied one lexical
// block at a time (rather than as two whole-tree traversals)
// specifically so a block's own scope.Scope frame only has to be created
// once and is still current when its uses are resolved — declare-then-use
// ordering is preserved within each block, which is what gives mutually
// recursive bindings (an even/odd pair, say) their forward visibility;
// see DESIGN.md for why this differs from running two separate top-down
// sweeps of the whole tree.
//
// Grounded on: internal/semantic/symbol_table.go's Define/Resolve split
// and its outer-pointer scope chain.
package rename

import (
	"github.com/curtismckinney/necronomicon/internal/ast"
	"github.com/curtismckinney/necronomicon/internal/depanalysis"
	"github.com/curtismckinney/necronomicon/internal/diag"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/scope"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// Renamer carries the shared scope stack, symbol table, group registry,
// and interner across both passes.
type Renamer struct {
	Scopes   *scope.Stack
	Groups   *depanalysis.Registry
	Interner *intern.Table
	Bag      *diag.Bag
}

func New(scopes *scope.Stack, groups *depanalysis.Registry, interner *intern.Table) *Renamer {
	return &Renamer{Scopes: scopes, Groups: groups, Interner: interner, Bag: &diag.Bag{}}
}

// Program renames the whole top-level declaration list against the
// stack's global scope.
func (rn *Renamer) Program(prog *ast.Program) {
	rn.block(prog.Decls)
}

// block declares every binding in decls against the current scope, then
// resolves every reference within them.
func (rn *Renamer) block(decls []ast.Node) {
	rn.declareBlock(decls)
	rn.useBlock(decls)
}

func toPos(p diag.Position) symtable.Pos {
	return symtable.Pos{Line: p.Line, Column: p.Column, Offset: p.Offset}
}

// --- declare pass -------------------------------------------------------

func (rn *Renamer) declareBlock(decls []ast.Node) {
	clauseHeads := map[intern.ID]ast.Node{}
	var sigs []*ast.TypeSig

	for _, d := range decls {
		d.SetScope(rn.Scopes.Current())
		switch d := d.(type) {
		case *ast.SimpleAssignment:
			d.NameDef, d.Group = rn.declareName(d.NameSym, 0, d.Pos())
			rn.Groups.Get(d.Group).Decl = d

		case *ast.ApatsAssignment:
			if head, ok := clauseHeads[d.NameSym.ID]; ok {
				rn.linkClause(head, d)
			} else {
				d.NameDef, d.Group = rn.declareName(d.NameSym, len(d.Apats), d.Pos())
				rn.Groups.Get(d.Group).Decl = d
				clauseHeads[d.NameSym.ID] = d
			}

		case *ast.PatAssignment:
			rn.declarePatternVars(d.Pattern)
			ast.Walk(d.Pattern, func(n ast.Node) {
				if pv, ok := n.(*ast.PatVar); ok && pv.Def != 0 {
					g := rn.Scopes.Table.Get(pv.Def).Group
					d.Group = g
					rn.Groups.Get(g).Decl = d
				}
			})

		case *ast.TypeSig:
			sigs = append(sigs, d)

		case *ast.DataDecl:
			rn.declareDataDecl(d)

		case *ast.ClassDecl:
			d.NameDef, d.Group = rn.declareName(d.NameSym, -1, d.Pos())
			rn.Groups.Get(d.Group).Decl = d
			rn.declareBlock(d.Methods)

		case *ast.InstanceDecl:
			// Instance method bodies can shadow nothing new at this level;
			// their own apats/where scopes are opened when the use pass
			// (and this declare pass, for nested where-blocks) walks them.
			rn.declareBlock(d.Methods)
		}
	}

	for _, sig := range sigs {
		sig.SetScope(rn.Scopes.Current())
		if !rn.Scopes.IsBoundHere(sig.NameSym.ID) {
			rn.Bag.Add(diag.New(diag.KindSignatureNoBinding, sig.Pos(),
				"type signature for %q has no matching binding", rn.Interner.MustLookup(sig.NameSym.ID)))
			continue
		}
		id := rn.Scopes.Find(sig.NameSym.ID)
		rn.Scopes.Table.Get(id).TypeSig = sig
	}
}

// linkClause appends clause to the NextClause chain rooted at head and
// shares head's symbol/group with it. The DeclarationGroup records
// themselves are threaded the same way via Group.Next, distinct from the
// AST-level NextClause field that the dependency analyzer and later
// passes follow to find every clause body; nothing downstream reads
// Group.Next.
func (rn *Renamer) linkClause(head ast.Node, clause *ast.ApatsAssignment) {
	cur := head.(*ast.ApatsAssignment)
	for cur.NextClause != nil {
		cur = cur.NextClause.(*ast.ApatsAssignment)
	}
	cur.NextClause = clause
	clause.NameDef = cur.NameDef
	clause.Group = cur.Group

	tailGroup := rn.Groups.Get(cur.Group)
	for tailGroup.Next != 0 {
		tailGroup = rn.Groups.Get(tailGroup.Next)
	}
	tailGroup.Next = rn.Groups.New(clause)
}

func (rn *Renamer) declareName(sym intern.Symbol, arity int, pos diag.Position) (symtable.ID, symtable.GroupID) {
	if rn.Scopes.IsBoundHere(sym.ID) {
		rn.Bag.Add(diag.New(diag.KindMultipleDecl, pos, "multiple declarations of %q", rn.Interner.MustLookup(sym.ID)))
		id := rn.Scopes.Find(sym.ID)
		return id, rn.Scopes.Table.Get(id).Group
	}
	id := rn.Scopes.Declare(sym.ID, symtable.Record{
		Name: sym, Pos: toPos(pos), Arity: arity, Namespace: symtable.TermNamespace,
	})
	group := rn.Groups.New(nil)
	rec := rn.Scopes.Table.Get(id)
	rec.Group = group
	return id, group
}

func (rn *Renamer) declarePatternVars(pat ast.Node) {
	switch p := pat.(type) {
	case *ast.PatVar:
		p.Def, _ = rn.declareName(p.Sym, -1, p.Pos())
	case *ast.PatAs:
		p.Def, _ = rn.declareName(p.Sym, -1, p.Pos())
		rn.declarePatternVars(p.SubPat)
	case *ast.PatCon:
		for _, sp := range p.SubPats {
			rn.declarePatternVars(sp)
		}
	case *ast.PatTuple:
		for _, e := range p.Elements {
			rn.declarePatternVars(e)
		}
	case *ast.PatLiteral, *ast.PatWildcard, nil:
		// no bindings
	}
}

func (rn *Renamer) declareDataDecl(d *ast.DataDecl) {
	d.NameDef, d.Group = rn.declareName(d.NameSym, len(d.TypeVars), d.Pos())
	rn.Groups.Get(d.Group).Decl = d
	rn.Scopes.Table.Get(d.NameDef).Namespace = symtable.TypeNamespace
	rn.Scopes.Table.Get(d.NameDef).IsEnum = len(d.Constructors) > 1

	for _, ctor := range d.Constructors {
		ctor.NameDef, ctor.Group = rn.declareName(ctor.NameSym, len(ctor.Fields), ctor.Pos())
		rn.Groups.Get(ctor.Group).Decl = ctor
		rec := rn.Scopes.Table.Get(ctor.NameDef)
		rec.IsConstructor = true
		rec.ConstructorTag = ctor.Tag
	}

	// Type variables are visible only while resolving the constructors'
	// field types; they are declared in a scope nested under the one the
	// type/constructor names themselves live in, and that scope is
	// reopened identically by the use pass below.
	rn.Scopes.NewScope()
	for _, tv := range d.TypeVars {
		tv.Def, _ = rn.declareName(tv.Sym, -1, tv.Pos())
		rn.Scopes.Table.Get(tv.Def).Namespace = symtable.TypeNamespace
	}
	for _, ctor := range d.Constructors {
		for _, f := range ctor.Fields {
			rn.declareTypeExpr(f)
		}
	}
	rn.Scopes.PopScope()
}

// declareTypeExpr has nothing to install for the type-expression variants
// themselves (their Sym occurrences are resolved, not declared), but a
// FunType/TypeApp can nest a forall in principle; this pipeline's type
// expressions never bind new names below the data declaration's own
// TypeVars, so this is a no-op traversal kept for symmetry with the use
// pass's mirrored scope structure.
func (rn *Renamer) declareTypeExpr(ast.Node) {}

// --- use pass -----------------------------------------------------------

func (rn *Renamer) useBlock(decls []ast.Node) {
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.SimpleAssignment:
			rn.useRHS(d.RHS)

		case *ast.ApatsAssignment:
			// Every clause of a multi-clause binding is also its own entry
			// in decls (the reifier threads clauses through the flat decl
			// chain, same as any other declaration); NextClause exists for
			// lowering to find sibling clauses from one symbol, not for
			// this traversal to follow, so each clause's scope is opened
			// exactly once, right here.
			rn.Scopes.NewScope()
			for _, p := range d.Apats {
				rn.declarePatternVars(p)
			}
			for _, p := range d.Apats {
				rn.usePattern(p)
			}
			rn.useRHS(d.RHS)
			rn.Scopes.PopScope()

		case *ast.PatAssignment:
			rn.usePattern(d.Pattern)
			rn.useRHS(d.RHS)

		case *ast.TypeSig:
			for _, c := range d.Context {
				rn.useClassContext(c)
			}
			rn.useType(d.Type)

		case *ast.DataDecl:
			// declareDataDecl already opened and popped an identically
			// shaped scope to install these same type variables; scope
			// frames are single-use here (see package doc), so the use
			// pass reopens its own frame and redeclares them rather than
			// trying to reach back into the declare pass's now-discarded
			// one.
			rn.Scopes.NewScope()
			for _, tv := range d.TypeVars {
				tv.Def, _ = rn.declareName(tv.Sym, -1, tv.Pos())
				rn.Scopes.Table.Get(tv.Def).Namespace = symtable.TypeNamespace
			}
			for _, ctor := range d.Constructors {
				for _, f := range ctor.Fields {
					rn.useType(f)
				}
			}
			rn.Scopes.PopScope()

		case *ast.ClassDecl:
			rn.useBlock(d.Methods)

		case *ast.InstanceDecl:
			for _, c := range d.Context {
				rn.useClassContext(c)
			}
			rn.useType(d.Type)
			rn.useBlock(d.Methods)
		}
	}
}

func (rn *Renamer) useClassContext(c *ast.ClassContext) {
	// ClassSym/TypeVar are resolved against the type namespace; ClassRef
	// is left for the inferencer's dictionary-passing pass to consume —
	// this pipeline only needs the class name to resolve so diagnostics
	// can report an unbound class.
	if id := rn.Scopes.Find(c.ClassSym.ID); id != 0 {
		c.ClassRef = id
	} else {
		rn.Bag.Add(diag.New(diag.KindUnboundVariable, c.Pos(), "unbound class %q", rn.Interner.MustLookup(c.ClassSym.ID)))
	}
}

func (rn *Renamer) useRHS(rhs *ast.RHS) {
	if rhs == nil {
		return
	}
	if len(rhs.Where) > 0 {
		rn.Scopes.NewScope()
		rn.declareBlock(rhs.Where)
		rn.useBlock(rhs.Where)
		rn.useExpr(rhs.Expr)
		rn.Scopes.PopScope()
		return
	}
	rn.useExpr(rhs.Expr)
}

func (rn *Renamer) usePattern(p ast.Node) {
	switch p := p.(type) {
	case *ast.PatCon:
		if id := rn.Scopes.Find(p.Sym.ID); id != 0 {
			p.Ref = id
		} else {
			rn.Bag.Add(diag.New(diag.KindUnboundVariable, p.Pos(), "unbound constructor %q", rn.Interner.MustLookup(p.Sym.ID)))
		}
		for _, sp := range p.SubPats {
			rn.usePattern(sp)
		}
	case *ast.PatTuple:
		for _, e := range p.Elements {
			rn.usePattern(e)
		}
	case *ast.PatAs:
		rn.usePattern(p.SubPat)
	case *ast.PatLiteral, *ast.PatVar, *ast.PatWildcard, nil:
		// nothing to resolve
	}
}

func (rn *Renamer) useExpr(n ast.Node) {
	if n == nil {
		return
	}
	switch n := n.(type) {
	case *ast.VarRef:
		if id := rn.Scopes.Find(n.Sym.ID); id != 0 {
			n.Ref = id
		} else {
			rn.Bag.Add(diag.New(diag.KindUnboundVariable, n.Pos(), "unbound variable %q", rn.Interner.MustLookup(n.Sym.ID)))
		}

	case *ast.ConRef:
		if id := rn.Scopes.Find(n.Sym.ID); id != 0 {
			n.Ref = id
		} else {
			rn.Bag.Add(diag.New(diag.KindUnboundVariable, n.Pos(), "unbound constructor %q", rn.Interner.MustLookup(n.Sym.ID)))
		}

	case *ast.App:
		rn.useExpr(n.Fn)
		rn.useExpr(n.Arg)

	case *ast.Lambda:
		rn.Scopes.NewScope()
		for _, p := range n.Params {
			rn.declarePatternVars(p)
		}
		for _, p := range n.Params {
			rn.usePattern(p)
		}
		rn.useExpr(n.Body)
		rn.Scopes.PopScope()

	case *ast.Let:
		rn.Scopes.NewScope()
		rn.declareBlock(n.Decls)
		rn.useBlock(n.Decls)
		rn.useExpr(n.Body)
		rn.Scopes.PopScope()

	case *ast.If:
		rn.useExpr(n.Cond)
		rn.useExpr(n.Then)
		rn.useExpr(n.Else)

	case *ast.Case:
		rn.useExpr(n.Scrutinee)
		for _, alt := range n.Alts {
			rn.Scopes.NewScope()
			rn.declarePatternVars(alt.Pattern)
			rn.usePattern(alt.Pattern)
			rn.useRHS(alt.RHS)
			rn.Scopes.PopScope()
		}

	case *ast.Do:
		rn.Scopes.NewScope()
		for _, s := range n.Stmts {
			switch s := s.(type) {
			case *ast.DoBind:
				rn.useExpr(s.Expr)
				rn.declarePatternVars(s.Pattern)
				rn.usePattern(s.Pattern)
			case *ast.DoExprStmt:
				rn.useExpr(s.Expr)
			default:
				rn.declareBlock([]ast.Node{s})
				rn.useBlock([]ast.Node{s})
			}
		}
		rn.Scopes.PopScope()

	case *ast.ListExpr:
		for _, e := range n.Elements {
			rn.useExpr(e)
		}
	case *ast.ArrayExpr:
		for _, e := range n.Elements {
			rn.useExpr(e)
		}
	case *ast.TupleExpr:
		for _, e := range n.Elements {
			rn.useExpr(e)
		}

	case *ast.ArithSeq:
		rn.useExpr(n.From)
		rn.useExpr(n.To)
		rn.useExpr(n.Then)

	case *ast.LeftSection:
		if id := rn.Scopes.Find(n.Op.ID); id != 0 {
			n.OpRef = id
		}
		rn.useExpr(n.Expr)
	case *ast.RightSection:
		if id := rn.Scopes.Find(n.Op.ID); id != 0 {
			n.OpRef = id
		}
		rn.useExpr(n.Expr)

	case *ast.BinOp:
		if id := rn.Scopes.Find(n.Op.ID); id != 0 {
			n.OpRef = id
		} else {
			rn.Bag.Add(diag.New(diag.KindUnboundVariable, n.Pos(), "unbound operator method %q", rn.Interner.MustLookup(n.Op.ID)))
		}
		rn.useExpr(n.Left)
		rn.useExpr(n.Right)

	case *ast.UnOp:
		if id := rn.Scopes.Find(n.Op.ID); id != 0 {
			n.OpRef = id
		}
		rn.useExpr(n.Right)

	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.CharLit:
		// leaves

	default:
		panic("rename: unhandled expression node in use pass")
	}
}

func (rn *Renamer) useType(n ast.Node) {
	if n == nil {
		return
	}
	switch n := n.(type) {
	case *ast.SimpleType:
		if id := rn.Scopes.Find(n.Sym.ID); id != 0 {
			n.Ref = id
		} else {
			rn.Bag.Add(diag.New(diag.KindUnboundVariable, n.Pos(), "unbound type %q", rn.Interner.MustLookup(n.Sym.ID)))
		}
	case *ast.TypeVar:
		if id := rn.Scopes.Find(n.Sym.ID); id != 0 {
			n.Def = id
		}
	case *ast.TypeApp:
		rn.useType(n.Fn)
		for _, a := range n.Args {
			rn.useType(a)
		}
	case *ast.FunType:
		for _, p := range n.Params {
			rn.useType(p)
		}
		rn.useType(n.Return)
	}
}
