// Package depanalysis implements the dependency analyzer: Tarjan's
// strongly-connected-components algorithm over one declaration block's
// bindings, so mutually recursive definitions land in a single group and
// independent ones are ordered by dependency.
//
// Grounded on: internal/semantic/pass_context.go's shared per-block
// analysis-context idiom (one context object threaded through a
// traversal, mutated in place), generalized here to Tarjan's algorithm,
// which no retrieved example ships, so it is implemented directly
// rather than adapted from a library.
package depanalysis

import (
	"github.com/curtismckinney/necronomicon/internal/ast"
	"github.com/curtismckinney/necronomicon/internal/diag"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// GroupID identifies one DeclarationGroup record. It is the same integer
// space as symtable.GroupID; the two are kept as distinct named types at
// the package boundary (symtable must not import depanalysis) and
// converted at the edges.
type GroupID = symtable.GroupID

// Group is one DeclarationGroup skeleton: created by the renamer when a
// name is declared, populated by this package's Tarjan pass. Index -1
// means "not yet visited".
type Group struct {
	ID      GroupID
	Decl    ast.Node // the (head, for multi-clause) declaration this group wraps
	Index   int
	Lowlink int
	OnStack bool
	// Next links the DeclarationGroup records of a multi-clause binding's
	// later clauses to the first. Analyze neither reads nor clears it: a
	// multi-clause binding is analyzed as its head clause's group alone
	// (see dependencies), and the later clauses' groups are never visited.
	Next GroupID
}

// Registry owns every Group created while renaming one compilation unit.
type Registry struct {
	groups []Group
}

func NewRegistry() *Registry {
	return &Registry{groups: make([]Group, 1)} // id 0 reserved
}

// New creates a fresh, unvisited group wrapping decl and returns its id.
func (r *Registry) New(decl ast.Node) GroupID {
	id := GroupID(len(r.groups))
	r.groups = append(r.groups, Group{ID: id, Decl: decl, Index: -1})
	return id
}

func (r *Registry) Get(id GroupID) *Group { return &r.groups[id] }

// SCC is one output node of the DeclarationGroupList: the set of
// declaration groups that are mutually dependent (a single binding is its
// own trivial SCC of size one).
type SCC struct {
	Members []GroupID
}

// info is the per-block Tarjan bookkeeping.
type info struct {
	reg     *Registry
	table   *symtable.Table
	index   int
	stack   []GroupID
	current GroupID
	out     []SCC
}

// Analyze runs the fixed-phase Tarjan pass over one declaration block and
// returns its DeclarationGroupList. Phase order: data declarations, then
// class/instance declarations, then type signatures, then terms — so
// type-constructor and class-method uses resolve their dependency groups
// before term-level recursion is analyzed.
//
// Open question resolved (recorded in DESIGN.md): SCCs are appended to the
// output in the order strong_connect_exit pops them, which is
// dependencies-first — a group's dependencies appear before the group
// itself.
func Analyze(reg *Registry, table *symtable.Table, decls []ast.Node) []SCC {
	in := &info{reg: reg, table: table}

	phase := func(pick func(ast.Node) bool) {
		for _, d := range decls {
			if !pick(d) {
				continue
			}
			g := groupOf(table, d)
			if g == 0 {
				continue
			}
			if reg.Get(g).Index == -1 {
				in.strongConnect(g)
			}
		}
	}

	phase(func(n ast.Node) bool { _, ok := n.(*ast.DataDecl); return ok })
	phase(func(n ast.Node) bool {
		switch n.(type) {
		case *ast.ClassDecl, *ast.InstanceDecl:
			return true
		}
		return false
	})
	phase(func(n ast.Node) bool { _, ok := n.(*ast.TypeSig); return ok })
	phase(func(n ast.Node) bool {
		switch n.(type) {
		case *ast.SimpleAssignment, *ast.ApatsAssignment, *ast.PatAssignment:
			return true
		}
		return false
	})

	return in.out
}

// groupOf extracts the GroupID a declaration's bound symbol carries. Not
// every node shape declares exactly one symbol (a PatAssignment can
// destructure several); by convention the renamer stamps the same Group
// id on every name a single declaration binds, so reading any one of them
// is sufficient.
func groupOf(table *symtable.Table, n ast.Node) GroupID {
	switch n := n.(type) {
	case *ast.SimpleAssignment:
		return recGroup(table, n.NameDef)
	case *ast.ApatsAssignment:
		return recGroup(table, n.NameDef)
	case *ast.PatAssignment:
		return firstPatGroup(table, n.Pattern)
	case *ast.TypeSig:
		return recGroup(table, n.NameDef)
	case *ast.DataDecl:
		return recGroup(table, n.NameDef)
	case *ast.ClassDecl:
		return recGroup(table, n.NameDef)
	case *ast.InstanceDecl:
		// Instance declarations bind no new symbol of their own; they are
		// analyzed (for the methods' internal recursion) but never head a
		// group other declarations depend on.
		return 0
	default:
		return 0
	}
}

func recGroup(table *symtable.Table, id symtable.ID) GroupID {
	if id == 0 {
		return 0
	}
	return table.Get(id).Group
}

func firstPatGroup(table *symtable.Table, pat ast.Node) GroupID {
	var found GroupID
	ast.Walk(pat, func(n ast.Node) {
		if found != 0 {
			return
		}
		if pv, ok := n.(*ast.PatVar); ok && pv.Def != 0 {
			found = recGroup(table, pv.Def)
		}
	})
	return found
}

func (in *info) strongConnect(v GroupID) {
	g := in.reg.Get(v)
	if g.Index != -1 {
		diag.Bug("depanalysis: group %d entered strongConnect twice", v)
	}
	g.Index = in.index
	g.Lowlink = in.index
	in.index++
	in.stack = append(in.stack, v)
	g.OnStack = true

	saved := in.current
	in.current = v
	for _, w := range in.dependencies(v) {
		if w == v {
			continue
		}
		wg := in.reg.Get(w)
		if wg.Index == -1 {
			in.strongConnect(w)
			g.Lowlink = min(g.Lowlink, in.reg.Get(w).Lowlink)
		} else if wg.OnStack {
			g.Lowlink = min(g.Lowlink, wg.Index)
		}
	}
	in.current = saved

	if g.Lowlink == g.Index {
		var members []GroupID
		for {
			n := len(in.stack) - 1
			w := in.stack[n]
			in.stack = in.stack[:n]
			in.reg.Get(w).OnStack = false
			members = append(members, w)
			if w == v {
				break
			}
		}
		in.out = append(in.out, SCC{Members: members})
	}
}

// dependencies returns every group v's declaration's body refers to. For
// a multi-clause binding, ast.Walk follows the head clause's NextClause
// chain, so every clause's references count toward v itself; no
// per-clause lowlinks are kept or merged.
func (in *info) dependencies(v GroupID) []GroupID {
	g := in.reg.Get(v)
	var deps []GroupID
	seen := map[GroupID]bool{}
	ast.Walk(g.Decl, func(n ast.Node) {
		var ref symtable.ID
		switch n := n.(type) {
		case *ast.VarRef:
			ref = n.Ref
		case *ast.ConRef:
			ref = n.Ref
		default:
			return
		}
		if ref == 0 {
			return
		}
		dg := recGroup(in.table, ref)
		if dg == 0 || dg == v || seen[dg] {
			return
		}
		seen[dg] = true
		deps = append(deps, dg)
	})
	return deps
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
