package prim

import (
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/scope"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// termNames and typeNames list the builtin names SeedScope declares
// before Install's machine.Program exists to back them: the
// numeric-literal wrappers ("fromInt L"/"fromRational L"), the
// arithmetic method names add/sub/mul/div a BinOp rewrites to, and the
// fixed constructor/type roster. The other method names internal/reify
// and internal/core's desugarer can emit (eq, neq, lt, gt, lte, gte,
// bind, append, enumFrom*) are not listed.
var termNames = []struct {
	name  string
	arity int
}{
	{"fromInt", 1}, {"fromRational", 1},
	{"add", 2}, {"sub", 2}, {"mul", 2}, {"div", 2},
	{"()", 0}, {"[]", 0}, {":", 2},
	{"Nothing", 0}, {"Just", 1},
	{"Array", 1}, {"Rational", 2}, {"Audio", 1},
}

var typeNames = []string{"()", "List", "Maybe", "Array", "Rational", "Audio", "Int", "Float"}

// PreludeIDs is the pair of name->id maps SeedScope populates, kept by
// namespace since the term and type namespaces both use bare names like
// "()" and "Array" (the Namespace field is what tells them apart) and a
// single combined map would collide on those.
type PreludeIDs struct {
	Terms map[string]symtable.ID
	Types map[string]symtable.ID
}

// SeedScope pre-declares every builtin name's symbol-table row against
// stack's global scope before any user source is renamed. This has to
// happen in two steps, not one: the renamer's use pass must already
// find these names bound the moment it sees the reifier's
// "fromInt"/"add" references, but their real definitions (the FnDefs a
// later Install call builds) can't exist until a machine.Program and
// build.Builder are available, which is only true once lowering
// starts. SeedScope creates the rows early; Install later looks each
// one up by name and fills in its CurrentNode/arity/constructor fields
// in place, rather than inserting a second, disconnected row.
func SeedScope(stack *scope.Stack, interner *intern.Table) PreludeIDs {
	ids := PreludeIDs{
		Terms: make(map[string]symtable.ID, len(termNames)),
		Types: make(map[string]symtable.ID, len(typeNames)),
	}
	for _, t := range termNames {
		sym := interner.Intern(t.name)
		ids.Terms[t.name] = stack.Declare(sym.ID, symtable.Record{Name: sym, Arity: t.arity, Namespace: symtable.TermNamespace})
	}
	for _, name := range typeNames {
		sym := interner.Intern(name)
		ids.Types[name] = stack.Declare(sym.ID, symtable.Record{Name: sym, Arity: -1, Namespace: symtable.TypeNamespace})
	}
	return ids
}
