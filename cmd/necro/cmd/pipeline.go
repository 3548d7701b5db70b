package cmd

import (
	"fmt"
	"os"

	"github.com/curtismckinney/necronomicon/internal/ast"
	"github.com/curtismckinney/necronomicon/internal/core"
	"github.com/curtismckinney/necronomicon/internal/depanalysis"
	"github.com/curtismckinney/necronomicon/internal/diag"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/machine"
	"github.com/curtismckinney/necronomicon/internal/machine/lower"
	"github.com/curtismckinney/necronomicon/internal/machine/prim"
	"github.com/curtismckinney/necronomicon/internal/parseast/jsonio"
	"github.com/curtismckinney/necronomicon/internal/reify"
	"github.com/curtismckinney/necronomicon/internal/rename"
	"github.com/curtismckinney/necronomicon/internal/scope"
)

// Pipeline is every artifact produced by driving one parse AST document
// through the stages this binary owns: reification, renaming,
// dependency analysis, Core desugaring, and machine IR lowering.
type Pipeline struct {
	Interner *intern.Table
	Program  *ast.Program
	SCCs     []depanalysis.SCC
	Core     *core.Program
	Machine  *machine.Program
}

// RunPipeline reads a parse AST JSON document from path and drives it
// through the full pipeline in order. It returns the first diagnostic
// the renamer raised, if any (any later ones are not reported) — later
// stages don't run once renaming has
// failed; there is no error recovery beyond stopping at the first
// failure.
func RunPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("necro: read %s: %w", path, err)
	}
	arena, err := jsonio.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("necro: decode %s: %w", path, err)
	}

	interner := intern.New()
	prog := reify.New(interner).Program(arena)

	stack := scope.New()
	ids := prim.SeedScope(stack, interner)

	groups := depanalysis.NewRegistry()
	renamer := rename.New(stack, groups, interner)
	renamer.Program(prog)
	if renamer.Bag.HasErrors() {
		return nil, fmt.Errorf("necro: %s", diag.FormatAll(renamer.Bag.Errors()[:1], false))
	}

	sccs := depanalysis.Analyze(groups, stack.Table, prog.Decls)

	desugarer := core.NewDesugarer(stack.Table, interner)
	coreProg := desugarer.Program(prog)

	mprog := machine.NewProgram()
	handles := prim.Install(mprog, stack.Table, interner, ids)
	lowerer := lower.New(mprog, stack.Table, interner, handles)
	lowerer.Run(coreProg)

	return &Pipeline{
		Interner: interner,
		Program:  prog,
		SCCs:     sccs,
		Core:     coreProg,
		Machine:  mprog,
	}, nil
}
