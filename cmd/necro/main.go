// Command necro drives the compiler pipeline end to end: reification,
// renaming, dependency analysis, Core desugaring, and machine IR
// lowering, over a parse AST handed to it as JSON (the lexer and parser
// that would produce that AST are external collaborators).
package main

import (
	"fmt"
	"os"

	"github.com/curtismckinney/necronomicon/cmd/necro/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
