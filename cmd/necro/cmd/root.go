package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "necro",
	Short: "Front-to-mid pipeline for a stateful, node-based functional language",
	Long: `necro reifies a compact parse AST into a pointer-linked semantic AST,
resolves every name against a lexical scope stack, orders top-level and
local declarations into dependency-sorted mutually-recursive groups, and
lowers the desugared Core representation into a typed, closure-aware
machine IR where every binding is a stateful node.

Lexing, parsing, type inference/type-class elaboration, and final native
code generation are external collaborators; this binary covers the
stages in between.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
