package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/curtismckinney/necronomicon/internal/machine/printer"
)

var (
	compileConfigPath string
	compileDumpAST    bool
	compileDumpCore   bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <parse-ast.json>",
	Short: "Drive a parse AST through reification, renaming, dependency analysis, and machine IR lowering",
	Long: `compile reads a parse AST arena serialized as JSON (the shape
internal/parseast/jsonio.Decode expects), runs it through every stage
this pipeline owns, and prints the resulting machine program.

A --config file (YAML) may set default dump flags; explicit flags always
win over the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compileConfigPath, "config", "", "optional YAML config file")
	compileCmd.Flags().BoolVar(&compileDumpAST, "dump-ast", false, "print the reified semantic AST's top-level shape before lowering")
	compileCmd.Flags().BoolVar(&compileDumpCore, "dump-core", false, "print the desugared Core program's top-level shape before lowering")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(compileConfigPath)
	if err != nil {
		return fmt.Errorf("necro: %w", err)
	}
	dumpAST := compileDumpAST || (!cmd.Flags().Changed("dump-ast") && cfg.DumpAST)
	dumpCore := compileDumpCore || (!cmd.Flags().Changed("dump-core") && cfg.DumpCore)

	pipe, err := RunPipeline(args[0])
	if err != nil {
		return err
	}

	if dumpAST {
		printDeclKinds(cmd.OutOrStdout(), pipe)
	}
	if dumpCore {
		fmt.Fprintf(cmd.OutOrStdout(), "; %d top-level Core declaration(s), %d SCC group(s)\n", len(pipe.Core.Decls()), len(pipe.SCCs))
	}

	p := printer.New(cmd.OutOrStdout(), pipe.Interner)
	p.Print(pipe.Machine)
	return nil
}

func printDeclKinds(w io.Writer, pipe *Pipeline) {
	fmt.Fprintf(w, "; %d top-level declaration(s)\n", len(pipe.Program.Decls))
	for _, d := range pipe.Program.Decls {
		fmt.Fprintf(w, ";   %s\n", d.Kind())
	}
}
