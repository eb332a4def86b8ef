package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parsegen/lalr/driver"
	"github.com/parsegen/lalr/input"
	"github.com/parsegen/lalr/report"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile [grammar file path]",
		Short:   "Compile a grammar into a parsing table",
		Example: `  lalrgen compile grammar.json -o grammar.tables.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}

	g, err := readGrammar(grmPath)
	if err != nil {
		return fmt.Errorf("cannot read grammar: %w", err)
	}

	tables, rep, err := driver.Compile(g)
	if err != nil {
		return fmt.Errorf("cannot compile grammar: %w", err)
	}
	if tables == nil {
		if err := writeReport(rep, reportPathFor(grmPath, *compileFlags.output)); err != nil {
			return fmt.Errorf("cannot write report: %w", err)
		}
		return fmt.Errorf("grammar has %d error(s), see the report for details", rep.ErrorCount)
	}

	if err := writeTables(tables, *compileFlags.output); err != nil {
		return fmt.Errorf("cannot write compiled tables: %w", err)
	}
	if err := writeReport(rep, reportPathFor(grmPath, *compileFlags.output)); err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}

	if rep.ConflictCount > 0 {
		fmt.Fprintf(os.Stdout, "%d conflict(s)\n", rep.ConflictCount)
	}
	return nil
}

func readGrammar(path string) (*input.Grammar, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open grammar file %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	g := &input.Grammar{}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, err
	}
	return g, nil
}

func writeTables(tables *input.CompiledTables, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	b, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func writeReport(rep *report.Report, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return rep.WriteJSON(f)
}

// reportPathFor derives the report's file path from the output tables
// path, since the report is always written to a file alongside the
// compiled tables, never to stdout.
func reportPathFor(grmPath, outputPath string) string {
	base := "grammar"
	if grmPath != "" {
		base = strings.TrimSuffix(filepath.Base(grmPath), filepath.Ext(grmPath))
	}
	dir := "."
	if outputPath != "" {
		dir = filepath.Dir(outputPath)
	}
	return filepath.Join(dir, base+"-report.json")
}
