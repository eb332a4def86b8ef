package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/parsegen/lalr/report"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe <report file path>",
		Short:   "Print a compiled grammar's report in a readable format",
		Example: `  lalrgen describe grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	rep, err := readReport(args[0])
	if err != nil {
		return fmt.Errorf("cannot read report: %w", err)
	}
	return writeDescription(os.Stdout, rep)
}

func readReport(path string) (*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	rep := &report.Report{}
	if err := json.Unmarshal(data, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func writeDescription(w io.Writer, rep *report.Report) error {
	fmt.Fprintf(w, "states: %d, rules: %d, symbols: %d, terminals: %d\n",
		rep.NState, rep.NRule, rep.NSymbol, rep.NTerminal)

	switch rep.ConflictCount {
	case 0:
		fmt.Fprintln(w, "no conflicts")
	case 1:
		fmt.Fprintln(w, "1 conflict")
	default:
		fmt.Fprintf(w, "%d conflicts\n", rep.ConflictCount)
	}
	for _, c := range rep.Conflicts {
		fmt.Fprintf(w, "  state %d: %s\n", c.State, c.Message)
	}

	if len(rep.Unreducible) > 0 {
		fmt.Fprintf(w, "%d unreducible rule(s):\n", len(rep.Unreducible))
		for _, r := range rep.Unreducible {
			fmt.Fprintf(w, "  %s\n", r)
		}
	}

	if rep.ErrorCount > 0 {
		fmt.Fprintf(w, "%d error(s):\n", rep.ErrorCount)
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	return nil
}
