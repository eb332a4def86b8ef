package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lalrgen",
	Short: "Build an LALR(1) parsing table from a pre-built grammar",
	Long: `lalrgen provides three features:
- Compiles a grammar into a portable LALR(1) parsing table.
- Describes a compiled grammar's states, conflicts, and diagnostics.
- Runs a token stream against a grammar to check it's in the language.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
