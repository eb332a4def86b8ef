package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parsegen/lalr/driver"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run <grammar file path> <tokens file path>",
		Short: "Check whether a token stream is in a grammar's language",
		Example: `  lalrgen run grammar.json tokens.json
  # tokens.json is a JSON array of terminal indices, EOF excluded`,
		Args: cobra.ExactArgs(2),
		RunE: runRun,
	}
	rootCmd.AddCommand(cmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(args[0])
	if err != nil {
		return fmt.Errorf("cannot read grammar: %w", err)
	}

	tokens, err := readTokens(args[1])
	if err != nil {
		return fmt.Errorf("cannot read tokens: %w", err)
	}

	a, _, rep, err := driver.NewAcceptorForGrammar(g)
	if err != nil {
		return fmt.Errorf("cannot compile grammar: %w", err)
	}
	if rep.ErrorCount > 0 {
		return fmt.Errorf("grammar has %d error(s)", rep.ErrorCount)
	}

	accepted, err := a.Accept(tokens)
	if err != nil {
		return fmt.Errorf("acceptance walk failed: %w", err)
	}
	if !accepted {
		fmt.Fprintln(os.Stdout, "reject")
		return errors.New("token stream rejected")
	}
	fmt.Fprintln(os.Stdout, "accept")
	return nil
}

func readTokens(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var tokens []int
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}
