package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQueryCommand(a *app) *cobra.Command {
	var (
		question string
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer a single question",
		RunE: func(cmd *cobra.Command, args []string) error {
			if question == "" && len(args) > 0 {
				question = strings.Join(args, " ")
			}
			if strings.TrimSpace(question) == "" {
				return errors.New(`please provide -q "your question"`)
			}

			ctx := cmd.Context()
			rt, err := a.buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			state, err := rt.engine.Run(ctx, question)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				if state.Category != "" {
					fmt.Fprintln(out, "Category:", state.Category)
				}
				stages := make([]string, len(state.Path))
				for i, s := range state.Path {
					stages[i] = string(s)
				}
				fmt.Fprintln(out, "Path:", strings.Join(stages, " -> "))
				fmt.Fprintln(out, "Documents:", len(state.Documents))
			}
			fmt.Fprintln(out, "Answer:", state.Generation)
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question text")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print category, stage path and document count")
	return cmd
}
