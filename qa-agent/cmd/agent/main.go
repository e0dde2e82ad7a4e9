package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/config"
)

type app struct {
	configPath string
	cfg        *config.Config
	log        *logrus.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "agent",
		Short:         "Answer questions from indexed documents with web-search fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			log, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(newIndexCommand(a))
	cmd.AddCommand(newQueryCommand(a))
	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newStatsCommand(a))
	return cmd
}
