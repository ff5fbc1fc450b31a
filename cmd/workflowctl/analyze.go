package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/workflowengine/internal/analyzer"
	"github.com/alexisbeaulieu97/workflowengine/internal/configsource"
	"github.com/alexisbeaulieu97/workflowengine/internal/engine"
	"github.com/alexisbeaulieu97/workflowengine/internal/registry"
)

func newAnalyzeCmd(root *rootFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "analyze <workflow>",
		Short: "Report steps, transitions, dead-ends and cycles for a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(root)
			if err != nil {
				return err
			}

			doc, err := configsource.Load(configPath)
			if err != nil {
				return err
			}

			eng, err := engine.New(doc, registry.New(), log.Zerolog())
			if err != nil {
				return err
			}

			report, err := eng.AnalyzeWorkflow(args[0])
			if err != nil {
				return err
			}

			colorized := term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Fprint(cmd.OutOrStdout(), analyzer.New(colorized).Render(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the workflow configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
