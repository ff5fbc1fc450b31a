package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/workflowengine/internal/configsource"
	"github.com/alexisbeaulieu97/workflowengine/internal/engine"
	"github.com/alexisbeaulieu97/workflowengine/internal/registry"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowcontext"
)

func newRunCmd(root *rootFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run <workflow>",
		Short: "Execute a workflow to completion",
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

			result, err := eng.Run(context.Background(), args[0], workflowcontext.New())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Status, result.Message)
			if result.IsFailure() {
				return fmt.Errorf("workflow %q failed: %s", args[0], result.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the workflow configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
