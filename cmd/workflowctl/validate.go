package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/workflowengine/internal/configsource"
	"github.com/alexisbeaulieu97/workflowengine/internal/validate"
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Statically validate a workflow configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := configsource.Load(configPath)
			if err != nil {
				return err
			}

			result := validate.Default().Validate(doc)
			if result.Valid() {
				fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
				return nil
			}

			for _, verr := range result.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), verr.Error())
			}
			return fmt.Errorf("%d validation error(s) found", len(result.Errors))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the workflow configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
