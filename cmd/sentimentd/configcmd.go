package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reelsense/sentiment-api/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the YAML config file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a YAML file",
		Long: "Resolves the configuration (defaults, then --config file, then " +
			"environment) and writes the result, giving deployments a complete " +
			"file to edit.",
		Args: cobra.MaximumNArgs(1),
		Run:  runConfigInit,
	}
	cmd.AddCommand(initCmd)

	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}

	path := "config.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	if err := config.Save(path, cfg); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
}
