package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edify-labs/edify/internal/build"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "edify",
		Short:         "AI teaching tools for lesson planning and assessment",
		Long:          "Edify serves AI tools that help teachers plan lessons, build rubrics and write model answers.",
		Version:       build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), build.String())
		},
	}
}
