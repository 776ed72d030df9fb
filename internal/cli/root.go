package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpmexplorer",
		Short: "Resolve and normalize RPM repository metadata",
		Long: `Rpmexplorer reads the repomd index of RPM repositories, picks the
best representation of each metadata artifact, decompresses and decodes it,
and normalizes the records into canonical package entities.

Supported artifacts:
  - primary, filelists, other (XML and sqlite forms)
  - group / group_gz (comps)
  - updateinfo`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewTimelistCmd())

	return rootCmd
}
