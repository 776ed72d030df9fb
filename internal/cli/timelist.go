package cli

import (
	"fmt"
	"sort"

	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/timelist"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewTimelistCmd creates the timelist command
func NewTimelistCmd() *cobra.Command {
	var verifyRoot string

	cmd := &cobra.Command{
		Use:   "timelist FILE",
		Short: "Inspect a fullfiletimelist mirror manifest",
		Long: `Parses a fullfiletimelist manifest and reports the repositories it
lists, the compression extensions of their repodata files and, with
--verify, which files of a local mirror disagree with its checksums.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, err := timelist.ParseFile(args[0])
			if err != nil {
				return &models.PipelineError{
					Type: models.ErrDecode,
					Err:  fmt.Errorf("failed to parse %s: %w", args[0], err),
				}
			}

			logrus.Infof("Parsed %d files, %d checksums (version %d)", len(tl.Files), len(tl.Checksums), tl.Version)

			out := cmd.OutOrStdout()
			for _, repo := range tl.Repositories() {
				fmt.Fprintln(out, repo)
			}

			exts := tl.Extensions()
			names := make([]string, 0, len(exts))
			for ext := range exts {
				names = append(names, ext)
			}
			sort.Strings(names)
			for _, ext := range names {
				fmt.Fprintf(out, "%s\t%d\n", ext, exts[ext])
			}

			if verifyRoot == "" {
				return nil
			}

			mismatches, err := tl.Verify(verifyRoot)
			if err != nil {
				return err
			}
			for _, m := range mismatches {
				logrus.Warnf("%s: %v", m.Path, m.Err)
			}
			if len(mismatches) > 0 {
				return &models.PipelineError{
					Type: models.ErrChecksum,
					Err:  fmt.Errorf("%d of %d files do not match", len(mismatches), len(tl.Checksums)),
				}
			}
			logrus.Info("All checksums match")
			return nil
		},
	}

	cmd.Flags().StringVar(&verifyRoot, "verify", "", "Verify checksums against a local mirror rooted here")

	return cmd
}
