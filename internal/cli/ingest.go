package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/pipeline"
	"github.com/ralt/rpmexplorer/internal/scanner"
	"github.com/ralt/rpmexplorer/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type ingestOptions struct {
	configPath string
	jsonPath   string
	latest     bool
	strict     bool
}

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	config := models.DefaultConfig()
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest repository metadata",
		Long: `Scans the repository directory for repodata/repomd.xml indexes and
ingests every repository found: the index is resolved, each selected
artifact is materialized in the working directory, decoded and normalized.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Config file values sit below explicitly set flags
			if opts.configPath != "" {
				loaded, err := models.LoadConfig(opts.configPath)
				if err != nil {
					return err
				}
				config = mergeFlags(cmd, loaded, config)
			}

			if err := config.Validate(); err != nil {
				return err
			}

			logrus.Info("Starting metadata ingestion...")
			logrus.Debugf("Configuration: %+v", config)

			return runIngest(cmd.Context(), cmd, &config, opts)
		},
	}

	// Input/Output flags
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVarP(&config.RepoDir, "repo-dir", "i", config.RepoDir, "Directory tree holding repositories")
	cmd.Flags().StringVarP(&config.WorkDir, "workdir", "w", config.WorkDir, "Working directory for materialized artifacts")
	cmd.Flags().BoolVar(&config.KeepWorkDir, "keep-workdir", false, "Keep materialized artifacts after the run")

	// Pipeline flags
	cmd.Flags().IntVarP(&config.Jobs, "jobs", "j", config.Jobs, "Categories processed concurrently")
	cmd.Flags().BoolVar(&config.VerifyChecksums, "verify", false, "Verify artifact checksums")
	cmd.Flags().StringVarP(&config.KeyringPath, "keyring", "k", "", "Public keyring used to verify repomd.xml.asc")
	cmd.Flags().StringSliceVar(&config.Categories, "categories", nil, "Only ingest these repomd types")
	cmd.Flags().IntSliceVar(&config.SupportedDatabaseVersions, "db-versions", config.SupportedDatabaseVersions, "Supported sqlite database versions")

	// Output flags
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "Write canonical collections as JSON to this file")
	cmd.Flags().BoolVar(&opts.latest, "latest", false, "Print the newest build of every package")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when any record was rejected")

	return cmd
}

// mergeFlags overlays explicitly set flags on a loaded config
func mergeFlags(cmd *cobra.Command, loaded, flags models.Config) models.Config {
	set := cmd.Flags().Changed
	if set("repo-dir") {
		loaded.RepoDir = flags.RepoDir
	}
	if set("workdir") {
		loaded.WorkDir = flags.WorkDir
	}
	if set("keep-workdir") {
		loaded.KeepWorkDir = flags.KeepWorkDir
	}
	if set("jobs") {
		loaded.Jobs = flags.Jobs
	}
	if set("verify") {
		loaded.VerifyChecksums = flags.VerifyChecksums
	}
	if set("keyring") {
		loaded.KeyringPath = flags.KeyringPath
	}
	if set("categories") {
		loaded.Categories = flags.Categories
	}
	if set("db-versions") {
		loaded.SupportedDatabaseVersions = flags.SupportedDatabaseVersions
	}
	return loaded
}

func runIngest(ctx context.Context, cmd *cobra.Command, config *models.Config, opts ingestOptions) error {
	// Step 1: Scan for repositories
	logrus.Infof("Scanning directory: %s", config.RepoDir)
	sc := scanner.NewFileSystemScanner()
	repos, err := sc.Scan(ctx, config.RepoDir)
	if err != nil {
		return &models.PipelineError{
			Type: models.ErrFileOp,
			Err:  fmt.Errorf("failed to scan directory: %w", err),
		}
	}

	if len(repos) == 0 {
		logrus.Warn("No repositories found in repo directory")
		return nil
	}

	// Step 2: Prepare the working directory
	ws := &workspace{keep: config.KeepWorkDir}
	if err := ws.prepare(config.WorkDir); err != nil {
		return err
	}
	defer ws.cleanup()

	// Step 3: Ingest each repository into its own working subdirectory
	var reports []*repoReport
	failed := 0
	rejected := 0

	for _, repo := range repos {
		repoConfig := *config
		repoConfig.RepoDir = repo.Root
		repoConfig.WorkDir = filepath.Join(config.WorkDir, workSubdir(config.RepoDir, repo.Root))

		logger := logrus.WithField("repo", repo.Root)
		if err := ws.prepare(repoConfig.WorkDir); err != nil {
			return err
		}
		if config.KeyringPath != "" && !repo.Signed() {
			logger.Warn("Repository has no index signature")
		}

		p, err := pipeline.New(&repoConfig)
		if err != nil {
			return err
		}

		result, err := p.Run(ctx)
		if err != nil {
			logger.WithError(err).Error("Failed to ingest repository")
			failed++
			reports = append(reports, &repoReport{Root: repo.Root, Error: err.Error()})
			continue
		}

		for _, outcome := range result.Categories {
			if outcome.Err != nil {
				failed++
			}
			if outcome.Artifact != nil && outcome.Artifact.Copied {
				logger.Debugf("Materialized %s (%s in %d chunks)", outcome.Category,
					humanize.Bytes(uint64(outcome.Artifact.Stats.Bytes)), outcome.Artifact.Stats.Chunks)
			}
		}
		rejected += result.Rejected()

		report := newRepoReport(repo.Root, result)
		reports = append(reports, report)
		logger.Infof("Ingested %d entities from %d categories (%d rejected)",
			report.total(), len(result.Categories), result.Rejected())

		if opts.latest {
			if err := printLatest(cmd.OutOrStdout(), repo.Root, result.LatestPackages()); err != nil {
				return err
			}
		}
	}

	// Step 4: Write the JSON dump
	if opts.jsonPath != "" {
		if err := writeJSON(opts.jsonPath, reports); err != nil {
			return &models.PipelineError{
				Type: models.ErrFileOp,
				Err:  fmt.Errorf("failed to write %s: %w", opts.jsonPath, err),
			}
		}
		logrus.Infof("Wrote %s", opts.jsonPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d categories or repositories failed to ingest", failed)
	}
	if opts.strict && rejected > 0 {
		return fmt.Errorf("%d records were rejected", rejected)
	}

	logrus.Info("Metadata ingestion completed successfully!")
	return nil
}

// workspace tracks the directories a run created so that they can be
// removed once it ends.
type workspace struct {
	keep    bool
	created []string
}

// prepare creates dir if needed
func (w *workspace) prepare(dir string) error {
	exists, err := dirExists(dir)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := utils.EnsureDir(dir); err != nil {
		return &models.PipelineError{
			Type: models.ErrFileOp,
			Err:  fmt.Errorf("failed to create working directory: %w", err),
		}
	}
	w.created = append(w.created, dir)
	return nil
}

func (w *workspace) cleanup() {
	if w.keep {
		for _, dir := range w.created {
			logrus.Infof("Working directory kept at %s", dir)
		}
		return
	}
	// newest first so nested directories go before their parents
	for i := len(w.created) - 1; i >= 0; i-- {
		if err := os.RemoveAll(w.created[i]); err != nil {
			logrus.Warnf("Failed to remove working directory: %v", err)
		}
	}
}

func dirExists(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", dir)
	}
	return true, nil
}

// workSubdir names the working subdirectory of a repository after its
// location inside the scanned tree. The digest suffix keeps "a/b" and "a_b"
// apart.
func workSubdir(tree, root string) string {
	rel, err := filepath.Rel(tree, root)
	if err != nil || rel == "." {
		return "root"
	}
	sum, err := utils.CalculateChecksum([]byte(filepath.ToSlash(rel)), "sha256")
	if err != nil {
		return "root"
	}
	return fmt.Sprintf("%s-%s", strings.ReplaceAll(rel, string(filepath.Separator), "_"), sum[:12])
}
