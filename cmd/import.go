package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"catalog-manager/core/catalog"
	"catalog-manager/core/config"
	"catalog-manager/core/idmap"
	"catalog-manager/core/logger"
	"catalog-manager/core/reconcile"
	"catalog-manager/feature/launchbox"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the import command
	dryRunImport    bool
	yesConfirm      bool
	fuzzyThreshold  float64
	showAllOutcomes bool
)

// importCmd merges a LaunchBox XML export into the catalog.
var importCmd = &cobra.Command{
	Use:   "import <launchbox.xml>",
	Short: "Import LaunchBox metadata into the catalog",
	Long: `Import publisher, year and genre metadata from a LaunchBox XML export.

Entries are matched against the catalog through the LBMAP.DAT identity map
first, then by fuzzy title matching; unmatched entries are appended as new
catalog records. Identity mappings are recorded so re-imports resolve
exactly. Ambiguous fuzzy matches are skipped and reported for manual review.

Examples:
  # Report what an import would do, without writing
  catalog-manager import LaunchBox.xml --dry-run

  # Import with interactive confirmation
  catalog-manager import LaunchBox.xml

  # Import non-interactively
  catalog-manager import LaunchBox.xml --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&dryRunImport, "dry-run", false, "Plan and report without writing any file")
	importCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the import (non-interactive)")
	importCmd.Flags().Float64Var(&fuzzyThreshold, "threshold", 0, "Override the fuzzy match threshold (0 = configured value)")
	importCmd.Flags().BoolVar(&showAllOutcomes, "verbose-report", false, "List every resolved entry instead of a sample")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if fuzzyThreshold > 0 {
		cfg.Import.FuzzyThreshold = fuzzyThreshold
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	l.Info("Starting LaunchBox import",
		zap.String("xml", args[0]),
		zap.String("catalog", cfg.Catalog.Path),
		zap.Bool("dry_run", dryRunImport),
	)

	// Parse the export up front; a malformed file should fail before any
	// store is touched.
	batch, err := launchbox.ParseFile(args[0])
	if err != nil {
		return err
	}
	l.Info("Parsed LaunchBox export", zap.Int("games", len(batch)))

	if !dryRunImport && !yesConfirm {
		if !confirmImport(len(batch)) {
			l.Warn("Import cancelled by user. No changes were made.")
			return nil
		}
	}

	store, maps, cleanup, err := openStores(cfg, l, dryRunImport)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := reconcile.NewEngine(store, maps, cfg.Import, l)
	report, err := engine.Reconcile(ctx, batch)

	// Print whatever was committed even when the batch aborted; partial
	// progress is durable and a retry resolves it via the identity map.
	printImportReport(l, report)

	if err != nil {
		return fmt.Errorf("import aborted: %w", err)
	}
	if dryRunImport {
		l.Info("Dry-run mode: No changes were made.")
	}
	return nil
}

// openStores opens the catalog and identity map files, or in-memory copies
// of them for a dry run. The returned cleanup closes whatever was opened.
func openStores(cfg *config.Config, l *zap.Logger, dryRun bool) (catalog.Store, idmap.Store, func(), error) {
	if dryRun {
		return openDryRunStores(cfg)
	}

	catalogFile, err := catalog.OpenFile(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	mapFile, err := idmap.OpenFile(cfg.Catalog.MapPath)
	if err != nil {
		catalogFile.Close()
		return nil, nil, nil, err
	}
	cleanup := func() {
		_ = mapFile.Close()
		_ = catalogFile.Close()
	}

	if cfg.Catalog.Backup {
		if err := backupFile(cfg.Catalog.Path); err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		l.Info("Backup written", zap.String("path", cfg.Catalog.Path+".bak"))
	}

	return catalogFile, mapFile, cleanup, nil
}

// openDryRunStores copies both files into memory so the plan runs against
// real data without creating or mutating anything on disk. A missing file
// plans as an empty store.
func openDryRunStores(cfg *config.Config) (catalog.Store, idmap.Store, func(), error) {
	memCatalog := catalog.NewMemoryStore()
	if file, err := catalog.OpenReadOnly(cfg.Catalog.Path); err == nil {
		scanErr := file.Scan(func(pos int, e catalog.Entry) bool {
			_, appendErr := memCatalog.Append(e)
			return appendErr == nil
		})
		file.Close()
		if scanErr != nil {
			return nil, nil, nil, scanErr
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil, err
	}

	memMaps := idmap.NewMemoryStore()
	if file, err := idmap.OpenReadOnly(cfg.Catalog.MapPath); err == nil {
		scanErr := file.Scan(func(m idmap.Mapping) bool {
			return memMaps.Append(m) == nil
		})
		file.Close()
		if scanErr != nil {
			return nil, nil, nil, scanErr
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil, err
	}

	return memCatalog, memMaps, func() {}, nil
}

// backupFile copies path to path.bak before a mutating import.
func backupFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("backup %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.Create(path + ".bak")
	if err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	return nil
}

// printImportReport prints a formatted reconciliation report using logger.
func printImportReport(l *zap.Logger, report *reconcile.Report) {
	l.Info("Import report",
		zap.Int("matched_exact", report.MatchedExact),
		zap.Int("matched_fuzzy", report.MatchedFuzzy),
		zap.Int("created", report.Created),
		zap.Int("ambiguous_skipped", len(report.Ambiguous)),
	)

	maxShow := 5
	if showAllOutcomes || len(report.Items) < maxShow {
		maxShow = len(report.Items)
	}
	for i := 0; i < maxShow; i++ {
		item := report.Items[i]
		fields := []zap.Field{
			zap.String("outcome", string(item.Outcome)),
			zap.String("title", item.Title),
			zap.Int("position", item.Position),
		}
		if item.Outcome == reconcile.OutcomeMatchedFuzzy {
			fields = append(fields, zap.Float64("score", item.Score))
		}
		l.Info("Resolved entry", fields...)
	}
	if len(report.Items) > maxShow {
		l.Info("Additional entries not shown", zap.Int("count", len(report.Items)-maxShow))
	}

	for _, amb := range report.Ambiguous {
		l.Warn("Ambiguous match needs manual review",
			zap.String("title", amb.Title),
			zap.Int32("database_id", amb.DatabaseID),
			zap.String("best", fmt.Sprintf("%q at %d (%.2f)", amb.Best.Title, amb.Best.Position, amb.Best.Score)),
			zap.String("second", fmt.Sprintf("%q at %d (%.2f)", amb.Second.Title, amb.Second.Position, amb.Second.Score)),
		)
	}
	for _, w := range report.Warnings {
		l.Warn(w)
	}
}

// confirmImport prompts the user before a mutating import.
func confirmImport(games int) bool {
	fmt.Printf("\nImport %d games into the catalog? Type 'yes' to confirm: ", games)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
