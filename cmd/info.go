package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"catalog-manager/core/catalog"
	"catalog-manager/core/config"
	"catalog-manager/core/idmap"
	"catalog-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// infoCmd prints catalog statistics.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show catalog statistics",
	Long: `Show record counts, tombstones, identity map coverage and the genre
breakdown of the catalog.`,
	RunE: runInfo,
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := catalog.OpenReadOnly(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	// A missing map file only means no accelerated matching; anything else
	// is a real fault.
	var maps idmap.Store = idmap.NewMemoryStore()
	if fileMaps, err := idmap.OpenReadOnly(cfg.Catalog.MapPath); err == nil {
		defer fileMaps.Close()
		maps = fileMaps
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	var live, tombstoned, unknownGenres int
	genres := make(map[uint8]int)
	err = store.Scan(func(pos int, e catalog.Entry) bool {
		if e.Deleted {
			tombstoned++
			return true
		}
		live++
		if catalog.GenreKnown(e.Genre) {
			genres[e.Genre]++
		} else {
			unknownGenres++
		}
		return true
	})
	if err != nil {
		return err
	}

	// Identity map coverage: distinct live positions with a mapping.
	mapped := make(map[int]struct{})
	err = maps.Scan(func(m idmap.Mapping) bool {
		if m.Position > 0 {
			mapped[m.Position] = struct{}{}
		}
		return true
	})
	if err != nil {
		return err
	}

	l.Info("Catalog",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("records", store.Count()),
		zap.Int("live", live),
		zap.Int("tombstoned", tombstoned),
	)
	l.Info("Identity map",
		zap.String("path", cfg.Catalog.MapPath),
		zap.Int("records", maps.Count()),
		zap.Int("mapped_positions", len(mapped)),
	)
	if unknownGenres > 0 {
		l.Warn("Entries with genre codes outside the table", zap.Int("count", unknownGenres))
	}

	codes := make([]uint8, 0, len(genres))
	for code := range genres {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return genres[codes[i]] > genres[codes[j]] })
	for _, code := range codes {
		fmt.Printf("%5d  %s\n", genres[code], catalog.GenreName(code))
	}
	return nil
}
