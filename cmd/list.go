package cmd

import (
	"fmt"
	"strings"

	"catalog-manager/core/catalog"
	"catalog-manager/core/config"
	"catalog-manager/core/filter"
	"catalog-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the list command
	listTitle     string
	listPublisher string
	listYear      string
	listGenre     string
	listLegacy    string
	listFM        string
	listMIDI      string
	listGraphics  string
	listNoCD      bool
	listDeleted   bool
)

// listCmd filters and prints catalog entries.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries matching the given filters",
	Long: `List catalog entries. All filters combine with AND; hardware filters
take comma-separated capability names and match any overlap.

Examples:
  # Every live entry
  catalog-manager list

  # Strategy titles from 1993 with SB16 or GUS FM sound
  catalog-manager list --genre Strategy --year 1993 --fm sb16,gus

  # VGA titles that run without a CD
  catalog-manager list --graphics vga --no-cd`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listTitle, "title", "", "Title substring (case-insensitive)")
	listCmd.Flags().StringVar(&listPublisher, "publisher", "", "Publisher substring (case-insensitive)")
	listCmd.Flags().StringVar(&listYear, "year", "", "Exact year text")
	listCmd.Flags().StringVar(&listGenre, "genre", "", "Genre name or code")
	listCmd.Flags().StringVar(&listLegacy, "sound", "", "Legacy sound capabilities (comma-separated)")
	listCmd.Flags().StringVar(&listFM, "fm", "", "FM sound capabilities (comma-separated)")
	listCmd.Flags().StringVar(&listMIDI, "midi", "", "MIDI capabilities (comma-separated)")
	listCmd.Flags().StringVar(&listGraphics, "graphics", "", "Graphics capabilities (comma-separated)")
	listCmd.Flags().BoolVar(&listNoCD, "no-cd", false, "Only titles that run without removable media")
	listCmd.Flags().BoolVar(&listDeleted, "deleted", false, "Include tombstoned entries")

	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	pred, err := buildPredicate()
	if err != nil {
		return err
	}

	store, err := catalog.OpenReadOnly(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	matched := 0
	err = filter.Apply(store, pred, func(pos int, e catalog.Entry) bool {
		matched++
		printEntry(pos, e)
		return true
	})
	if err != nil {
		return err
	}

	l.Info("Listing complete",
		zap.Int("matched", matched),
		zap.Int("total", store.Count()),
	)
	return nil
}

// buildPredicate translates the list flags into a filter predicate.
func buildPredicate() (filter.Predicate, error) {
	pred := filter.NewPredicate()
	pred.Title = listTitle
	pred.Publisher = listPublisher
	pred.Year = listYear
	pred.RequireNoCD = listNoCD
	pred.IncludeDeleted = listDeleted

	if listGenre != "" {
		code := catalog.GenreCode(listGenre)
		if code == catalog.GenreNone && !strings.EqualFold(listGenre, "(None)") {
			return pred, fmt.Errorf("unknown genre %q", listGenre)
		}
		pred.Genre = int(code)
	}

	var err error
	if pred.LegacySoundMask, err = parseMask(listLegacy, catalog.LegacySoundNames, "sound"); err != nil {
		return pred, err
	}
	if pred.FMSoundMask, err = parseMask(listFM, catalog.FMSoundNames, "fm"); err != nil {
		return pred, err
	}
	if pred.MIDISoundMask, err = parseMask(listMIDI, catalog.MIDISoundNames, "midi"); err != nil {
		return pred, err
	}
	if pred.GraphicsMask, err = parseMask(listGraphics, catalog.GraphicsNames, "graphics"); err != nil {
		return pred, err
	}
	return pred, nil
}

// parseMask turns a comma-separated capability list into a bitmask using
// the given bit-to-name table.
func parseMask(value string, names map[uint8]string, flagName string) (uint8, error) {
	if value == "" {
		return 0, nil
	}

	var mask uint8
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for bit, name := range names {
			if name == part {
				mask |= bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown --%s capability %q (valid: %s)", flagName, part, capabilityList(names))
		}
	}
	return mask, nil
}

// capabilityList renders the valid names of a capability table for errors.
func capabilityList(names map[uint8]string) string {
	list := make([]string, 0, len(names))
	for bit := uint8(1); bit != 0; bit <<= 1 {
		if name, ok := names[bit]; ok {
			list = append(list, name)
		}
	}
	return strings.Join(list, ", ")
}

// printEntry writes one catalog entry as a plain listing line. Listing
// output goes to stdout, not the logger: it is the command's product.
func printEntry(pos int, e catalog.Entry) {
	marker := " "
	if e.Deleted {
		marker = "D"
	}
	fmt.Printf("%s%5d  %-50s %-30s %-4s %s\n",
		marker, pos, e.Title, e.Publisher, e.Year, catalog.GenreName(e.Genre))
}
