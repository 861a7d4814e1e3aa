// Command mixmaster edits HTML files through an undoable history that is
// saved inside the files themselves.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cozy/mixmaster-go/history"
	"github.com/cozy/mixmaster-go/internal/config"
	"github.com/cozy/mixmaster-go/mixmaster"
	"github.com/cozy/mixmaster-go/model"
	"github.com/cozy/mixmaster-go/transform"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool
	outPath    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mixmaster",
	Short: "Remix HTML pages, one undoable edit at a time",
	Long: `mixmaster replaces and deletes elements of an HTML page.

Every edit is recorded in a hidden element at the end of the page body, so
that edits can still be undone after the page is saved and opened again.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.Load(configPath)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mixmaster.yaml", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	for _, cmd := range []*cobra.Command{replaceCmd, deleteCmd, undoCmd, scriptCmd} {
		cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the edited page here instead of in place")
	}

	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(scriptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// page is an HTML file open for editing.
type page struct {
	path string
	mm   *mixmaster.MixMaster
	sel  *mixmaster.Selection
}

// openPage reads the page at path and restores the history saved in it.
// Announcements are printed to cmd's output.
func openPage(cmd *cobra.Command, path string) (*page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := model.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	sel := &mixmaster.Selection{}
	hud := mixmaster.NewHUD(logger)
	opts := cfg.Options(logger)
	opts.Focus = sel
	opts.Reporter = history.ReporterFunc(func(a history.Announcement) {
		hud.Announce(a)
		fmt.Fprintln(cmd.OutOrStdout(), mixmaster.Describe(a))
	})
	p := &page{path: path, mm: mixmaster.New(doc, opts), sel: sel}
	if err := p.mm.LoadHistoryFromDOM(); err != nil {
		return nil, fmt.Errorf("restore history of %s: %w", path, err)
	}
	logger.Debug("page opened",
		zap.String("path", path),
		zap.Int("edits", p.mm.History().UndoDepth()))
	return p, nil
}

// focus selects the element matching locator, which must be unique.
func (p *page) focus(locator string) error {
	matches, err := p.mm.Document().Find(locator)
	if err != nil {
		return err
	}
	if len(matches) != 1 {
		return &transform.AmbiguousLocatorError{Locator: locator, Matches: len(matches)}
	}
	p.sel.Select(matches[0])
	return nil
}

// save stores the history in the page and writes it to --out, or back to
// where it was read from. Nothing is written if the saved history would not
// match the page once reloaded.
func (p *page) save() error {
	if err := p.mm.SaveHistoryToDOM(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.mm.Document().Render(&buf); err != nil {
		return err
	}
	if err := p.mm.CheckReload(buf.String()); err != nil {
		return fmt.Errorf("refusing to write %s: %w", p.path, err)
	}
	dst := p.path
	if outPath != "" {
		dst = outPath
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Info("page saved", zap.String("path", dst))
	return nil
}
