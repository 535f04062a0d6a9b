package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/autoheaders/internal/config"
	"github.com/mvp-joe/autoheaders/internal/discovery"
	"github.com/mvp-joe/autoheaders/internal/generator"
	"github.com/mvp-joe/autoheaders/internal/source"
	"github.com/mvp-joe/autoheaders/internal/watcher"
)

var watchQuiet bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Regenerate headers whenever a C source changes",
	Long: `Watch runs a batch generation, then keeps watching the directory tree and
regenerates the headers of every source that changes. Changes are collected
until no event arrived for watch.debounce_ms milliseconds.

Generation results are cached by file content, so saving a file without
changing it does not parse it again. Press Ctrl+C to stop.

Examples:
  # Watch the current project
  autoheaders watch

  # Watch src/ quietly
  autoheaders watch --quiet src
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rootDir, err := projectDir(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, rootDir)
	if err != nil {
		return err
	}

	result, err := executeBatch(ctx, cfg, rootDir, cmd.OutOrStdout(), watchQuiet)
	if err != nil {
		return err
	}
	// Failures are reported but do not stop watching; the next save retries.
	_ = reportFailures(cmd.ErrOrStderr(), result)

	session, err := newWatchSession(cfg, rootDir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer session.Close()

	d, err := discovery.New(rootDir, cfg.Paths.Sources, cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("invalid source patterns: %w", err)
	}

	w, err := watcher.New(rootDir, d, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", rootDir, err)
	}
	defer w.Stop()

	if err := w.Start(ctx, func(files []string) { session.Handle(ctx, files) }); err != nil {
		return err
	}

	if !watchQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (Ctrl+C to stop)\n", rootDir)
	}

	<-ctx.Done()
	if !watchQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), "\nStopped watching")
	}
	return nil
}

// watchSession regenerates headers for batches of changed sources.
type watchSession struct {
	cache  *generator.Cache
	output config.OutputConfig
	errOut io.Writer
}

func newWatchSession(cfg *config.Config, rootDir string, errOut io.Writer) (*watchSession, error) {
	cache, err := generator.NewCache(generator.New(cfg.ToGeneratorOptions(rootDir)), cfg.Watch.CacheSize)
	if err != nil {
		return nil, err
	}
	return &watchSession{cache: cache, output: cfg.Output, errOut: errOut}, nil
}

// Handle regenerates the headers of each changed source. Removed sources
// keep their previously generated headers.
func (s *watchSession) Handle(ctx context.Context, files []string) {
	for _, path := range files {
		if ctx.Err() != nil {
			return
		}

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if verbose {
				log.Printf("%s was removed, keeping its headers", path)
			}
			continue
		}

		hit := false
		generate := func(ctx context.Context, unit *source.Unit) (*generator.Headers, error) {
			h, cached, err := s.cache.GenerateAll(ctx, unit)
			hit = cached
			return h, err
		}

		if _, err := regenerate(ctx, generate, path, s.output); err != nil {
			printError(s.errOut, err, useColor(s.errOut))
			continue
		}
		if verbose && hit {
			log.Printf("%s unchanged, reused cached headers", path)
		}
	}
}

// Close releases the generation cache.
func (s *watchSession) Close() {
	s.cache.Close()
}
