package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/autoheaders/internal/config"
	"github.com/mvp-joe/autoheaders/internal/discovery"
	"github.com/mvp-joe/autoheaders/internal/generator"
	"github.com/mvp-joe/autoheaders/internal/output"
	"github.com/mvp-joe/autoheaders/internal/source"
)

var batchQuiet bool

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Generate headers for every C source in a directory tree",
	Long: `Batch discovers C sources below a directory (the working directory by
default) using paths.sources and paths.ignore from the configuration, and
writes the public and private header next to each source.

Each source is handled on its own: a failing source does not stop the
others, and its headers are left untouched. The command exits with status 1
if any source failed.

Examples:
  # Generate headers for the current project
  autoheaders batch

  # Generate headers under src/ without a progress bar
  autoheaders batch --quiet src
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().BoolVarP(&batchQuiet, "quiet", "q", false, "Disable progress bars and non-error output")
}

// batchFailure is one source that could not be processed.
type batchFailure struct {
	Path string
	Err  error
}

// batchResult summarizes a batch run.
type batchResult struct {
	Generated int
	Failures  []batchFailure
}

// generateFunc produces both headers of a unit.
type generateFunc func(ctx context.Context, unit *source.Unit) (*generator.Headers, error)

func runBatch(cmd *cobra.Command, args []string) error {
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

	result, err := executeBatch(ctx, cfg, rootDir, cmd.OutOrStdout(), batchQuiet)
	if err != nil {
		return err
	}
	return reportFailures(cmd.ErrOrStderr(), result)
}

// executeBatch regenerates the headers of every discovered source with at
// most cfg.Batch.Concurrency generations in flight.
func executeBatch(ctx context.Context, cfg *config.Config, rootDir string, out io.Writer, quiet bool) (*batchResult, error) {
	d, err := discovery.New(rootDir, cfg.Paths.Sources, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid source patterns: %w", err)
	}

	files, err := d.Discover()
	if err != nil {
		return nil, err
	}

	progress := newBatchProgress(out, quiet)
	progress.OnDiscoveryComplete(len(files))

	gen := generator.New(cfg.ToGeneratorOptions(rootDir))
	result := &batchResult{}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(cfg.Batch.Concurrency)

	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			_, err := regenerate(ctx, gen.GenerateAll, path, cfg.Output)

			mu.Lock()
			if err != nil {
				result.Failures = append(result.Failures, batchFailure{Path: path, Err: err})
			} else {
				result.Generated++
			}
			mu.Unlock()

			progress.OnFileProcessed()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})
	progress.OnComplete(result)
	return result, nil
}

// regenerate writes both headers of the source at path next to it and
// returns the written paths. Nothing is written if either header fails.
func regenerate(ctx context.Context, generate generateFunc, path string, out config.OutputConfig) ([]string, error) {
	unit, err := source.Load(path)
	if err != nil {
		return nil, err
	}

	headers, err := generate(ctx, unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", unit.Name(), err)
	}

	publicPath, privatePath := output.HeaderPaths(path, out.PublicSuffix, out.PrivateSuffix)
	if err := output.WriteFiles(
		output.File{Path: publicPath, Data: headers.Public.Bytes()},
		output.File{Path: privatePath, Data: headers.Private.Bytes()},
	); err != nil {
		return nil, err
	}

	if verbose {
		log.Printf("Wrote %s and %s", publicPath, privatePath)
	}
	return []string{publicPath, privatePath}, nil
}

// reportFailures prints every failure and returns an error if there was any.
func reportFailures(w io.Writer, result *batchResult) error {
	colored := useColor(w)
	for _, f := range result.Failures {
		printError(w, f.Err, colored)
	}
	if n := len(result.Failures); n > 0 {
		return fmt.Errorf("%d of %d sources failed", n, n+result.Generated)
	}
	return nil
}
