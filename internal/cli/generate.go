package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/autoheaders/internal/config"
	"github.com/mvp-joe/autoheaders/internal/generator"
	"github.com/mvp-joe/autoheaders/internal/output"
	"github.com/mvp-joe/autoheaders/internal/source"
	"github.com/mvp-joe/autoheaders/internal/visibility"
)

// generateRequest describes one single-file invocation.
type generateRequest struct {
	Input         string // path, or "-" for stdin
	Private       bool
	Output        string
	PrivateOutput string
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rootDir, err := projectDir(nil)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, rootDir)
	if err != nil {
		return err
	}

	return executeGenerate(ctx, cfg, rootDir, generateRequest{
		Input:         args[0],
		Private:       privateFlag,
		Output:        outputFlag,
		PrivateOutput: privateOutputFlag,
	}, cmd.InOrStdin(), cmd.OutOrStdout())
}

// executeGenerate generates the requested headers for one source. With an
// output path set, only the named files are written, and only after every
// requested header was generated. Otherwise one header goes to stdout.
func executeGenerate(ctx context.Context, cfg *config.Config, rootDir string, req generateRequest, stdin io.Reader, stdout io.Writer) error {
	unit, err := readUnit(req.Input, stdin)
	if err != nil {
		return err
	}

	gen := generator.New(cfg.ToGeneratorOptions(rootDir))
	analysis, err := gen.Analyze(ctx, unit)
	if err != nil {
		return fmt.Errorf("%s: %w", unit.Name(), err)
	}

	if req.Output == "" && req.PrivateOutput == "" {
		target := visibility.Public
		if req.Private {
			target = visibility.Private
		}
		header, err := analysis.Header(target)
		if err != nil {
			return fmt.Errorf("%s: %w", unit.Name(), err)
		}
		_, err = stdout.Write(header.Bytes())
		return err
	}

	var files []output.File
	for _, want := range []struct {
		path   string
		target visibility.Target
	}{
		{req.Output, visibility.Public},
		{req.PrivateOutput, visibility.Private},
	} {
		if want.path == "" {
			continue
		}
		header, err := analysis.Header(want.target)
		if err != nil {
			return fmt.Errorf("%s: %w", unit.Name(), err)
		}
		files = append(files, output.File{Path: want.path, Data: header.Bytes()})
	}

	if err := output.WriteFiles(files...); err != nil {
		return err
	}
	if verbose {
		for _, f := range files {
			log.Printf("Wrote %s", f.Path)
		}
	}
	return nil
}

func readUnit(input string, stdin io.Reader) (*source.Unit, error) {
	if input == "-" {
		return source.Read("", stdin)
	}
	return source.Load(input)
}
