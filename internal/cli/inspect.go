package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/autoheaders/internal/config"
	"github.com/mvp-joe/autoheaders/internal/generator"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <c-file|->",
	Short: "Show how each top-level declaration is classified",
	Long: `Inspect parses a C source and prints, as YAML, every top-level declaration
with its kind, storage class, enclosing marker block, annotations, the
headers it goes to and the rule that decided it.

Examples:
  autoheaders inspect list.c
`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// inspectReport is the YAML document printed by inspect.
type inspectReport struct {
	File         string         `yaml:"file"`
	Guard        string         `yaml:"guard,omitempty"`
	Declarations []inspectEntry `yaml:"declarations"`
}

type inspectEntry struct {
	Line        uint32   `yaml:"line"`
	Kind        string   `yaml:"kind"`
	Name        string   `yaml:"name,omitempty"`
	Storage     string   `yaml:"storage"`
	Block       string   `yaml:"block"`
	Targets     []string `yaml:"targets,flow"`
	Rule        string   `yaml:"rule"`
	Annotations []string `yaml:"annotations,omitempty,flow"`
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	return executeInspect(ctx, cfg, rootDir, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
}

func executeInspect(ctx context.Context, cfg *config.Config, rootDir, input string, stdin io.Reader, out io.Writer) error {
	unit, err := readUnit(input, stdin)
	if err != nil {
		return err
	}

	analysis, err := generator.New(cfg.ToGeneratorOptions(rootDir)).Analyze(ctx, unit)
	if err != nil {
		return fmt.Errorf("%s: %w", unit.Name(), err)
	}

	report := inspectReport{
		File:         unit.Name(),
		Guard:        analysis.Guard,
		Declarations: make([]inspectEntry, 0, len(analysis.Classified)),
	}
	for _, c := range analysis.Classified {
		entry := inspectEntry{
			Line:    c.Decl.Line,
			Kind:    c.Decl.Kind.String(),
			Name:    c.Decl.Name,
			Storage: c.Decl.Storage.String(),
			Block:   c.Decl.Block.String(),
			Targets: c.Targets.Members(),
			Rule:    c.Rule,
		}
		for _, a := range c.Annotations {
			if a.Value != "" {
				entry.Annotations = append(entry.Annotations, a.Kind.String()+" "+a.Value)
			} else {
				entry.Annotations = append(entry.Annotations, a.Kind.String())
			}
		}
		report.Declarations = append(report.Declarations, entry)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
