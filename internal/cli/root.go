package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mvp-joe/autoheaders/internal/config"
)

var (
	cfgFile   string
	verbose   bool
	colorMode string

	privateFlag       bool
	outputFlag        string
	privateOutputFlag string
	guardFlag         string
	externFlag        bool
)

// configFlags maps command line flags to the configuration keys they override.
var configFlags = map[string]string{
	"guard":            "guard.name",
	"extern-variables": "generate.extern_variables",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autoheaders [flags] <c-file|->",
	Short: "Generate public and private C headers from an annotated source file",
	Long: `autoheaders reads one C source file and writes the header that declares its
public interface, or with -p the private header for its static functions.

Annotations in the source control what is emitted:
  // @guard NAME             include guard of the public header
  #include <x.h> /* @include */  propagated into both headers
  #ifdef HEADER ... #endif       copied into the public header
  #ifdef PRIVATE_HEADER ... #endif  copied into the private header

Non-static functions become prototypes in the public header, static
functions become prototypes in the private header.

Examples:
  # Print the public header
  autoheaders list.c

  # Print the private header
  autoheaders -p list.c

  # Write both headers
  autoheaders -o list.h -P list.priv.h list.c

  # Read the source from stdin
  cat list.c | autoheaders --guard LIST_H -
`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch colorMode {
		case "auto", "on", "off":
			return nil
		default:
			return fmt.Errorf("invalid --color value %q: must be auto, on or off", colorMode)
		}
	},
	RunE: runGenerate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version

	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err, useColor(os.Stderr))
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .autoheaders.yml in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().StringVar(&guardFlag, "guard", "", "guard name for sources without a @guard annotation")
	rootCmd.PersistentFlags().BoolVar(&externFlag, "extern-variables", false, "declare global variables in the generated headers")

	rootCmd.Flags().BoolVarP(&privateFlag, "private", "p", false, "print the private header instead of the public one")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "write the public header to `FILE`")
	rootCmd.Flags().StringVarP(&privateOutputFlag, "private-output", "P", "", "write the private header to `FILE`")
}

// loadConfig loads the configuration rooted at rootDir with the command's
// flags layered on top.
func loadConfig(cmd *cobra.Command, rootDir string) (*config.Config, error) {
	cfg, err := config.NewLoader(rootDir,
		config.WithConfigFile(cfgFile),
		bindFlags(cmd.Flags()),
	).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// bindFlags binds the flags in configFlags so that explicitly set flags
// override the config file and environment.
func bindFlags(flags *pflag.FlagSet) config.Option {
	return func(v *viper.Viper) error {
		for name, key := range configFlags {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
		return nil
	}
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// projectDir returns the absolute directory named by args, or the working
// directory.
func projectDir(args []string) (string, error) {
	if len(args) > 0 {
		info, err := os.Stat(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to access %s: %w", args[0], err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", args[0])
		}
		return filepath.Abs(args[0])
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// useColor applies --color to w. In auto mode only a terminal gets color.
func useColor(w io.Writer) bool {
	switch colorMode {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printError writes err with an "error:" prefix, red when colored.
func printError(w io.Writer, err error, colored bool) {
	prefix := color.New(color.FgRed, color.Bold)
	if colored {
		prefix.EnableColor()
	} else {
		prefix.DisableColor()
	}
	fmt.Fprintf(w, "%s %v\n", prefix.Sprint("error:"), err)
}
