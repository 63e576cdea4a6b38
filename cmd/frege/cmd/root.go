package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/pkg/core/config"
	"github.com/msto63/frege/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "frege",
	Short: "frege - Front end für eine kleine Ausdruckssprache",
	Long: `frege liest Quelltext einer kleinen Ausdruckssprache, baut daraus
einen Syntaxbaum und wertet ihn zu einer Zahl aus.

Die Sprache kennt Ganz- und Gleitkommazahlen, let-Bindungen, Zuweisungen,
Funktionen mit return, if/else und Blöcke.

Beispiele:
  frege eval "1 + 2 * 3"
  frege run programm.fg
  frege parse --format json "let x = 5"
  frege repl
  frege serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errReported marks failures whose details were already printed
var errReported = errors.New("fehlgeschlagen")

func Execute() error {
	defer logging.CloseFiles()

	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Fehler: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: $FREGE_CONFIG oder ./configs/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

// loadConfig reads --config or falls back to the default locations
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// setup loads the configuration and installs the process logger
func setup() (*config.Config, *frglog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	lcfg := logging.DefaultLoggerConfig("frege")
	lcfg.Level = cfg.General.LogLevel
	lcfg.Format = cfg.General.LogFormat
	if verbose {
		lcfg.Level = "debug"
	}
	logger := logging.NewLogger(lcfg)
	frglog.SetDefault(logger)
	return cfg, logger, nil
}

// newService builds the evaluation service; history rows are written only
// when record is set and the history is enabled in the configuration
func newService(cfg *config.Config, logger *frglog.Logger, record bool) (*service.Service, error) {
	scfg := service.ConfigFrom(cfg, logger)
	if record && cfg.History.Enabled {
		runs, err := store.NewSQLiteRunStore(store.SQLiteConfig{Path: cfg.History.Path})
		if err != nil {
			return nil, err
		}
		scfg.Store = runs
	}
	return service.NewService(scfg), nil
}

// readSource returns the content of file, or stdin for "-"
func readSource(file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sourceArg treats arg as a file when one exists by that name, otherwise
// as source text
func sourceArg(args []string) (string, error) {
	if len(args) == 1 {
		if args[0] == "-" {
			return readSource("-")
		}
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return readSource(args[0])
		}
	}
	return strings.Join(args, " "), nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}
