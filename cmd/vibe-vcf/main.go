// Package main provides the vibe-vcf command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config holds the settings read from ~/.vibe-vcf.yaml, VIBE_VCF_* environment
// variables and flags.
type Config struct {
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Parse struct {
		Warnings bool `mapstructure:"warnings"`
	} `mapstructure:"parse"`
	Output struct {
		Format string `mapstructure:"format"`
	} `mapstructure:"output"`
	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`
}

// app carries state shared by all subcommands.
type app struct {
	cfgFile string
	verbose bool
	cfg     Config
	logger  *zap.Logger
}

// usageError marks errors caused by bad command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	a := &app{logger: zap.NewNop()}
	root := a.newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	a.logger.Sync() //nolint:errcheck
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	var verr *vcf.VersionError
	if errors.As(err, &verr) {
		fmt.Fprintf(os.Stderr, "Hint: supported VCF versions are %s\n", strings.Join(vcf.SupportedVersions, ", "))
	}
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
	}
	return ExitError
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vibe-vcf",
		Short:         "VCF parser with typed INFO and FORMAT decoding",
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default: ~/.vibe-vcf.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(a.newParseCmd())
	root.AddCommand(a.newFetchCmd())
	root.AddCommand(a.newStatsCmd())
	root.AddCommand(a.newLoadCmd())
	root.AddCommand(a.newLookupCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// setup loads configuration and builds the logger.
func (a *app) setup() error {
	if a.cfgFile != "" {
		viper.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".vibe-vcf")
		viper.SetConfigType("yaml")
		viper.SetDefault("db.path", filepath.Join(home, ".vibe-vcf", "records.duckdb"))
	}

	viper.SetDefault("log.level", "info")
	viper.SetDefault("parse.warnings", true)
	viper.SetDefault("output.format", "tab")

	viper.SetEnvPrefix("VIBE_VCF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || a.cfgFile != "" {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := viper.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	logger, err := newLogger(a.cfg.Log.Level, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("invalid log.level %q: %w", level, err)}
	}

	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		lvl = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// newParser returns a parser whose derived-type warnings follow parse.warnings.
func (a *app) newParser() *vcf.Parser {
	p := vcf.NewParser()
	if a.cfg.Parse.Warnings {
		p.SetLogger(a.logger.Named("parse"))
	}
	return p
}
