package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/mathsheet/internal/cache"
	"github.com/ppiankov/mathsheet/internal/model"
)

// Version is set at build time with -ldflags "-X ...cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	noCache bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mathsheet",
	Short: "Mathsheet - printable arithmetic worksheets as PDF",
	Long: `Mathsheet generates printable arithmetic practice worksheets.

Each worksheet page holds 60 problems in a 3 x 20 grid, drawn at random from
the operand and operator sets you describe, with an optional answer key page.

Operand sets accept numbers and integer ranges, e.g. "0-10, 15, 2.5".
Operators are + - * / and the symbols • × ÷.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of mathsheet.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mathsheet %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.mathsheet/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".mathsheet"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// MATHSHEET_WORKSHEET_PAGES overrides worksheet.pages, and so on
	viper.SetEnvPrefix("MATHSHEET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	registerDefaults(viper.GetViper(), cfg)

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// registerDefaults makes every key known to viper so AutomaticEnv can
// override keys that are absent from the config file.
func registerDefaults(v *viper.Viper, cfg *model.Config) {
	w := cfg.Worksheet
	v.SetDefault("worksheet.a", w.A)
	v.SetDefault("worksheet.b", w.B)
	v.SetDefault("worksheet.ops", w.Ops)
	v.SetDefault("worksheet.pages", w.Pages)
	v.SetDefault("worksheet.title", w.Title)
	v.SetDefault("worksheet.answers", w.Answers)
	v.SetDefault("worksheet.numbered", w.Numbered)
	v.SetDefault("worksheet.avoid_negative", w.AvoidNegative)
	v.SetDefault("worksheet.integer_division", w.IntegerDivision)

	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.date_format", cfg.Output.DateFormat)
	v.SetDefault("output.verbose", cfg.Output.Verbose)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	v.SetDefault("rate_limiting.writes_per_second", cfg.RateLimiting.WritesPerSecond)
	v.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
}

// documentCache builds the configured cache, or nil when caching is off
func documentCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled || noCache {
		return nil
	}
	return cache.New(cache.Options{
		MemoryTTL: cfg.Cache.MemoryTTL,
		Dir:       cfg.Cache.Dir,
		DiskTTL:   cfg.Cache.DiskTTL,
	})
}
