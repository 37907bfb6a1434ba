// Package cli implements the zksum command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/zksum/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zksum",
	Short: "zksum - Verifiable text summarization commitments",
	Long: `zksum proves that a specific summarization program ran over a specific
input and committed to its output, without trusting the party who ran it.

Each run persists two artifacts:
- a journal: canonical JSON naming the program image, input hash, output
  hash, and the top keywords the program extracted
- a receipt: an opaque proof blob binding that journal to the program image

Receipts are verified before anything is written, and anyone holding the
pair can re-verify it later with 'zksum verify'.`,
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
	Long:  `Display the version number and build information for zksum.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("zksum v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.zksum/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in the zksum state directory
		viper.AddConfigPath(model.HomeDir())
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ZKSUM_*;
	// nested keys map as ZKSUM_PROVER_BACKEND -> prover.backend
	viper.SetEnvPrefix("ZKSUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults overlaid with
// whatever the config file and environment actually set. Command flags are
// applied on top by each command.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if viper.IsSet("prover.backend") {
		cfg.Prover.Backend = viper.GetString("prover.backend")
	}
	if viper.IsSet("prover.notary_key_file") {
		cfg.Prover.NotaryKeyFile = viper.GetString("prover.notary_key_file")
	}
	if viper.IsSet("prover.remote.base_url") {
		cfg.Prover.Remote.BaseURL = viper.GetString("prover.remote.base_url")
	}
	if viper.IsSet("prover.remote.timeout") {
		cfg.Prover.Remote.Timeout = viper.GetInt("prover.remote.timeout")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("rate_limiting.requests_per_second") {
		cfg.RateLimiting.RequestsPerSecond = viper.GetFloat64("rate_limiting.requests_per_second")
	}
	if viper.IsSet("rate_limiting.burst_size") {
		cfg.RateLimiting.BurstSize = viper.GetInt("rate_limiting.burst_size")
	}
	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}

	cfg.Output.Verbose = verbose
	return cfg
}
