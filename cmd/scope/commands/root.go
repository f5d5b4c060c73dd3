package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tickerscope/pkg/config"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scope",
	Short: "tickerscope - 소형주 소셜 모멘텀 스캐너",
	Long: `tickerscope Unified CLI

소셜 센티먼트 + 가격 + 펀더멘털을 합쳐 종목을 점수화하고
runner/value/avoid로 분류한 뒤 목표가와 알림을 생성합니다.

Usage:
  go run ./cmd/scope [command]

Examples:
  go run ./cmd/scope scan GME AMC
  go run ./cmd/scope scan --dry-run
  go run ./cmd/scope analyze SNDL
  go run ./cmd/scope track
  go run ./cmd/scope accuracy --days 30
  go run ./cmd/scope api`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configFile != "" {
			config.SetEnvFile(configFile)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads configuration and applies the global flag overrides.
// needDB=false allows running without DATABASE_URL.
func loadConfig(needDB bool) (*config.Config, error) {
	load := config.LoadWithoutDB
	if needDB {
		load = config.Load
	}

	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}
	return cfg, nil
}
