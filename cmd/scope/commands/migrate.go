package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tickerscope/migrations"
	"github.com/wonny/tickerscope/pkg/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 적용",
	Long: `scan_results, price_history, alert_rules, alerts 테이블을 생성합니다.
여러 번 실행해도 안전합니다.

Example:
  go run ./cmd/scope migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("❌ connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	applied, err := migrations.Apply(ctx, db.Pool)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	out := cmd.OutOrStdout()
	for _, name := range applied {
		fmt.Fprintf(out, "✅ %s\n", name)
	}
	return nil
}
