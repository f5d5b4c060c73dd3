package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/contracts"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "알림 규칙 관리",
	Long: `alert_rules 테이블의 알림 규칙을 관리합니다.
활성 규칙이 하나도 없으면 기본 평가(분류 기반 알림)가 적용됩니다.

Subcommands:
  list     - 규칙 목록
  add      - 규칙 추가
  enable   - 규칙 활성화
  disable  - 규칙 비활성화

Example:
  go run ./cmd/scope rules list
  go run ./cmd/scope rules add hot-runners --type runner --channels discord,websocket \
      --conditions '{"classification":["runner"],"min_attention":70,"max_price":10}'
  go run ./cmd/scope rules disable 3`,
}

var (
	rulesListCmd = &cobra.Command{
		Use:   "list",
		Short: "규칙 목록",
		RunE:  listRules,
	}

	rulesAddCmd = &cobra.Command{
		Use:   "add NAME",
		Short: "규칙 추가",
		Args:  cobra.ExactArgs(1),
		RunE:  addRule,
	}

	rulesEnableCmd = &cobra.Command{
		Use:   "enable ID",
		Short: "규칙 활성화",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return setRuleEnabled(cmd, args[0], true) },
	}

	rulesDisableCmd = &cobra.Command{
		Use:   "disable ID",
		Short: "규칙 비활성화",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return setRuleEnabled(cmd, args[0], false) },
	}
)

var (
	rulesEnabledOnly bool
	ruleType         string
	ruleChannels     string
	ruleConditions   string
	ruleDisabled     bool
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesEnableCmd, rulesDisableCmd)

	rulesListCmd.Flags().BoolVar(&rulesEnabledOnly, "enabled", false, "활성 규칙만")

	rulesAddCmd.Flags().StringVar(&ruleType, "type", "", "알림 유형 (runner|value|both|pump_warning, 비우면 분류에서 유도)")
	rulesAddCmd.Flags().StringVar(&ruleChannels, "channels", "", "채널 목록 (쉼표 구분, 순서대로 발송)")
	rulesAddCmd.Flags().StringVar(&ruleConditions, "conditions", "{}", "조건 JSON")
	rulesAddCmd.Flags().BoolVar(&ruleDisabled, "disabled", false, "비활성 상태로 생성")
	_ = rulesAddCmd.MarkFlagRequired("channels")
}

// newRule builds an AlertRule from CLI input. Unknown condition keys are rejected.
func newRule(name, alertType, channels, conditions string, enabled bool) (*contracts.AlertRule, error) {
	rule := &contracts.AlertRule{
		Name:      name,
		Enabled:   enabled,
		AlertType: contracts.AlertType(alertType),
	}
	for _, ch := range strings.Split(channels, ",") {
		if ch = strings.TrimSpace(ch); ch != "" {
			rule.Channels = append(rule.Channels, ch)
		}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(conditions)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rule.Conditions); err != nil {
		return nil, fmt.Errorf("invalid conditions: %w", err)
	}

	if err := alerts.ValidateRule(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func listRules(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	rules, err := alerts.NewRepository(a.db.Pool).ListRules(ctx, rulesEnabledOnly)
	if err != nil {
		return fmt.Errorf("❌ list rules: %w", err)
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Alert Rules")
	printRules(out, rules)
	return nil
}

func addRule(cmd *cobra.Command, args []string) error {
	rule, err := newRule(args[0], ruleType, ruleChannels, ruleConditions, !ruleDisabled)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := alerts.NewRepository(a.db.Pool).CreateRule(ctx, rule)
	if err != nil {
		return fmt.Errorf("❌ create rule: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Rule #%d created (%s)\n", id, rule.Name)
	return nil
}

func setRuleEnabled(cmd *cobra.Command, rawID string, enabled bool) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("❌ invalid rule id: %q", rawID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := alerts.NewRepository(a.db.Pool).SetEnabled(ctx, id, enabled); err != nil {
		return fmt.Errorf("❌ update rule: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Rule #%d %s\n", id, state)
	return nil
}
