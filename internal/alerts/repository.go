package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tickerscope/internal/contracts"
)

// Repository alert_rules / alerts 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRules 규칙 조회 (id 순)
func (r *Repository) ListRules(ctx context.Context, enabledOnly bool) ([]contracts.AlertRule, error) {
	query := `
		SELECT id, name, enabled, alert_type, conditions, channels, created_at, updated_at
		FROM alert_rules
		WHERE ($1 = false OR enabled = true)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("query alert rules: %w", err)
	}
	defer rows.Close()

	var rules []contracts.AlertRule
	for rows.Next() {
		var rule contracts.AlertRule
		var alertType string
		var conditions []byte

		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Enabled, &alertType, &conditions,
			&rule.Channels, &rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert rule: %w", err)
		}

		rule.AlertType = contracts.AlertType(alertType)
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
				return nil, fmt.Errorf("decode conditions for rule %d: %w", rule.ID, err)
			}
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// CreateRule 규칙 생성
func (r *Repository) CreateRule(ctx context.Context, rule *contracts.AlertRule) (int64, error) {
	if len(rule.Channels) == 0 {
		return 0, fmt.Errorf("rule %q: at least one channel required", rule.Name)
	}

	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return 0, fmt.Errorf("encode conditions: %w", err)
	}

	query := `
		INSERT INTO alert_rules (name, enabled, alert_type, conditions, channels)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err = r.pool.QueryRow(ctx, query,
		rule.Name, rule.Enabled, string(rule.AlertType), conditions, rule.Channels,
	).Scan(&id)

	return id, err
}

// SetEnabled 규칙 활성/비활성
func (r *Repository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE alert_rules SET enabled = $2, updated_at = NOW() WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert rule %d not found", id)
	}
	return nil
}

// SaveAlertEvent 알림 기록 (append-only)
func (r *Repository) SaveAlertEvent(ctx context.Context, event *contracts.AlertEvent) (int64, error) {
	scores, err := json.Marshal(event.Scores)
	if err != nil {
		return 0, fmt.Errorf("encode scores: %w", err)
	}

	var scanResultID *int64
	if event.ScanResultID > 0 {
		scanResultID = &event.ScanResultID
	}

	query := `
		INSERT INTO alerts
			(scan_result_id, rule_id, ticker, alert_type, scores, classification, message, sent_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id int64
	err = r.pool.QueryRow(ctx, query,
		scanResultID, event.RuleID, event.Ticker, string(event.AlertType), scores,
		string(event.Classification), event.Message, event.SentTo, event.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	event.ID = id
	return id, nil
}
