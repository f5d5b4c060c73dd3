package scan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tickerscope/internal/contracts"
)

// Repository scan_results / price_history 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveScanResult 스캔 결과 저장 (run_id + ticker 기준 upsert)
// 수익률 컬럼은 건드리지 않음
func (r *Repository) SaveScanResult(ctx context.Context, result *contracts.ScanResult) (int64, error) {
	a := result.Analysis
	analysis, err := json.Marshal(a)
	if err != nil {
		return 0, fmt.Errorf("encode analysis: %w", err)
	}

	var price float64
	if a.Price != nil {
		price = a.Price.Price
	}

	query := `
		INSERT INTO scan_results
			(run_id, ticker, scanned_at, price,
			 attention, momentum, fundamentals, risk,
			 classification, alert_type, confidence, bull_case, bear_case, catalysts,
			 target_technical, target_fundamental, target_ai, target_risk, target_average, stop_loss,
			 analysis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (run_id, ticker)
		DO UPDATE SET
			scanned_at = EXCLUDED.scanned_at,
			price = EXCLUDED.price,
			attention = EXCLUDED.attention,
			momentum = EXCLUDED.momentum,
			fundamentals = EXCLUDED.fundamentals,
			risk = EXCLUDED.risk,
			classification = EXCLUDED.classification,
			alert_type = EXCLUDED.alert_type,
			confidence = EXCLUDED.confidence,
			bull_case = EXCLUDED.bull_case,
			bear_case = EXCLUDED.bear_case,
			catalysts = EXCLUDED.catalysts,
			target_technical = EXCLUDED.target_technical,
			target_fundamental = EXCLUDED.target_fundamental,
			target_ai = EXCLUDED.target_ai,
			target_risk = EXCLUDED.target_risk,
			target_average = EXCLUDED.target_average,
			stop_loss = EXCLUDED.stop_loss,
			analysis = EXCLUDED.analysis
		RETURNING id`

	c := a.Classification
	t := a.Targets

	var id int64
	err = r.pool.QueryRow(ctx, query,
		result.RunID, result.Ticker, result.ScannedAt, price,
		a.Scores.Attention, a.Scores.Momentum, a.Scores.Fundamentals, a.Scores.Risk,
		string(c.Classification), nullableAlertType(c.AlertType), c.Confidence, c.BullCase, c.BearCase, c.Catalysts,
		t.Technical, t.Fundamental, t.AI, t.Risk, t.Average, t.StopLoss,
		analysis,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	result.ID = id
	return id, nil
}

// UpsertPriceHistory 일봉 저장 (ticker + date 기준 upsert)
func (r *Repository) UpsertPriceHistory(ctx context.Context, ticker string, candles []contracts.HistoricalCandle) error {
	if len(candles) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO price_history (ticker, trade_date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume`

	for _, c := range candles {
		batch.Queue(query, ticker, c.Date, c.Open, c.High, c.Low, c.Close, c.Volume)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range candles {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// Latest 최근 스캔 결과 조회 (최신 run 우선)
func (r *Repository) Latest(ctx context.Context, limit int) ([]contracts.ScanResult, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, run_id, ticker, scanned_at, analysis
		FROM scan_results
		ORDER BY scanned_at DESC, id DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []contracts.ScanResult
	for rows.Next() {
		var res contracts.ScanResult
		var analysis []byte
		if err := rows.Scan(&res.ID, &res.RunID, &res.Ticker, &res.ScannedAt, &analysis); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(analysis, &res.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis %d: %w", res.ID, err)
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

func nullableAlertType(t contracts.AlertType) *string {
	if t == contracts.AlertNone {
		return nil
	}
	s := string(t)
	return &s
}
