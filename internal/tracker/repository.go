package tracker

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tickerscope/internal/contracts"
)

// Repository scan_results 수익률 컬럼 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const pickColumns = `
	id, ticker, scanned_at, price, classification, target_average, stop_loss,
	return_1d, return_3d, return_5d, max_gain_5d, max_drawdown_5d, hit_target, hit_stop_loss`

// PendingPicks 1~30일 경과 + 수익률 미기록 픽 조회
func (r *Repository) PendingPicks(ctx context.Context, now time.Time) ([]contracts.Pick, error) {
	query := `
		SELECT ` + pickColumns + `
		FROM scan_results
		WHERE scanned_at <= $1
		  AND scanned_at >= $2
		  AND price > 0
		  AND (return_1d IS NULL OR return_3d IS NULL OR return_5d IS NULL)
		ORDER BY scanned_at`

	return r.queryPicks(ctx, query, now.Add(-MinPickAge), now.Add(-MaxPickAge))
}

// GradedPicks 수익률이 기록된 픽 조회
func (r *Repository) GradedPicks(ctx context.Context, since time.Time) ([]contracts.Pick, error) {
	query := `
		SELECT ` + pickColumns + `
		FROM scan_results
		WHERE scanned_at >= $1
		  AND (return_1d IS NOT NULL OR return_3d IS NOT NULL OR return_5d IS NOT NULL)
		ORDER BY scanned_at`

	return r.queryPicks(ctx, query, since)
}

// SaveReturns 아직 NULL 인 컬럼만 채움 (재실행 안전)
func (r *Repository) SaveReturns(ctx context.Context, rec contracts.ReturnRecord) error {
	query := `
		UPDATE scan_results SET
			return_1d       = COALESCE(return_1d, $2),
			return_3d       = COALESCE(return_3d, $3),
			return_5d       = COALESCE(return_5d, $4),
			max_gain_5d     = COALESCE(max_gain_5d, $5),
			max_drawdown_5d = COALESCE(max_drawdown_5d, $6),
			hit_target      = COALESCE(hit_target, $7),
			hit_stop_loss   = COALESCE(hit_stop_loss, $8),
			returns_updated_at = NOW()
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		rec.ScanResultID, rec.Return1d, rec.Return3d, rec.Return5d,
		rec.MaxGain5d, rec.MaxDrawdown5d, rec.HitTarget, rec.HitStopLoss,
	)
	return err
}

func (r *Repository) queryPicks(ctx context.Context, query string, args ...any) ([]contracts.Pick, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var picks []contracts.Pick
	for rows.Next() {
		var p contracts.Pick
		var class string
		if err := rows.Scan(
			&p.ScanResultID, &p.Ticker, &p.ScannedAt, &p.EntryPrice, &class,
			&p.TargetPrice, &p.StopLoss,
			&p.Returns.Return1d, &p.Returns.Return3d, &p.Returns.Return5d,
			&p.Returns.MaxGain5d, &p.Returns.MaxDrawdown5d,
			&p.Returns.HitTarget, &p.Returns.HitStopLoss,
		); err != nil {
			return nil, err
		}
		p.Classification = contracts.Classification(class)
		p.Returns.ScanResultID = p.ScanResultID
		picks = append(picks, p)
	}

	return picks, rows.Err()
}
