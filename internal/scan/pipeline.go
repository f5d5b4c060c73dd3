package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/classify"
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/scoring"
	"github.com/wonny/tickerscope/internal/sentiment"
	"github.com/wonny/tickerscope/internal/strategyconfig"
	"github.com/wonny/tickerscope/internal/targets"
	"github.com/wonny/tickerscope/pkg/logger"
)

// Providers groups the data collaborators. Any of them may be nil.
type Providers struct {
	Sentiment    []contracts.SentimentProvider
	Price        contracts.PriceProvider
	Candles      contracts.CandleProvider
	Fundamentals contracts.FundamentalsProvider
}

// Summary 스캔 실행 결과
type Summary struct {
	RunID     string                           `json:"run_id"`
	StartedAt time.Time                        `json:"started_at"`
	Duration  time.Duration                    `json:"duration"`
	Tickers   int                              `json:"tickers"`
	Analyzed  int                              `json:"analyzed"`
	Filtered  int                              `json:"filtered"`
	Failed    int                              `json:"failed"`
	Alerts    int                              `json:"alerts"`
	ByClass   map[contracts.Classification]int `json:"by_class"`
}

// Result is the decision for one ticker plus the raw candles it was built from
type Result struct {
	Analysis contracts.Analysis
	Candles  []contracts.HistoricalCandle
	Admitted bool
	Reason   string // exclusion reason when not admitted
}

// Pipeline runs fetch → admit → merge → score → classify → targets → persist → alert
// ⭐ SSOT: 스캔 오케스트레이션은 여기서만
type Pipeline struct {
	providers  Providers
	strategy   *strategyconfig.Config
	calculator *scoring.Calculator
	classifier *classify.Classifier
	targets    *targets.Engine

	repo      contracts.ScanRepository // nil = dry run
	evaluator *alerts.Evaluator        // nil = no alerts

	candleDays int
	logger     *logger.Logger
	now        func() time.Time
}

// Options configures a pipeline
type Options struct {
	Providers  Providers
	Strategy   *strategyconfig.Config
	Analyst    contracts.Analyst
	Repository contracts.ScanRepository
	Evaluator  *alerts.Evaluator
	CandleDays int
}

// NewPipeline creates a new scan pipeline
func NewPipeline(opts Options, log *logger.Logger) *Pipeline {
	if opts.Strategy == nil {
		opts.Strategy = strategyconfig.Default()
	}
	if opts.CandleDays <= 0 {
		opts.CandleDays = 60
	}

	return &Pipeline{
		providers:  opts.Providers,
		strategy:   opts.Strategy,
		calculator: scoring.NewCalculator(log),
		classifier: classify.NewClassifier(opts.Strategy, opts.Analyst, log),
		targets:    targets.NewEngine(opts.Strategy.Targets, log),
		repo:       opts.Repository,
		evaluator:  opts.Evaluator,
		candleDays: opts.CandleDays,
		logger:     log.WithComponent("scan"),
		now:        time.Now,
	}
}

// Run scans tickers one at a time. A failing ticker never aborts the run.
func (p *Pipeline) Run(ctx context.Context, tickers []string) Summary {
	tickers = NormalizeTickers(tickers)

	summary := Summary{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
		Tickers:   len(tickers),
		ByClass:   make(map[contracts.Classification]int),
	}

	configHash, _ := strategyconfig.Hash(p.strategy)
	p.logger.WithFields(map[string]interface{}{
		"run_id":      summary.RunID,
		"tickers":     len(tickers),
		"strategy":    p.strategy.Meta.StrategyID,
		"config_hash": configHash,
		"dry_run":     p.repo == nil,
	}).Info("Starting scan")

	for _, ticker := range tickers {
		if ctx.Err() != nil {
			p.logger.Warn("Scan cancelled")
			break
		}

		res := p.Analyze(ctx, ticker)
		if !res.Admitted {
			summary.Filtered++
			p.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"reason": res.Reason,
			}).Debug("Ticker filtered out of universe")
			continue
		}

		summary.Analyzed++
		summary.ByClass[res.Analysis.Classification.Classification]++

		if p.repo == nil {
			continue
		}

		id, err := p.persist(ctx, summary.RunID, res)
		if err != nil {
			summary.Failed++
			p.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"error":  err.Error(),
			}).Warn("Failed to persist scan result")
			continue
		}

		if p.evaluator != nil {
			summary.Alerts += p.evaluator.Evaluate(ctx, alerts.Input{ScanResultID: id, Analysis: res.Analysis})
		}
	}

	summary.Duration = p.now().Sub(summary.StartedAt)

	p.logger.WithFields(map[string]interface{}{
		"run_id":   summary.RunID,
		"analyzed": summary.Analyzed,
		"filtered": summary.Filtered,
		"failed":   summary.Failed,
		"alerts":   summary.Alerts,
		"duration": summary.Duration.String(),
	}).Info("Scan completed")

	return summary
}

// Analyze builds the decision for one ticker without writing anything
func (p *Pipeline) Analyze(ctx context.Context, ticker string) Result {
	data := p.fetch(ctx, ticker)

	if ok, reason := p.strategy.Universe.Admit(data.price, data.fundamentals); !ok {
		return Result{Admitted: false, Reason: reason, Analysis: contracts.Analysis{Ticker: ticker}}
	}

	merged := sentiment.Merge(ticker, data.sentiment)
	scores := p.calculator.Calculate(scoring.Inputs{
		Sentiment:    merged,
		Price:        data.price,
		Fundamentals: data.fundamentals,
	})

	classification, aiTarget := p.classifier.Analyze(ctx, contracts.AnalystInput{
		Ticker:       ticker,
		Sentiment:    merged,
		Price:        data.price,
		Fundamentals: data.fundamentals,
		Scores:       scores,
	})

	targetPrices, _ := p.targets.Calculate(data.price, data.fundamentals, scores.Risk, aiTarget)

	return Result{
		Admitted: true,
		Candles:  data.candles,
		Analysis: contracts.Analysis{
			Ticker:         ticker,
			Sentiment:      merged,
			Price:          data.price,
			Fundamentals:   data.fundamentals,
			Scores:         scores,
			Classification: classification,
			Targets:        targetPrices,
		},
	}
}

type tickerData struct {
	sentiment    []contracts.SentimentRecord
	price        *contracts.PriceSnapshot
	fundamentals *contracts.FundamentalsSnapshot
	candles      []contracts.HistoricalCandle
}

// fetch queries every provider for one ticker. Providers never fail;
// each is still gated by its own rate limiter.
func (p *Pipeline) fetch(ctx context.Context, ticker string) tickerData {
	var (
		data tickerData
		mu   sync.Mutex
		g    errgroup.Group
	)

	for _, sp := range p.providers.Sentiment {
		g.Go(func() error {
			records := sp.FetchSentiment(ctx, ticker)
			mu.Lock()
			data.sentiment = append(data.sentiment, records...)
			mu.Unlock()
			return nil
		})
	}

	if p.providers.Price != nil {
		g.Go(func() error {
			data.price = p.providers.Price.FetchPrice(ctx, ticker)
			return nil
		})
	}

	if p.providers.Fundamentals != nil {
		g.Go(func() error {
			data.fundamentals = p.providers.Fundamentals.FetchFundamentals(ctx, ticker)
			return nil
		})
	}

	if p.providers.Candles != nil {
		g.Go(func() error {
			to := p.now()
			data.candles = p.providers.Candles.FetchCandles(ctx, ticker, to.AddDate(0, 0, -p.candleDays), to)
			return nil
		})
	}

	_ = g.Wait()

	if data.price == nil {
		p.logger.WithField("ticker", ticker).Debug("No price snapshot, targets skipped")
	}

	return data
}

func (p *Pipeline) persist(ctx context.Context, runID string, res Result) (int64, error) {
	id, err := p.repo.SaveScanResult(ctx, &contracts.ScanResult{
		RunID:     runID,
		Ticker:    res.Analysis.Ticker,
		ScannedAt: p.now(),
		Analysis:  res.Analysis,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", contracts.ErrPersistence, err)
	}

	if len(res.Candles) > 0 {
		if err := p.repo.UpsertPriceHistory(ctx, res.Analysis.Ticker, res.Candles); err != nil {
			p.logger.WithFields(map[string]interface{}{
				"ticker": res.Analysis.Ticker,
				"error":  err.Error(),
			}).Warn("Failed to upsert price history")
		}
	}

	return id, nil
}
