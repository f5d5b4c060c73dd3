package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tickerscope/internal/ai"
	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/external"
	"github.com/wonny/tickerscope/internal/external/apewisdom"
	"github.com/wonny/tickerscope/internal/external/finviz"
	"github.com/wonny/tickerscope/internal/external/sec"
	"github.com/wonny/tickerscope/internal/external/stocktwits"
	"github.com/wonny/tickerscope/internal/external/yahoo"
	"github.com/wonny/tickerscope/internal/notify"
	"github.com/wonny/tickerscope/internal/scan"
	"github.com/wonny/tickerscope/internal/strategyconfig"
	"github.com/wonny/tickerscope/internal/tracker"
	"github.com/wonny/tickerscope/pkg/config"
	"github.com/wonny/tickerscope/pkg/database"
	"github.com/wonny/tickerscope/pkg/httputil"
	"github.com/wonny/tickerscope/pkg/logger"
	"github.com/wonny/tickerscope/pkg/ratelimit"
	"github.com/wonny/tickerscope/pkg/redis"
)

// browserUserAgent is sent to sites that reject non-browser clients (Finviz)
const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// app holds the process-wide collaborators shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB // nil when the command runs without a database
	redis    *redis.Client
	strategy *strategyconfig.Config

	providers scan.Providers
	trending  *apewisdom.Client
	analyst   contracts.Analyst
}

// newApp loads config and builds providers. needDB connects to PostgreSQL.
func newApp(ctx context.Context, needDB bool) (*app, error) {
	cfg, err := loadConfig(needDB)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	strategy, _, err := strategyconfig.Load(cfg.Scan.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}

	a := &app{cfg: cfg, log: log, strategy: strategy}

	if needDB {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		log.Info("Connected to database")
	}

	// 캐시는 선택 사항: 연결 실패 시 메모리 캐시로 대체
	a.redis = redis.NewOrLocal(cfg, log)

	a.buildProviders()

	if cfg.Gemini.Enabled() {
		analyst, err := ai.NewGemini(ctx, cfg.Gemini, log)
		if err != nil {
			log.WithError(err).Warn("Analyst disabled")
		} else {
			a.analyst = analyst
		}
	}

	return a, nil
}

// buildProviders gives every upstream its own limiter and http client
func (a *app) buildProviders() {
	p := a.cfg.Providers
	client := func(name string, pc config.ProviderConfig) *httputil.Client {
		limiter := ratelimit.New(name, pc.MaxConcurrent, pc.MinDelay)
		return httputil.NewForProvider(pc, limiter, a.log.WithComponent("http_"+name))
	}

	ape := apewisdom.NewClient(client("apewisdom", p.ApeWisdom), p.ApeWisdom.BaseURL, a.log)
	st := stocktwits.NewClient(client("stocktwits", p.Stocktwits), p.Stocktwits.BaseURL, a.log)
	yh := yahoo.NewClient(client("yahoo", p.Yahoo), p.Yahoo.BaseURL, a.log)

	fv := finviz.NewClient(client("finviz", p.Finviz).WithHeader("User-Agent", browserUserAgent), p.Finviz.BaseURL, a.log)
	edgar := sec.NewClient(client("sec", p.SEC).WithHeader("User-Agent", p.SECUserAgent), p.SEC.BaseURL, a.log)

	var fundamentals contracts.FundamentalsProvider = sec.NewEnrich(fv, edgar)
	fundamentals = external.NewCachedFundamentals(fundamentals,
		redis.NewCache(a.redis, "tickerscope"), p.FundamentalsCacheTTL, a.log)

	a.trending = ape
	a.providers = scan.Providers{
		Sentiment:    []contracts.SentimentProvider{ape, st},
		Price:        yh,
		Candles:      yh,
		Fundamentals: fundamentals,
	}
}

// notifiers builds the delivery channels. Webhooks get one attempt each.
func (a *app) notifiers(hub *notify.Hub) []contracts.Notifier {
	webhook := httputil.New(a.log.WithComponent("http_notify"), 10*time.Second).DisableRetry()
	return notify.Build(a.cfg.Notify, webhook, hub, a.log)
}

// pipeline builds a scan pipeline. dryRun skips persistence and alerts.
func (a *app) pipeline(ctx context.Context, notifiers []contracts.Notifier, dryRun bool) *scan.Pipeline {
	opts := scan.Options{
		Providers:  a.providers,
		Strategy:   a.strategy,
		Analyst:    a.analyst,
		CandleDays: a.cfg.Scan.CandleDays,
	}

	if !dryRun && a.db != nil {
		opts.Repository = scan.NewRepository(a.db.Pool)
		ruleRepo := alerts.NewRepository(a.db.Pool)
		dispatcher := alerts.NewDispatcher(notifiers, ruleRepo, a.log)
		opts.Evaluator = alerts.LoadEvaluator(ctx, ruleRepo, dispatcher, a.log)
	}

	return scan.NewPipeline(opts, a.log)
}

// tracker builds the return tracker; requires a database
func (a *app) tracker() *tracker.Tracker {
	return tracker.NewTracker(tracker.NewRepository(a.db.Pool), a.providers.Candles, a.log.Zerolog())
}

// resolveTickers picks tickers from args, then the file, then ApeWisdom trending
func (a *app) resolveTickers(ctx context.Context, args []string, file string, limit int) ([]string, error) {
	if tickers := scan.NormalizeTickers(args); len(tickers) > 0 {
		return tickers, nil
	}

	if file == "" {
		file = a.cfg.Scan.TickersFile
	}
	if file != "" {
		return scan.LoadTickers(file)
	}

	tickers := a.trending.Trending(ctx, limit)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers given and trending list unavailable")
	}
	a.log.WithField("count", len(tickers)).Info("Using trending tickers")
	return tickers, nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
