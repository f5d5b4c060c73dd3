package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

type fakeNotifier struct {
	channel string
	ok      bool

	mu    sync.Mutex
	calls []contracts.AlertPayload
}

func (f *fakeNotifier) Channel() string { return f.channel }

func (f *fakeNotifier) Send(_ context.Context, p contracts.AlertPayload) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	return f.ok
}

type fakeStore struct {
	events []contracts.AlertEvent
	err    error
}

func (s *fakeStore) SaveAlertEvent(_ context.Context, e *contracts.AlertEvent) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.events = append(s.events, *e)
	return int64(len(s.events)), nil
}

type fakeRules struct {
	rules []contracts.AlertRule
	err   error
}

func (f fakeRules) ListRules(context.Context, bool) ([]contracts.AlertRule, error) {
	return f.rules, f.err
}

func runnerAnalysis() contracts.Analysis {
	return contracts.Analysis{
		Ticker: "GME",
		Price:  &contracts.PriceSnapshot{Ticker: "GME", Price: 10},
		Scores: contracts.ScoreSet{Attention: 80, Momentum: 75, Fundamentals: 40, Risk: 45},
		Classification: contracts.ClassificationResult{
			Classification: contracts.ClassRunner,
			AlertType:      contracts.AlertRunner,
			AlertTriggered: true,
			Confidence:     0.7,
		},
		Targets: contracts.TargetPrices{Average: 13, StopLoss: 9},
	}
}

func TestMatches(t *testing.T) {
	a := runnerAnalysis()

	tests := []struct {
		name string
		cond contracts.AlertConditions
		want bool
	}{
		{"empty matches everything", contracts.AlertConditions{}, true},
		{"classification in set", contracts.AlertConditions{Classifications: []contracts.Classification{contracts.ClassValue, contracts.ClassRunner}}, true},
		{"classification not in set", contracts.AlertConditions{Classifications: []contracts.Classification{contracts.ClassValue}}, false},
		{"min attention inclusive", contracts.AlertConditions{MinAttention: contracts.IntPtr(80)}, true},
		{"min attention fails", contracts.AlertConditions{MinAttention: contracts.IntPtr(81)}, false},
		{"max risk inclusive", contracts.AlertConditions{MaxRisk: contracts.IntPtr(45)}, true},
		{"max risk fails", contracts.AlertConditions{MaxRisk: contracts.IntPtr(44)}, false},
		{"min risk for pump rules", contracts.AlertConditions{MinRisk: contracts.IntPtr(80)}, false},
		{"min confidence", contracts.AlertConditions{MinConfidence: contracts.Float64Ptr(0.7)}, true},
		{"min upside", contracts.AlertConditions{MinUpside: contracts.Float64Ptr(30)}, true},
		{"min upside fails", contracts.AlertConditions{MinUpside: contracts.Float64Ptr(30.1)}, false},
		{"max price", contracts.AlertConditions{MaxPrice: contracts.Float64Ptr(5)}, false},
		{
			"all predicates must hold",
			contracts.AlertConditions{MinAttention: contracts.IntPtr(70), MinMomentum: contracts.IntPtr(76)},
			false,
		},
		{
			"all present predicates hold",
			contracts.AlertConditions{
				MinAttention: contracts.IntPtr(70), MinMomentum: contracts.IntPtr(70),
				MinFundamentals: contracts.IntPtr(40), MaxPrice: contracts.Float64Ptr(10),
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.cond, a))
		})
	}

	noPrice := runnerAnalysis()
	noPrice.Price = nil
	assert.False(t, Matches(contracts.AlertConditions{MaxPrice: contracts.Float64Ptr(100)}, noPrice))
}

func TestSelectStrategy(t *testing.T) {
	assert.IsType(t, DefaultEvaluation{}, SelectStrategy(nil))
	assert.IsType(t, RuleBasedEvaluation{}, SelectStrategy([]contracts.AlertRule{{ID: 1}}))
	// 비활성 규칙만 있어도 규칙 기반 (기본 알림으로 대체하지 않음)
	assert.IsType(t, RuleBasedEvaluation{}, SelectStrategy([]contracts.AlertRule{{ID: 1, Enabled: false}}))
}

func TestRuleBasedEvaluation(t *testing.T) {
	discord := &fakeNotifier{channel: "discord", ok: true}
	slack := &fakeNotifier{channel: "slack", ok: false}
	email := &fakeNotifier{channel: "email", ok: true}
	store := &fakeStore{}
	d := NewDispatcher([]contracts.Notifier{discord, slack, email}, store, logger.Nop())

	rules := []contracts.AlertRule{
		{
			ID: 1, Name: "runners", Enabled: true,
			Conditions: contracts.AlertConditions{Classifications: []contracts.Classification{contracts.ClassRunner}},
			Channels:   []string{"discord", "slack", "discord", "sms"},
		},
		{
			ID: 2, Name: "disabled", Enabled: false,
			Channels: []string{"email"},
		},
		{
			ID: 3, Name: "value only", Enabled: true, AlertType: contracts.AlertValue,
			Conditions: contracts.AlertConditions{Classifications: []contracts.Classification{contracts.ClassValue}},
			Channels:   []string{"email"},
		},
		{
			ID: 4, Name: "slack only", Enabled: true,
			Channels: []string{"slack"},
		},
		{
			ID: 5, Name: "high attention", Enabled: true, AlertType: contracts.AlertBoth,
			Conditions: contracts.AlertConditions{MinAttention: contracts.IntPtr(75)},
			Channels:   []string{"email"},
		},
	}

	e := NewEvaluator(d, SelectStrategy(rules), logger.Nop())
	count := e.Evaluate(context.Background(), Input{ScanResultID: 42, Analysis: runnerAnalysis()})

	// rule 1 (discord 성공), rule 5 (email 성공). rule 4 는 slack 실패로 미집계
	assert.Equal(t, 2, count)
	require.Len(t, store.events, 2)

	first := store.events[0]
	assert.Equal(t, int64(42), first.ScanResultID)
	require.NotNil(t, first.RuleID)
	assert.Equal(t, int64(1), *first.RuleID)
	assert.Equal(t, []string{"discord"}, first.SentTo)
	assert.Equal(t, contracts.AlertRunner, first.AlertType, "rule without alert type inherits classification")

	second := store.events[1]
	assert.Equal(t, int64(5), *second.RuleID)
	assert.Equal(t, contracts.AlertBoth, second.AlertType)
	assert.Equal(t, []string{"email"}, second.SentTo)

	assert.Len(t, discord.calls, 1, "duplicate channel entries are not retried")
	assert.Len(t, slack.calls, 2)
	assert.Len(t, email.calls, 1)
	assert.Equal(t, "runners", discord.calls[0].RuleName)
}

func TestRuleBasedEvaluation_NoAlertTypeSkipsDispatch(t *testing.T) {
	discord := &fakeNotifier{channel: "discord", ok: true}
	store := &fakeStore{}
	d := NewDispatcher([]contracts.Notifier{discord}, store, logger.Nop())

	rules := []contracts.AlertRule{
		{ID: 1, Name: "catch all", Enabled: true, Channels: []string{"discord"}},
		{ID: 2, Name: "explicit", Enabled: true, AlertType: contracts.AlertValue, Channels: []string{"discord"}},
	}
	e := NewEvaluator(d, SelectStrategy(rules), logger.Nop())

	watch := runnerAnalysis()
	watch.Classification = contracts.ClassificationResult{Classification: contracts.ClassWatch}

	// rule 1 은 유형 없음 → 발송 안 함, rule 2 는 명시 유형으로 발송
	count := e.Evaluate(context.Background(), Input{ScanResultID: 9, Analysis: watch})
	assert.Equal(t, 1, count)
	require.Len(t, store.events, 1)
	assert.Equal(t, contracts.AlertValue, store.events[0].AlertType)
	assert.Equal(t, int64(2), *store.events[0].RuleID)
	assert.Len(t, discord.calls, 1)
}

func TestDefaultEvaluation(t *testing.T) {
	discord := &fakeNotifier{channel: "discord", ok: true}
	slack := &fakeNotifier{channel: "slack", ok: true}
	store := &fakeStore{}
	d := NewDispatcher([]contracts.Notifier{discord, slack}, store, logger.Nop())
	e := NewEvaluator(d, SelectStrategy(nil), logger.Nop())

	count := e.Evaluate(context.Background(), Input{ScanResultID: 7, Analysis: runnerAnalysis()})
	assert.Equal(t, 1, count)
	require.Len(t, store.events, 1)
	assert.Nil(t, store.events[0].RuleID)
	assert.Equal(t, []string{"discord", "slack"}, store.events[0].SentTo)

	watch := runnerAnalysis()
	watch.Classification = contracts.ClassificationResult{Classification: contracts.ClassWatch}
	assert.Equal(t, 0, e.Evaluate(context.Background(), Input{Analysis: watch}))
	assert.Len(t, store.events, 1)
}

func TestDispatch_NoConfirmationNoEvent(t *testing.T) {
	store := &fakeStore{}
	d := NewDispatcher([]contracts.Notifier{
		&fakeNotifier{channel: "discord", ok: false},
		&fakeNotifier{channel: "slack", ok: false},
	}, store, logger.Nop())
	e := NewEvaluator(d, DefaultEvaluation{}, logger.Nop())

	assert.Equal(t, 0, e.Evaluate(context.Background(), Input{Analysis: runnerAnalysis()}))
	assert.Empty(t, store.events)
}

func TestDispatch_PersistenceFailureStillCounts(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	d := NewDispatcher([]contracts.Notifier{&fakeNotifier{channel: "discord", ok: true}}, store, logger.Nop())
	e := NewEvaluator(d, DefaultEvaluation{Channels: []string{"discord"}}, logger.Nop())

	assert.Equal(t, 1, e.Evaluate(context.Background(), Input{Analysis: runnerAnalysis()}))
}

func TestLoadEvaluator(t *testing.T) {
	d := NewDispatcher(nil, nil, logger.Nop())

	e := LoadEvaluator(context.Background(), fakeRules{err: errors.New("db down")}, d, logger.Nop())
	assert.Equal(t, "default", e.Strategy().Name())

	e = LoadEvaluator(context.Background(), fakeRules{rules: []contracts.AlertRule{{ID: 1, Enabled: true}}}, d, logger.Nop())
	assert.Equal(t, "rules", e.Strategy().Name())

	e = LoadEvaluator(context.Background(), nil, d, logger.Nop())
	assert.Equal(t, "default", e.Strategy().Name())
}

func TestBuildPayload(t *testing.T) {
	at := time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)
	p := BuildPayload(runnerAnalysis(), contracts.AlertRunner, "runners", at)

	assert.Equal(t, "GME", p.Ticker)
	assert.Equal(t, 10.0, p.Price)
	assert.Equal(t, 13.0, p.Target)
	assert.Equal(t, 9.0, p.StopLoss)
	assert.Equal(t, at, p.GeneratedAt)
	assert.Equal(t, "RUNNER GME [runner] $10.00 -> $13.00 (+30.0%) stop $9.00 | A80 M75 F40 R45", p.Message)
}
