package strategyconfig

import "strings"

// Config는 분류/목표가/유니버스 전략의 전체 설정
type Config struct {
	Meta        Meta           `yaml:"meta" json:"meta"`
	Runner      RunnerRule     `yaml:"runner" json:"runner"`
	Value       ValueRule      `yaml:"value" json:"value"`
	PumpWarning PumpWarning    `yaml:"pump_warning" json:"pump_warning"`
	Universe    UniverseFilter `yaml:"universe" json:"universe"`
	Targets     Targets        `yaml:"targets" json:"targets"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// RunnerRule: attention >= MinAttention AND momentum >= MinMomentum AND risk <= MaxRisk
type RunnerRule struct {
	MinAttention int `yaml:"min_attention" json:"min_attention"`
	MinMomentum  int `yaml:"min_momentum" json:"min_momentum"`
	MaxRisk      int `yaml:"max_risk" json:"max_risk"`
}

// ValueRule: fundamentals >= MinFundamentals AND MinMomentum <= momentum <= MaxMomentum AND risk <= MaxRisk
type ValueRule struct {
	MinFundamentals int `yaml:"min_fundamentals" json:"min_fundamentals"`
	MinMomentum     int `yaml:"min_momentum" json:"min_momentum"`
	MaxMomentum     int `yaml:"max_momentum" json:"max_momentum"`
	MaxRisk         int `yaml:"max_risk" json:"max_risk"`
}

// PumpWarning: risk >= MinRisk -> avoid (모든 규칙보다 우선)
type PumpWarning struct {
	MinRisk int `yaml:"min_risk" json:"min_risk"`
}

// UniverseFilter decides ticker admission before scoring.
// Zero/empty values disable the corresponding check.
type UniverseFilter struct {
	MaxPrice         float64  `yaml:"max_price" json:"max_price"`
	MaxMarketCap     float64  `yaml:"max_market_cap" json:"max_market_cap"`
	AllowedCountries []string `yaml:"allowed_countries" json:"allowed_countries"`
	AllowedExchanges []string `yaml:"allowed_exchanges" json:"allowed_exchanges"`
	ExcludeETFs      bool     `yaml:"exclude_etfs" json:"exclude_etfs"`
}

// Targets 목표가 엔진 설정
// 주의: map 대신 slice 사용으로 해시 재현성 보장
type Targets struct {
	DefaultSectorPE float64    `yaml:"default_sector_pe" json:"default_sector_pe"`
	SectorPE        []SectorPE `yaml:"sector_pe" json:"sector_pe"`
}

// SectorPE is one row of the sector-average P/E table
type SectorPE struct {
	Sector string  `yaml:"sector" json:"sector"`
	PE     float64 `yaml:"pe" json:"pe"`
}

// SectorAveragePE looks up a sector (case-insensitive), falling back to the default
func (t Targets) SectorAveragePE(sector string) float64 {
	for _, row := range t.SectorPE {
		if strings.EqualFold(row.Sector, strings.TrimSpace(sector)) {
			return row.PE
		}
	}
	if t.DefaultSectorPE > 0 {
		return t.DefaultSectorPE
	}
	return 15
}

// Default returns the built-in thresholds
func Default() *Config {
	return &Config{
		Meta: Meta{StrategyID: "default", Version: "1"},
		Runner: RunnerRule{
			MinAttention: 70,
			MinMomentum:  70,
			MaxRisk:      70,
		},
		Value: ValueRule{
			MinFundamentals: 70,
			MinMomentum:     30,
			MaxMomentum:     70,
			MaxRisk:         60,
		},
		PumpWarning: PumpWarning{MinRisk: 80},
		Universe: UniverseFilter{
			AllowedCountries: []string{"USA"},
			AllowedExchanges: []string{"NYSE", "NASDAQ", "AMEX", "OTC"},
		},
		Targets: Targets{
			DefaultSectorPE: 15,
			SectorPE: []SectorPE{
				{Sector: "Technology", PE: 28},
				{Sector: "Healthcare", PE: 22},
				{Sector: "Financial", PE: 13},
				{Sector: "Consumer Cyclical", PE: 20},
				{Sector: "Consumer Defensive", PE: 21},
				{Sector: "Communication Services", PE: 18},
				{Sector: "Industrials", PE: 19},
				{Sector: "Energy", PE: 11},
				{Sector: "Basic Materials", PE: 14},
				{Sector: "Real Estate", PE: 30},
				{Sector: "Utilities", PE: 17},
			},
		},
	}
}
