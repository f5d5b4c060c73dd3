package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/contracts"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 70, cfg.Runner.MinAttention)
	assert.Equal(t, 70, cfg.Runner.MinMomentum)
	assert.Equal(t, 70, cfg.Runner.MaxRisk)
	assert.Equal(t, 70, cfg.Value.MinFundamentals)
	assert.Equal(t, 30, cfg.Value.MinMomentum)
	assert.Equal(t, 70, cfg.Value.MaxMomentum)
	assert.Equal(t, 60, cfg.Value.MaxRisk)
	assert.Equal(t, 80, cfg.PumpWarning.MinRisk)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	cfg, data, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	yamlData := `
meta:
  strategy_id: aggressive
  version: "2"
runner:
  min_attention: 60
  min_momentum: 65
  max_risk: 75
pump_warning:
  min_risk: 85
universe:
  max_price: 20
  exclude_etfs: true
targets:
  default_sector_pe: 16
  sector_pe:
    - sector: Technology
      pe: 30
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	cfg, raw, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	assert.Equal(t, "aggressive", cfg.Meta.StrategyID)
	assert.Equal(t, 60, cfg.Runner.MinAttention)
	assert.Equal(t, 85, cfg.PumpWarning.MinRisk)
	// value 섹션 미지정 → 기본값 유지
	assert.Equal(t, 70, cfg.Value.MinFundamentals)
	assert.Equal(t, 20.0, cfg.Universe.MaxPrice)
	assert.True(t, cfg.Universe.ExcludeETFs)
	assert.Equal(t, 30.0, cfg.Targets.SectorAveragePE("technology"))
	assert.Equal(t, 16.0, cfg.Targets.SectorAveragePE("Unknown"))
}

func TestParse_UnknownFieldFails(t *testing.T) {
	_, err := Parse([]byte("runner:\n  min_atention: 60\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"score out of range", func(c *Config) { c.Runner.MaxRisk = 120 }, "runner.max_risk"},
		{"inverted momentum band", func(c *Config) { c.Value.MinMomentum = 80 }, "value"},
		{"zero pump threshold", func(c *Config) { c.PumpWarning.MinRisk = 0 }, "pump_warning.min_risk"},
		{"negative max price", func(c *Config) { c.Universe.MaxPrice = -1 }, "universe.max_price"},
		{"zero default pe", func(c *Config) { c.Targets.DefaultSectorPE = 0 }, "targets.default_sector_pe"},
		{
			"duplicate sector",
			func(c *Config) {
				c.Targets.SectorPE = append(c.Targets.SectorPE, SectorPE{Sector: "Energy", PE: 9})
			},
			"targets.sector_pe[11].sector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Runner.MinAttention = 71
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestUniverseFilter_Admit(t *testing.T) {
	filter := UniverseFilter{
		MaxPrice:         20,
		MaxMarketCap:     2e9,
		AllowedCountries: []string{"USA"},
		AllowedExchanges: []string{"NYSE", "NASDAQ", "OTC"},
		ExcludeETFs:      true,
	}

	tests := []struct {
		name  string
		price *contracts.PriceSnapshot
		f     *contracts.FundamentalsSnapshot
		want  bool
	}{
		{"no data admits", nil, nil, true},
		{"too expensive", &contracts.PriceSnapshot{Price: 25}, nil, false},
		{"too large", &contracts.PriceSnapshot{Price: 5}, &contracts.FundamentalsSnapshot{MarketCap: 5e9}, false},
		{"etf", nil, &contracts.FundamentalsSnapshot{IsETF: true}, false},
		{"foreign", nil, &contracts.FundamentalsSnapshot{Country: "China"}, false},
		{"otc family", nil, &contracts.FundamentalsSnapshot{Country: "usa", Exchange: "OTCQB"}, true},
		{"exchange not allowed", nil, &contracts.FundamentalsSnapshot{Exchange: "TSX"}, false},
		{"eligible", &contracts.PriceSnapshot{Price: 8}, &contracts.FundamentalsSnapshot{MarketCap: 3e8, Country: "USA", Exchange: "NASDAQ"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := filter.Admit(tt.price, tt.f)
			assert.Equal(t, tt.want, ok)
			if !ok {
				assert.NotEmpty(t, reason)
			}
		})
	}
}
