package strategyconfig

import "fmt"

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Thresholds (모든 점수는 0~100) ===
	scores := []struct {
		field string
		value int
	}{
		{"runner.min_attention", cfg.Runner.MinAttention},
		{"runner.min_momentum", cfg.Runner.MinMomentum},
		{"runner.max_risk", cfg.Runner.MaxRisk},
		{"value.min_fundamentals", cfg.Value.MinFundamentals},
		{"value.min_momentum", cfg.Value.MinMomentum},
		{"value.max_momentum", cfg.Value.MaxMomentum},
		{"value.max_risk", cfg.Value.MaxRisk},
		{"pump_warning.min_risk", cfg.PumpWarning.MinRisk},
	}
	for _, s := range scores {
		if err := validateScore(s.value); err != nil {
			return ValidationError{s.field, err.Error()}
		}
	}

	if cfg.Value.MinMomentum > cfg.Value.MaxMomentum {
		return ValidationError{"value", "min_momentum must be <= max_momentum"}
	}
	if cfg.PumpWarning.MinRisk == 0 {
		return ValidationError{"pump_warning.min_risk", "must be > 0 (0 would classify everything as avoid)"}
	}

	// === Universe ===
	if cfg.Universe.MaxPrice < 0 {
		return ValidationError{"universe.max_price", "must be >= 0"}
	}
	if cfg.Universe.MaxMarketCap < 0 {
		return ValidationError{"universe.max_market_cap", "must be >= 0"}
	}

	// === Targets ===
	if cfg.Targets.DefaultSectorPE <= 0 {
		return ValidationError{"targets.default_sector_pe", "must be > 0"}
	}
	seen := make(map[string]bool, len(cfg.Targets.SectorPE))
	for i, row := range cfg.Targets.SectorPE {
		field := fmt.Sprintf("targets.sector_pe[%d]", i)
		if row.Sector == "" {
			return ValidationError{field + ".sector", "required"}
		}
		if row.PE <= 0 {
			return ValidationError{field + ".pe", "must be > 0"}
		}
		if seen[row.Sector] {
			return ValidationError{field + ".sector", "duplicate: " + row.Sector}
		}
		seen[row.Sector] = true
	}

	return nil
}

func validateScore(v int) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("must be in [0, 100], got %d", v)
	}
	return nil
}
