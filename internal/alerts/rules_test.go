package alerts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/contracts"
)

func TestValidateRule(t *testing.T) {
	valid := func() contracts.AlertRule {
		return contracts.AlertRule{
			Name:      " hot runners ",
			Enabled:   true,
			AlertType: contracts.AlertRunner,
			Channels:  []string{" Discord", "slack"},
			Conditions: contracts.AlertConditions{
				Classifications: []contracts.Classification{contracts.ClassRunner},
				MinAttention:    contracts.IntPtr(70),
				MinConfidence:   contracts.Float64Ptr(0.6),
			},
		}
	}

	t.Run("normalizes valid rule", func(t *testing.T) {
		r := valid()
		require.NoError(t, ValidateRule(&r))
		assert.Equal(t, "hot runners", r.Name)
		assert.Equal(t, []string{"discord", "slack"}, r.Channels)
	})

	tests := []struct {
		name      string
		mutate    func(r *contracts.AlertRule)
		wantField string
	}{
		{"blank name", func(r *contracts.AlertRule) { r.Name = "  " }, "name"},
		{"unknown alert type", func(r *contracts.AlertRule) { r.AlertType = "moon" }, "alert_type"},
		{"no channels", func(r *contracts.AlertRule) { r.Channels = nil }, "channels"},
		{"empty channel", func(r *contracts.AlertRule) { r.Channels = []string{""} }, "channels"},
		{"bad classification", func(r *contracts.AlertRule) {
			r.Conditions.Classifications = []contracts.Classification{"hold"}
		}, "conditions.classification"},
		{"score out of range", func(r *contracts.AlertRule) { r.Conditions.MaxRisk = contracts.IntPtr(101) }, "conditions.max_risk"},
		{"confidence out of range", func(r *contracts.AlertRule) { r.Conditions.MinConfidence = contracts.Float64Ptr(1.5) }, "conditions.min_confidence"},
		{"non-positive max price", func(r *contracts.AlertRule) { r.Conditions.MaxPrice = contracts.Float64Ptr(0) }, "conditions.max_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := ValidateRule(&r)
			require.Error(t, err)
			var re *RuleError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.wantField, re.Field)
		})
	}

	t.Run("empty alert type inherits", func(t *testing.T) {
		r := valid()
		r.AlertType = contracts.AlertNone
		assert.NoError(t, ValidateRule(&r))
	})
}
