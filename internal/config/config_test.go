package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/core/domain"
)

func TestParseFineOverrides(t *testing.T) {
	overrides, err := ParseFineOverrides(" north-high=2.50:1, south-primary=0.25 ,")
	require.NoError(t, err)
	require.Len(t, overrides, 2)

	assert.True(t, decimal.RequireFromString("2.5").Equal(overrides["north-high"].PerDay))
	assert.Equal(t, 1, overrides["north-high"].GraceDays)
	assert.True(t, decimal.RequireFromString("0.25").Equal(overrides["south-primary"].PerDay))
	assert.Equal(t, 0, overrides["south-primary"].GraceDays)
}

func TestParseFineOverrides_Invalid(t *testing.T) {
	for _, raw := range []string{"noequals", "=1.0", "a=abc", "a=-1", "a=1:x", "a=1:-2"} {
		_, err := ParseFineOverrides(raw)
		assert.Error(t, err, raw)
	}
}

func TestFinePolicyFor(t *testing.T) {
	cfg := &Config{Circulation: CirculationConfig{
		FinePolicy: domain.FinePolicy{PerDay: decimal.NewFromInt(2)},
		FineOverrides: map[string]domain.FinePolicy{
			"north-high": {PerDay: decimal.RequireFromString("0.5"), GraceDays: 3},
		},
	}}

	assert.Equal(t, 3, cfg.FinePolicyFor("north-high").GraceDays)
	assert.True(t, decimal.NewFromInt(2).Equal(cfg.FinePolicyFor("other").PerDay))
}

func TestLoadDatabaseConfig_Driver(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	d, err := loadDatabaseConfig("prod")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Driver)
	assert.Equal(t, "5432", d.Port)

	t.Setenv("DB_DRIVER", "oracle")
	_, err = loadDatabaseConfig("dev")
	assert.Error(t, err)
}

func TestLoadCirculationConfig(t *testing.T) {
	t.Setenv("FINE_PER_DAY", "0.75")
	t.Setenv("FINE_GRACE_DAYS", "2")
	t.Setenv("LOAN_DELETE_RESTORES_AVAILABILITY", "true")

	c, err := loadCirculationConfig()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.75").Equal(c.FinePolicy.PerDay))
	assert.Equal(t, 2, c.FinePolicy.GraceDays)
	assert.True(t, c.DeleteRestoresAvailability)
	assert.Equal(t, "@every 1h", c.OverdueCron)

	t.Setenv("FINE_PER_DAY", "-1")
	_, err = loadCirculationConfig()
	assert.Error(t, err)
}
