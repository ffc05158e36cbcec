package config

import (
	"roicalculator/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("ROI_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("ROI_TEST_KEY", "default"))
	assert.Equal(t, "default", GetEnv("ROI_TEST_MISSING", "default"))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HISTORY_YEARS", "not-a-number")
	t.Setenv("BENCHMARK_RELOAD_INTERVAL", "2h")
	t.Setenv("DATA_SOURCE", "PAGE")

	cfg := LoadConfig()
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, 4, cfg.HistoryYears)
	assert.Equal(t, 2*time.Hour, cfg.BenchmarkReloadInterval)
	assert.Equal(t, "page", cfg.DataSource)
}

func TestLoadBenchmarksYAML(t *testing.T) {
	cfg, err := LoadBenchmarks("testdata/benchmarks.yaml")
	require.NoError(t, err)
	assert.Len(t, cfg, 14)

	pe := cfg["pe_ratio"]
	assert.Equal(t, [5]float64{10, 15, 20, 25, 30}, pe.Thresholds())
	assert.Equal(t, 2.0, pe.Weight)
	assert.Equal(t, 0.005, cfg["dividend_yield"].BM5)
}

func TestLoadBenchmarksTOML(t *testing.T) {
	cfg, err := LoadBenchmarks("testdata/benchmarks.toml")
	require.NoError(t, err)
	require.Len(t, cfg, 2)
	assert.Equal(t, 3.0, cfg["roe"].Weight)
	assert.Equal(t, 20.0, cfg["roe"].BM1)
}

func TestLoadBenchmarksRejectsBadInput(t *testing.T) {
	_, err := LoadBenchmarks("testdata/unordered.yaml")
	assert.ErrorContains(t, err, "not ordered")

	_, err = LoadBenchmarks("testdata/missing.yaml")
	assert.Error(t, err)

	_, err = LoadBenchmarks("config.go")
	assert.ErrorContains(t, err, "unsupported")
}

func TestValidateBenchmarksDirection(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.BenchmarkConfig
		err  string
	}{
		{"pe ascending", types.BenchmarkConfig{"pe_ratio": {BM1: 10, BM2: 15, BM3: 20, BM4: 25, BM5: 30}}, ""},
		{"pe descending", types.BenchmarkConfig{"pe_ratio": {BM1: 30, BM2: 25, BM3: 20, BM4: 15, BM5: 10}}, "not ordered ascending"},
		{"roe descending", types.BenchmarkConfig{"roe": {BM1: 25, BM2: 20, BM3: 15, BM4: 10, BM5: 5}}, ""},
		{"roe ascending", types.BenchmarkConfig{"roe": {BM1: 5, BM2: 10, BM3: 15, BM4: 20, BM5: 25}}, "not ordered descending"},
		{"unknown key either way", types.BenchmarkConfig{"custom": {BM1: 5, BM2: 4, BM3: 3, BM4: 2, BM5: 1}}, ""},
		{"negative weight", types.BenchmarkConfig{"pe_ratio": {BM1: 10, BM2: 15, BM3: 20, BM4: 25, BM5: 30, Weight: -1}}, "negative weight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBenchmarks(tt.cfg)
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.err)
		})
	}
}
