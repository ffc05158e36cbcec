package services

import (
	"context"
	"fmt"
	"roicalculator/config"
	"roicalculator/types"
	"sync/atomic"

	"go.uber.org/zap"
)

type BenchmarkServiceI interface {
	// Current returns a copy of the active configuration.
	Current() types.BenchmarkConfig
	Reload(ctx context.Context) error
}

// BenchmarkLoader fetches benchmark overrides from a store.
type BenchmarkLoader func(ctx context.Context) (types.BenchmarkConfig, error)

type benchmarkService struct {
	file    string
	remote  BenchmarkLoader
	current atomic.Pointer[types.BenchmarkConfig]
}

var BenchmarkService BenchmarkServiceI

// NewBenchmarkService loads the benchmark file once. remote may be nil; when set its
// entries override the file's on every reload.
func NewBenchmarkService(ctx context.Context, file string, remote BenchmarkLoader) (BenchmarkServiceI, error) {
	s := &benchmarkService{file: file, remote: remote}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *benchmarkService) Current() types.BenchmarkConfig {
	cfg := s.current.Load()
	if cfg == nil {
		return types.BenchmarkConfig{}
	}
	out := make(types.BenchmarkConfig, len(*cfg))
	for k, v := range *cfg {
		out[k] = v
	}
	return out
}

// Reload builds a new configuration and swaps it in. On error the previous
// configuration stays active.
func (s *benchmarkService) Reload(ctx context.Context) error {
	cfg, err := config.LoadBenchmarks(s.file)
	if err != nil {
		return fmt.Errorf("error loading benchmarks: %w", err)
	}

	if s.remote != nil {
		overrides, err := s.remote(ctx)
		if err != nil {
			zap.L().Error("Error while fetching benchmark overrides", zap.Error(err))
		} else {
			for name, bm := range overrides {
				cfg[name] = bm
			}
			if err := config.ValidateBenchmarks(cfg); err != nil {
				return err
			}
		}
	}

	s.current.Store(&cfg)
	zap.L().Info("Benchmarks loaded", zap.String("file", s.file), zap.Int("ratios", len(cfg)))
	return nil
}

// StaticBenchmarks serves a fixed configuration.
type StaticBenchmarks types.BenchmarkConfig

func (b StaticBenchmarks) Current() types.BenchmarkConfig { return types.BenchmarkConfig(b) }

func (b StaticBenchmarks) Reload(context.Context) error { return nil }
