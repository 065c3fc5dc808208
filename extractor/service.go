package extractor

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ProgressFunc is invoked after each chunk is processed so callers can drive
// a progress display without knowing about chunking internals.
type ProgressFunc func(current, total int)

// Service runs the full document pipeline: chunking, oracle calls, per-chunk
// span merging and the final aggregation pass.
type Service struct {
	provider Provider
	registry *Registry

	cfgMu sync.RWMutex
	cfg   Config

	logger *zap.Logger
}

// NewService constructs a service around the given oracle provider.
func NewService(provider Provider, registry *Registry, cfg Config, logger *zap.Logger) (*Service, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Service{
		provider: provider,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration.
func (s *Service) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}

// Registry exposes the class metadata used for report formatting.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Extract runs the oracle over every chunk of the document and returns the
// concatenated raw predictions. A failed chunk contributes zero predictions;
// the document is never aborted part-way.
func (s *Service) Extract(ctx context.Context, text string, onChunk ProgressFunc) []RawPrediction {
	chunks := ChunkText(text, s.Config().MaxChunkChars)
	var raw []RawPrediction
	for i, chunk := range chunks {
		preds, err := s.provider.Predict(ctx, chunk)
		if err != nil {
			s.logger.Warn("chunk prediction failed",
				zap.Int("chunk", i+1), zap.Int("total", len(chunks)), zap.Error(err))
		} else {
			raw = append(raw, preds...)
		}
		if onChunk != nil {
			onChunk(i+1, len(chunks))
		}
	}
	return raw
}

// Analyze produces the aggregated entity report for a whole document.
// Span offsets are chunk-relative, so adjacency merging runs inside each
// chunk; only the merged mentions are pooled for the single aggregation pass.
func (s *Service) Analyze(ctx context.Context, text string, onChunk ProgressFunc) *Report {
	cfg := s.Config()
	chunks := ChunkText(NormalizeDocument(text), cfg.MaxChunkChars)

	var mentions []MergedMention
	for i, chunk := range chunks {
		preds, err := s.provider.Predict(ctx, chunk)
		if err != nil {
			s.logger.Warn("chunk prediction failed",
				zap.Int("chunk", i+1), zap.Int("total", len(chunks)), zap.Error(err))
		} else {
			mentions = append(mentions, MergeAdjacent(preds)...)
		}
		if onChunk != nil {
			onChunk(i+1, len(chunks))
		}
	}
	s.logger.Info("document analyzed",
		zap.Int("chunks", len(chunks)), zap.Int("mentions", len(mentions)))
	return Aggregate(mentions, s.registry)
}
