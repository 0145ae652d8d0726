// internal/prediction/provider.go
package prediction

import (
	"context"
	"errors"
	"math"
	"time"

	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/metrics"
	"scholarship-engine/internal/modelregistry"
	"scholarship-engine/internal/models"
)

const (
	DefaultCacheTTL     = 5 * time.Minute
	DefaultMinAccuracy  = 0.55
	DefaultFetchTimeout = 2 * time.Second
)

type ProviderConfig struct {
	CacheTTL     time.Duration
	MinAccuracy  float64
	FetchTimeout time.Duration
}

func (c ProviderConfig) withDefaults() ProviderConfig {
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.MinAccuracy <= 0 {
		c.MinAccuracy = DefaultMinAccuracy
	}
	if c.MinAccuracy > 1 {
		c.MinAccuracy /= 100
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	return c
}

// WeightProvider resolves regression weights for a scholarship: cache, then the
// scholarship's trained model, then the global model, then the neutral fallback.
// It never returns an error; registry failures degrade to the fallback.
type WeightProvider struct {
	registry modelregistry.Registry
	cache    WeightCache
	config   ProviderConfig
	logger   logger.Logger
}

func NewWeightProvider(registry modelregistry.Registry, cache WeightCache, cfg ProviderConfig, log logger.Logger) *WeightProvider {
	if cache == nil {
		cache = NewMemoryWeightCache(nil)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &WeightProvider{
		registry: registry,
		cache:    cache,
		config:   cfg.withDefaults(),
		logger:   log,
	}
}

// GetWeights returns the weights for scholarshipID, or the global weights when it is empty.
func (p *WeightProvider) GetWeights(ctx context.Context, scholarshipID string) ResolvedWeights {
	key := scholarshipID
	if key == "" {
		key = GlobalKey
	}

	cached, ok, err := p.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.ModelWeightCacheLookups.WithLabelValues("error").Inc()
		p.logger.Warn("weight cache lookup failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	case ok:
		metrics.ModelWeightCacheLookups.WithLabelValues("hit").Inc()
		return cached
	default:
		metrics.ModelWeightCacheLookups.WithLabelValues("miss").Inc()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	defer cancel()

	resolved, cacheable := p.resolve(fetchCtx, scholarshipID)
	metrics.ModelWeightResolutions.WithLabelValues(string(resolved.Source)).Inc()

	if cacheable {
		if err := p.cache.Set(ctx, key, resolved, p.config.CacheTTL); err != nil {
			p.logger.Warn("weight cache store failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	p.logger.Debug("model weights resolved", map[string]interface{}{
		"scholarshipId": scholarshipID,
		"source":        resolved.Source,
		"modelId":       resolved.ModelID,
		"cached":        cacheable,
	})
	return resolved
}

// resolve walks the registry. The result is cacheable unless a registry call failed,
// so a transient outage is retried on the next request instead of pinning the fallback.
func (p *WeightProvider) resolve(ctx context.Context, scholarshipID string) (ResolvedWeights, bool) {
	if p.registry == nil {
		return Fallback(), true
	}

	failed := false

	if scholarshipID != "" {
		m, err := p.registry.ScholarshipModel(ctx, scholarshipID)
		switch {
		case err == nil && m != nil:
			if w, ok := p.validate(m, SourceScholarship); ok {
				return w, true
			}
			return Fallback(), true
		case err != nil && !errors.Is(err, modelregistry.ErrModelNotFound):
			failed = true
			p.logger.Warn("scholarship model fetch failed", map[string]interface{}{
				"scholarshipId": scholarshipID,
				"error":         err.Error(),
			})
		}
	}

	if ctx.Err() != nil {
		return Fallback(), false
	}

	m, err := p.registry.GlobalModel(ctx)
	switch {
	case err == nil && m != nil:
		if w, ok := p.validate(m, SourceGlobal); ok {
			return w, true
		}
		return Fallback(), true
	case err != nil && !errors.Is(err, modelregistry.ErrModelNotFound):
		p.logger.Warn("global model fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
		return Fallback(), false
	}

	return Fallback(), !failed
}

// validate applies the accuracy gate and corrects the sign of weights that must
// correlate positively with approval.
func (p *WeightProvider) validate(m *models.TrainedModel, source Source) (ResolvedWeights, bool) {
	accuracy := m.Accuracy
	if accuracy > 1 {
		accuracy /= 100
	}
	if math.IsNaN(accuracy) || accuracy < p.config.MinAccuracy {
		p.logger.Warn("trained model rejected for low accuracy", map[string]interface{}{
			"modelId":     m.ID,
			"accuracy":    accuracy,
			"minAccuracy": p.config.MinAccuracy,
		})
		return ResolvedWeights{}, false
	}

	w := WeightsFromMap(m.Weights)
	for _, coef := range w.positiveCoefficients() {
		if *coef.value < 0 {
			adjusted := math.Abs(*coef.value)
			p.logger.Warn("weight sign adjusted", map[string]interface{}{
				"modelId":     m.ID,
				"coefficient": coef.name,
				"original":    *coef.value,
				"adjusted":    adjusted,
			})
			*coef.value = adjusted
		}
	}

	return ResolvedWeights{
		Weights:  w,
		Trained:  true,
		Source:   source,
		ModelID:  m.ID,
		Accuracy: accuracy,
	}, true
}

// ClearCache drops every cached entry; called after a new model is published.
func (p *WeightProvider) ClearCache(ctx context.Context) error {
	if err := p.cache.Clear(ctx); err != nil {
		return err
	}
	p.logger.Info("model weight cache cleared", nil)
	return nil
}
