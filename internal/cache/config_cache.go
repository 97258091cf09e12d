package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"robot-config-studio/internal/model"
)

// ConfigCache layers profile-aware helpers over the raw cache service:
// hydrated configurations as JSON and rendered ".set" exports as text.
// Every method degrades gracefully; a cache error means "go to the store".
type ConfigCache struct {
	service *CacheService
}

// NewConfigCache wraps a CacheService. A nil service yields a cache whose
// every lookup misses, which keeps call sites free of nil checks.
func NewConfigCache(service *CacheService) *ConfigCache {
	return &ConfigCache{service: service}
}

func (cc *ConfigCache) enabled() bool {
	return cc != nil && cc.service != nil
}

// GetHydrated returns the cached hydrated configuration for a profile, or
// (nil, false) on miss or degraded cache.
func (cc *ConfigCache) GetHydrated(ctx context.Context, profile string) (*model.RobotConfig, bool) {
	if !cc.enabled() {
		return nil, false
	}
	raw, err := cc.service.Get(ctx, fmt.Sprintf(PrefixHydratedConfig, profile))
	if err != nil {
		return nil, false
	}
	var cfg model.RobotConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		// Stale or corrupt entry; drop it so the next write repopulates.
		_ = cc.service.Delete(ctx, fmt.Sprintf(PrefixHydratedConfig, profile))
		return nil, false
	}
	return &cfg, true
}

// PutHydrated stores a hydrated configuration. Errors are returned for
// logging but callers are expected to carry on.
func (cc *ConfigCache) PutHydrated(ctx context.Context, profile string, cfg *model.RobotConfig) error {
	if !cc.enabled() || cfg == nil {
		return nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config for cache: %w", err)
	}
	return cc.service.Set(ctx, fmt.Sprintf(PrefixHydratedConfig, profile), string(data), DefaultConfigTTL)
}

// GetExport returns the cached rendered export for a profile.
func (cc *ConfigCache) GetExport(ctx context.Context, profile string) (string, bool) {
	if !cc.enabled() {
		return "", false
	}
	text, err := cc.service.Get(ctx, fmt.Sprintf(PrefixExportText, profile))
	if err != nil {
		return "", false
	}
	return text, true
}

// PutExport stores a rendered export.
func (cc *ConfigCache) PutExport(ctx context.Context, profile, text string) error {
	if !cc.enabled() {
		return nil
	}
	return cc.service.Set(ctx, fmt.Sprintf(PrefixExportText, profile), text, DefaultExportTTL)
}

// Invalidate drops every cached artifact for a profile. Called after any
// applied change batch or snapshot restore.
func (cc *ConfigCache) Invalidate(ctx context.Context, profile string) {
	if !cc.enabled() {
		return
	}
	_ = cc.service.Delete(ctx,
		fmt.Sprintf(PrefixHydratedConfig, profile),
		fmt.Sprintf(PrefixExportText, profile),
		fmt.Sprintf(PrefixValidation, profile),
	)
}
