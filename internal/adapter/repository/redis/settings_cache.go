package redis

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// CachedSettingsProvider serves account settings from Redis and falls back
// to the wrapped repository on a miss. Writes go through to the repository
// and evict the cached key.
//
// An unset setting is cached as an empty value so repeated lookups of a
// missing account do not reach the database.
type CachedSettingsProvider struct {
	repo   usecase.SettingsRepository
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedSettingsProvider wraps repo with a read-through cache.
func NewCachedSettingsProvider(repo usecase.SettingsRepository, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedSettingsProvider {
	return &CachedSettingsProvider{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "settings_cache").Logger(),
	}
}

func settingKey(key domain.SettingKey) string {
	return "settings:" + string(key)
}

// Get returns a setting, reading through the cache.
func (p *CachedSettingsProvider) Get(ctx context.Context, key domain.SettingKey) (string, bool, error) {
	cached, err := p.cache.Get(ctx, settingKey(key))
	switch {
	case err == nil:
		return string(cached), len(cached) > 0, nil
	case !errors.Is(err, ErrCacheMiss):
		p.logger.Warn().Err(err).Str("key", string(key)).Msg("settings cache read failed")
	}

	value, ok, err := p.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}

	if err := p.cache.Set(ctx, settingKey(key), []byte(value), p.ttl); err != nil {
		p.logger.Warn().Err(err).Str("key", string(key)).Msg("settings cache write failed")
	}
	return value, ok, nil
}

// GetAll always reads the repository.
func (p *CachedSettingsProvider) GetAll(ctx context.Context) (map[domain.SettingKey]string, error) {
	return p.repo.GetAll(ctx)
}

// Set writes the setting and evicts its cached value.
func (p *CachedSettingsProvider) Set(ctx context.Context, key domain.SettingKey, value string, updatedAt time.Time) error {
	if err := p.repo.Set(ctx, key, value, updatedAt); err != nil {
		return err
	}
	if err := p.cache.Delete(ctx, settingKey(key)); err != nil {
		p.logger.Warn().Err(err).Str("key", string(key)).Msg("settings cache eviction failed")
	}
	return nil
}
