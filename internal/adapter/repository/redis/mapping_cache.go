package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// MappingCache is a read-through cache in front of a
// usecase.AccountMappingRepository, keyed by asset type ID within its Cache
// namespace. Cache failures fall back to the
// repository; only existing mappings are cached.
type MappingCache struct {
	next   usecase.AccountMappingRepository
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewMappingCache creates a new MappingCache.
func NewMappingCache(next usecase.AccountMappingRepository, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *MappingCache {
	return &MappingCache{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "mapping_cache").Logger(),
	}
}

type cachedMapping struct {
	AssetTypeID                      string    `json:"asset_type_id"`
	AssetAccountID                   string    `json:"asset_account_id"`
	DepreciationExpenseAccountID     string    `json:"depreciation_expense_account_id"`
	AccumulatedDepreciationAccountID string    `json:"accumulated_depreciation_account_id"`
	ProceedsAccountID                string    `json:"proceeds_account_id"`
	GainLossAccountID                string    `json:"gain_loss_account_id"`
	CreatedAt                        time.Time `json:"created_at"`
}

// GetMapping returns the mapping from cache, loading it on a miss.
func (c *MappingCache) GetMapping(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error) {
	data, err := c.cache.Get(ctx, assetTypeID)
	if err == nil {
		var cm cachedMapping
		if err := json.Unmarshal(data, &cm); err == nil {
			return &domain.AccountMapping{
				AssetTypeID:                      cm.AssetTypeID,
				AssetAccountID:                   cm.AssetAccountID,
				DepreciationExpenseAccountID:     cm.DepreciationExpenseAccountID,
				AccumulatedDepreciationAccountID: cm.AccumulatedDepreciationAccountID,
				ProceedsAccountID:                cm.ProceedsAccountID,
				GainLossAccountID:                cm.GainLossAccountID,
				CreatedAt:                        cm.CreatedAt,
			}, nil
		}
		c.logger.Warn().Str("asset_type_id", assetTypeID).Msg("discarding undecodable cached mapping")
	} else if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("asset_type_id", assetTypeID).Msg("mapping cache read failed")
	}

	mapping, err := c.next.GetMapping(ctx, assetTypeID)
	if err != nil || mapping == nil {
		return mapping, err
	}

	data, err = json.Marshal(cachedMapping{
		AssetTypeID:                      mapping.AssetTypeID,
		AssetAccountID:                   mapping.AssetAccountID,
		DepreciationExpenseAccountID:     mapping.DepreciationExpenseAccountID,
		AccumulatedDepreciationAccountID: mapping.AccumulatedDepreciationAccountID,
		ProceedsAccountID:                mapping.ProceedsAccountID,
		GainLossAccountID:                mapping.GainLossAccountID,
		CreatedAt:                        mapping.CreatedAt,
	})
	if err == nil {
		err = c.cache.Set(ctx, assetTypeID, data, c.ttl)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("asset_type_id", assetTypeID).Msg("mapping cache write failed")
	}

	return mapping, nil
}

// SetMapping writes through to the repository and evicts the cached copy.
func (c *MappingCache) SetMapping(ctx context.Context, mapping *domain.AccountMapping) error {
	if err := c.next.SetMapping(ctx, mapping); err != nil {
		return err
	}

	if err := c.cache.Delete(ctx, mapping.AssetTypeID); err != nil {
		c.logger.Warn().Err(err).Str("asset_type_id", mapping.AssetTypeID).Msg("mapping cache eviction failed")
	}

	return nil
}
