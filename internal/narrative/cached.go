package narrative

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/procuresmart/backend-go/internal/cache"
	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

type cachedNarrator struct {
	next  Narrator
	store cache.NarrativeCache
	model string
}

// WithCache serves narratives for previously seen results from store.
// Cache errors are logged and never fail the call.
func WithCache(n Narrator, store cache.NarrativeCache, model string) Narrator {
	if store == nil {
		return n
	}
	return &cachedNarrator{next: n, store: store, model: model}
}

func (c *cachedNarrator) Narrate(ctx context.Context, result domain.AnalysisResult) (*domain.Narrative, error) {
	key, err := cache.NarrativeKey(c.model, result)
	if err != nil {
		log.Warn().Err(err).Msg("narrative: failed to build cache key")
		return c.next.Narrate(ctx, result)
	}

	if cached, ok, err := c.store.GetNarrative(ctx, key); err != nil {
		log.Warn().Err(err).Msg("narrative: cache lookup failed")
	} else if ok {
		log.Debug().Str("key", key).Msg("narrative: cache hit")
		return cached, nil
	}

	narrative, err := c.next.Narrate(ctx, result)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetNarrative(ctx, key, narrative); err != nil {
		log.Warn().Err(err).Msg("narrative: cache store failed")
	}
	return narrative, nil
}
