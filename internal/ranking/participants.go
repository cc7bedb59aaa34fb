package ranking

import (
	"context"
	"srtrack/internal/fields"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
	"strconv"
	"time"
)

type ParticipantCounterInterface interface {
	// Resolve returns the number of rooms entered in ev, or nil when no source answers.
	Resolve(ctx context.Context, ev models.EventRef) *int
	// Count is Resolve falling back to the size of an already resolved ranking.
	Count(ctx context.Context, ev models.EventRef, fallback *models.EventSnapshot) *int
}

type ParticipantCounter struct {
	client    upstream.ClientInterface
	cache     providers.CacheProviderInterface
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	endpoint  string
	fallbacks []string
	maxPages  int
	liveTTL   time.Duration
	endedTTL  time.Duration
	now       func() time.Time
}

func NewParticipantCounter(
	conf *structures.Config,
	client upstream.ClientInterface,
	cache providers.CacheProviderInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) ParticipantCounterInterface {
	return &ParticipantCounter{
		client:    client,
		cache:     cache,
		logger:    logger,
		metrics:   metrics,
		endpoint:  conf.Endpoints.ParticipantCount,
		fallbacks: conf.Endpoints.ParticipantFallbacks,
		maxPages:  conf.Ranking.CountMaxPages,
		liveTTL:   conf.Ranking.LiveTTL,
		endedTTL:  conf.Ranking.EndedTTL,
		now:       time.Now,
	}
}

// Resolve answers from the cache when it can. Misses are cached too, so a
// failing count endpoint is not paginated on every tick.
func (p *ParticipantCounter) Resolve(ctx context.Context, ev models.EventRef) *int {
	key := "participants:" + ev.URLKey + ":" + ev.ID
	if data, ok := p.cache.Get(key); ok {
		if len(data) == 0 {
			return nil
		}
		if n, err := strconv.Atoi(string(data)); err == nil {
			return &n
		}
		p.cache.Del(key)
	}

	n := p.resolve(ctx, ev)
	ttl := p.liveTTL
	if ev.Ended(p.now()) {
		ttl = p.endedTTL
	}
	var data []byte
	if n != nil {
		data = []byte(strconv.Itoa(*n))
	}
	p.cache.Set(key, data, ttl)
	return n
}

func (p *ParticipantCounter) resolve(ctx context.Context, ev models.EventRef) *int {
	vars := upstream.Vars{EventID: ev.ID, URLKey: ev.URLKey, Page: 1}

	payload, err := p.client.GetJSON(ctx, upstream.Expand(p.endpoint, vars))
	if err != nil {
		p.logger.Debugf(providers.TypeRanking, "participant count endpoint failed for event %s: %s", ev.ID, err)
	} else if obj, ok := payload.(map[string]any); ok {
		if n, ok := fields.Int(obj, []string{"total_entries"}); ok {
			return &n
		}
		if list, ok := fields.KeyedList("list").Match(obj); ok {
			n := len(list)
			return &n
		}
	}

	vars.Page = 0
	for _, template := range p.fallbacks {
		items, err := upstream.Paginate(ctx, p.client, template, vars, p.maxPages, fields.RankingShapes)
		if err != nil {
			p.logger.Warnf(providers.TypeRanking, "participant fallback %s failed for event %s: %s", template, ev.ID, err)
			continue
		}
		if len(items) > 0 {
			n := len(items)
			return &n
		}
	}

	p.metrics.IncFallbackExhausted("participants")
	return nil
}

func (p *ParticipantCounter) Count(ctx context.Context, ev models.EventRef, fallback *models.EventSnapshot) *int {
	if n := p.Resolve(ctx, ev); n != nil {
		return n
	}
	if fallback != nil && fallback.Resolved {
		n := fallback.Len()
		return &n
	}
	return nil
}
