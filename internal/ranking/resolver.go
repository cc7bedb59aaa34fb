// Package ranking resolves event rankings from the platform's inconsistent
// ranking endpoints and reconciles them into one canonical snapshot.
package ranking

import (
	"context"
	"srtrack/internal/fields"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
	"time"

	json "github.com/goccy/go-json"
)

type ResolverInterface interface {
	// Resolve returns the canonical snapshot of ev. It never fails; when every
	// candidate source fails the unresolved sentinel is returned.
	Resolve(ctx context.Context, ev models.EventRef) *models.EventSnapshot
}

type Resolver struct {
	client     upstream.ClientInterface
	cache      providers.CacheProviderInterface
	compressor providers.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	candidates []string
	aliases    structures.AliasConfig
	maxPages   int
	liveTTL    time.Duration
	endedTTL   time.Duration
	now        func() time.Time
}

func NewResolver(
	conf *structures.Config,
	client upstream.ClientInterface,
	cache providers.CacheProviderInterface,
	compressor providers.CompressorInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) ResolverInterface {
	return &Resolver{
		client:     client,
		cache:      cache,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
		candidates: conf.Endpoints.RankingCandidates,
		aliases:    conf.Aliases,
		maxPages:   conf.Ranking.MaxPages,
		liveTTL:    conf.Ranking.LiveTTL,
		endedTTL:   conf.Ranking.EndedTTL,
		now:        time.Now,
	}
}

func cacheKey(ev models.EventRef) string {
	return "ranking:" + ev.URLKey + ":" + ev.ID
}

func (r *Resolver) Resolve(ctx context.Context, ev models.EventRef) *models.EventSnapshot {
	key := cacheKey(ev)
	if snap, ok := r.fromCache(key); ok {
		return snap
	}

	vars := upstream.Vars{EventID: ev.ID, URLKey: ev.URLKey}
	for _, template := range r.candidates {
		items, err := upstream.Paginate(ctx, r.client, template, vars, r.maxPages, fields.RankingShapes)
		if err != nil {
			r.logger.Warnf(providers.TypeRanking, "ranking candidate %s failed for event %s: %s", template, ev.ID, err)
			continue
		}
		if !r.recognisable(items) {
			r.logger.Debugf(providers.TypeRanking, "ranking candidate %s has no room ids for event %s", template, ev.ID)
			continue
		}

		snap := &models.EventSnapshot{
			EventID:    ev.ID,
			Resolved:   true,
			Source:     template,
			Entries:    Normalize(items, r.aliases),
			ResolvedAt: r.now(),
		}
		r.store(key, snap, ev)
		return snap
	}

	r.metrics.IncFallbackExhausted("ranking")
	r.logger.Warnf(providers.TypeRanking, "no ranking source answered for event %s (%s)", ev.ID, ev.URLKey)
	return models.Unresolved(ev.ID)
}

func (r *Resolver) recognisable(items []any) bool {
	for _, obj := range fields.Objects(items) {
		if fields.Has(obj, r.aliases.RoomID) {
			return true
		}
	}
	return false
}

// Normalize converts raw ranking records into entries keyed by room id.
// Records without a room id are skipped; the first record of a room wins.
func Normalize(items []any, aliases structures.AliasConfig) map[string]models.RoomRankEntry {
	entries := make(map[string]models.RoomRankEntry, len(items))
	for _, obj := range fields.Objects(items) {
		roomID, ok := fields.String(obj, aliases.RoomID)
		if !ok {
			continue
		}
		if _, dup := entries[roomID]; dup {
			continue
		}
		name, ok := fields.String(obj, aliases.Name)
		if !ok {
			name = "room_" + roomID
		}
		entries[roomID] = models.RoomRankEntry{
			RoomID:   roomID,
			RoomName: name,
			Rank:     fields.Rank(obj, aliases.Rank),
			Point:    fields.Point(obj, aliases.Point),
		}
	}
	return entries
}

func (r *Resolver) fromCache(key string) (*models.EventSnapshot, bool) {
	raw, ok := r.cache.Get(key)
	if !ok {
		return nil, false
	}
	data, err := r.compressor.Decompress(raw)
	if err != nil {
		r.logger.Warnf(providers.TypeRanking, "cached snapshot %s is unreadable: %s", key, err)
		r.cache.Del(key)
		return nil, false
	}
	var snap models.EventSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		r.logger.Warnf(providers.TypeRanking, "cached snapshot %s is unreadable: %s", key, err)
		r.cache.Del(key)
		return nil, false
	}
	return &snap, true
}

func (r *Resolver) store(key string, snap *models.EventSnapshot, ev models.EventRef) {
	data, err := json.Marshal(snap)
	if err != nil {
		r.logger.Errorf(providers.TypeRanking, "unable to encode snapshot %s: %s", key, err)
		return
	}
	packed, err := r.compressor.Compress(data)
	if err != nil {
		r.logger.Errorf(providers.TypeRanking, "unable to compress snapshot %s: %s", key, err)
		return
	}
	ttl := r.liveTTL
	if ev.Ended(r.now()) {
		ttl = r.endedTTL
	}
	r.cache.Set(key, packed, ttl)
}
