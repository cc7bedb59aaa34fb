package ranking

import (
	"context"
	"srtrack/internal/fields"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
)

type BlockReconcilerInterface interface {
	// Reconcile returns room id -> overall rank for a block event; 0 means unknown.
	Reconcile(ctx context.Context, ev models.EventRef) map[string]int
}

// BlockReconciler merges the overall ranking of a block event, where the
// primary endpoint reports rank 0 for some rooms, with a room-scoped roster.
type BlockReconciler struct {
	client   upstream.ClientInterface
	logger   providers.Logger
	primary  string
	roster   string
	aliases  structures.AliasConfig
	maxPages int
}

func NewBlockReconciler(conf *structures.Config, client upstream.ClientInterface, logger providers.Logger) BlockReconcilerInterface {
	return &BlockReconciler{
		client:   client,
		logger:   logger,
		primary:  conf.Endpoints.BlockRanking,
		roster:   conf.Endpoints.BlockRoster,
		aliases:  conf.Aliases,
		maxPages: conf.Ranking.CountMaxPages,
	}
}

func (b *BlockReconciler) Reconcile(ctx context.Context, ev models.EventRef) map[string]int {
	rankMap := make(map[string]int)
	vars := upstream.Vars{EventID: ev.ID, URLKey: ev.URLKey}

	items, err := upstream.Paginate(ctx, b.client, b.primary, vars, b.maxPages, fields.RankingShapes)
	if err != nil {
		b.logger.Warnf(providers.TypeRanking, "block ranking for %s stopped early: %s", ev.URLKey, err)
	}
	for _, obj := range fields.Objects(items) {
		roomID, ok := fields.String(obj, b.aliases.RoomID)
		if !ok {
			continue
		}
		rank, ok := fields.Int(obj, b.aliases.Rank)
		if !ok || rank < 0 {
			rank = 0
		}
		rankMap[roomID] = rank
	}

	if ev.ID == "" || !hasUnknown(rankMap) {
		return rankMap
	}

	rows, err := upstream.Paginate(ctx, b.client, b.roster, vars, b.maxPages, fields.RankingShapes)
	if err != nil {
		b.logger.Warnf(providers.TypeRanking, "block roster for event %s failed: %s", ev.ID, err)
	}
	for _, obj := range fields.Objects(rows) {
		roomID, ok := fields.String(obj, b.aliases.RoomID)
		if !ok {
			continue
		}
		rank, ok := fields.Int(obj, b.aliases.Rank)
		if !ok || rank < 0 {
			continue
		}
		if current, exists := rankMap[roomID]; !exists || current == 0 {
			rankMap[roomID] = rank
		}
	}
	return rankMap
}

func hasUnknown(rankMap map[string]int) bool {
	for _, rank := range rankMap {
		if rank == 0 {
			return true
		}
	}
	return false
}
