package session

import (
	"srtrack/internal/discovery"
	"srtrack/internal/providers"
	"srtrack/internal/ranking"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
)

func NewDeps(
	conf *structures.Config,
	client upstream.ClientInterface,
	resolver ranking.ResolverInterface,
	counter ranking.ParticipantCounterInterface,
	block ranking.BlockReconcilerInterface,
	standings ranking.StandingResolverInterface,
	liveRooms discovery.LiveRoomsInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) Deps {
	return Deps{
		Config:    conf,
		Client:    client,
		Resolver:  resolver,
		Counter:   counter,
		Block:     block,
		Standings: standings,
		LiveRooms: liveRooms,
		Logger:    logger,
		Metrics:   metrics,
	}
}
