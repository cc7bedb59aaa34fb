package ranking

import (
	"context"
	"errors"
	"fmt"
	"srtrack/internal/fields"
	"srtrack/internal/models"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
)

// ErrNoStanding is returned when a room's event endpoint carries no ranking block with a point.
var ErrNoStanding = errors.New("room has no event standing")

// standingPaths are the places the room event endpoint has been seen to put its ranking block.
var standingPaths = []string{"ranking", "event_and_support_info.ranking", "event.ranking"}

type StandingResolverInterface interface {
	Standing(ctx context.Context, roomID string) (*models.RoomStanding, error)
}

type StandingResolver struct {
	client   upstream.ClientInterface
	template string
}

func NewStandingResolver(conf *structures.Config, client upstream.ClientInterface) StandingResolverInterface {
	return &StandingResolver{client: client, template: conf.Endpoints.RoomStanding}
}

func (s *StandingResolver) Standing(ctx context.Context, roomID string) (*models.RoomStanding, error) {
	payload, err := s.client.GetJSON(ctx, upstream.Expand(s.template, upstream.Vars{RoomID: roomID}))
	if err != nil {
		return nil, err
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: room %s", upstream.ErrMalformedPayload, roomID)
	}
	return ParseStanding(roomID, obj)
}

// ParseStanding reads the first ranking block found under standingPaths.
func ParseStanding(roomID string, obj map[string]any) (*models.RoomStanding, error) {
	var info map[string]any
	for _, path := range standingPaths {
		if v, ok := fields.Lookup(obj, path); ok {
			if m, ok := v.(map[string]any); ok {
				info = m
				break
			}
		}
	}
	if info == nil || !fields.Has(info, []string{"point"}) {
		return nil, fmt.Errorf("%w: room %s", ErrNoStanding, roomID)
	}

	standing := &models.RoomStanding{
		RoomID: roomID,
		Point:  fields.Point(info, []string{"point"}),
		Rank:   fields.Rank(info, []string{"rank"}),
	}
	if n, ok := fields.Int(info, []string{"upper_gap"}); ok {
		standing.UpperGap = &n
	}
	if n, ok := fields.Int(info, []string{"lower_gap"}); ok {
		standing.LowerGap = &n
	}
	return standing, nil
}
