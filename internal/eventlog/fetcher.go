package eventlog

import (
	"context"
	"fmt"
	"srtrack/internal/gifts"
	"srtrack/internal/models"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
)

// Fetcher returns the latest window of a room's log.
type Fetcher interface {
	Fetch(ctx context.Context, roomID string, kind models.SourceKind) ([]models.LogEvent, error)
}

type UpstreamFetcher struct {
	client   upstream.ClientInterface
	catalog  gifts.CatalogInterface
	comments string
	gifts    string
}

func NewUpstreamFetcher(conf *structures.Config, client upstream.ClientInterface, catalog gifts.CatalogInterface) Fetcher {
	return &UpstreamFetcher{
		client:   client,
		catalog:  catalog,
		comments: conf.Endpoints.CommentLog,
		gifts:    conf.Endpoints.GiftLog,
	}
}

func (f *UpstreamFetcher) Fetch(ctx context.Context, roomID string, kind models.SourceKind) ([]models.LogEvent, error) {
	vars := upstream.Vars{RoomID: roomID}
	switch kind {
	case models.SourceComment:
		payload, err := f.client.GetJSON(ctx, upstream.Expand(f.comments, vars))
		if err != nil {
			return nil, err
		}
		return DecodeComments(roomID, payload), nil
	case models.SourcePaidGift:
		payload, err := f.client.GetJSON(ctx, upstream.Expand(f.gifts, vars))
		if err != nil {
			return nil, err
		}
		return DecodeGifts(roomID, payload, f.catalog), nil
	default:
		return nil, fmt.Errorf("no polled log for kind %q", kind)
	}
}
