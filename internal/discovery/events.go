package discovery

import (
	"context"
	"math"
	"sort"
	"srtrack/internal/fields"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	StatusOngoing  = "1"
	StatusFinished = "4"

	rankingTypeName = "ランキング"

	ongoingTTL  = 10 * time.Minute
	finishedTTL = time.Hour
)

type EventDirectoryInterface interface {
	Ongoing(ctx context.Context) []models.Event
	// Finished lists events that ended inside [from, to], newest first.
	Finished(ctx context.Context, from, to time.Time) []models.Event
	// Find looks an event up by id among ongoing and recently finished events.
	Find(ctx context.Context, eventID string) (models.Event, bool)
}

type EventDirectory struct {
	client   upstream.ClientInterface
	cache    providers.CacheProviderInterface
	logger   providers.Logger
	template string
	pages    int
	now      func() time.Time
}

func NewEventDirectory(conf *structures.Config, client upstream.ClientInterface, cache providers.CacheProviderInterface, logger providers.Logger) EventDirectoryInterface {
	pages := conf.Ranking.EventPages
	if pages <= 0 {
		pages = 10
	}
	return &EventDirectory{
		client:   client,
		cache:    cache,
		logger:   logger,
		template: conf.Endpoints.EventSearch,
		pages:    pages,
		now:      time.Now,
	}
}

func (d *EventDirectory) Ongoing(ctx context.Context) []models.Event {
	now := d.now().Unix()
	var out []models.Event
	for _, ev := range d.search(ctx, StatusOngoing, ongoingTTL) {
		if ev.EndedAt > now {
			out = append(out, ev)
		}
	}
	return out
}

func (d *EventDirectory) Finished(ctx context.Context, from, to time.Time) []models.Event {
	now := d.now().Unix()
	var out []models.Event
	for _, ev := range d.search(ctx, StatusFinished, finishedTTL) {
		if ev.EndedAt < from.Unix() || ev.EndedAt > to.Unix() || ev.EndedAt >= now {
			continue
		}
		ev.Closed = true
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndedAt > out[j].EndedAt })
	return out
}

func (d *EventDirectory) Find(ctx context.Context, eventID string) (models.Event, bool) {
	eventID = NormalizeEventID(eventID)
	for _, ev := range d.Ongoing(ctx) {
		if ev.ID == eventID {
			return ev, true
		}
	}
	now := d.now()
	for _, ev := range d.Finished(ctx, now.AddDate(0, -1, 0), now) {
		if ev.ID == eventID {
			return ev, true
		}
	}
	return models.Event{}, false
}

func (d *EventDirectory) search(ctx context.Context, status string, ttl time.Duration) []models.Event {
	key := "events:" + status
	if raw, ok := d.cache.Get(key); ok {
		var cached []models.Event
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached
		}
		d.cache.Del(key)
	}

	items, err := upstream.Paginate(ctx, d.client, d.template, upstream.Vars{Status: status}, d.pages, fields.EventShapes)
	if err != nil {
		d.logger.Warnf(providers.TypeApp, "event search status=%s stopped early: %s", status, err)
	}

	var events []models.Event
	for _, obj := range fields.Objects(items) {
		if !Listed(obj) {
			continue
		}
		ev, ok := ParseEvent(obj)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	if err == nil {
		if data, mErr := json.Marshal(events); mErr == nil {
			d.cache.Set(key, data, ttl)
		}
	}
	return events
}

// Listed keeps events that show a ranking, or are of the ranking type.
func Listed(obj map[string]any) bool {
	if v, ok := obj["show_ranking"].(bool); ok && !v {
		name, _ := fields.String(obj, []string{"type_name"})
		return name == rankingTypeName
	}
	return true
}

func ParseEvent(obj map[string]any) (models.Event, bool) {
	rawID, ok := fields.First(obj, []string{"event_id"})
	if !ok {
		return models.Event{}, false
	}
	ev := models.Event{
		EventRef: models.EventRef{
			ID:    NormalizeEventID(rawID),
			Block: truthy(obj["is_event_block"]),
		},
	}
	ev.URLKey, _ = fields.String(obj, []string{"event_url_key"})
	ev.Name, _ = fields.String(obj, []string{"event_name"})
	ev.TypeName, _ = fields.String(obj, []string{"type_name"})
	ev.Image, _ = fields.String(obj, []string{"image_m", "image"})
	if n, ok := fields.Int(obj, []string{"started_at"}); ok {
		ev.StartedAt = int64(n)
	}
	if n, ok := fields.Int(obj, []string{"ended_at"}); ok {
		ev.EndedAt = int64(n)
	}
	if v, ok := obj["show_ranking"].(bool); ok {
		ev.ShowRanking = &v
	}
	return ev, ev.ID != ""
}

// NormalizeEventID renders 123, 123.0, "123" and "123.0" alike as "123".
func NormalizeEventID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
	case string:
		s := strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return strconv.FormatInt(int64(f), 10)
		}
		return s
	}
	return fields.ToString(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	}
	n, ok := fields.ToInt(v)
	return ok && n != 0
}
