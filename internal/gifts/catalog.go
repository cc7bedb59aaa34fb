package gifts

import (
	"context"
	"sort"
	"srtrack/internal/fields"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/upstream"
	"sync"
)

var catalogShapes = []fields.ShapeMatcher{
	fields.KeyedList("normal"),
	fields.KeyedList("special"),
}

type CatalogInterface interface {
	// Ensure loads the catalog from roomID's gift list unless one is already held.
	// It reports whether the catalog is populated afterwards.
	Ensure(ctx context.Context, roomID string) bool
	Lookup(giftID string) (models.GiftCatalogEntry, bool)
	// Name returns the gift name, or a placeholder embedding the id.
	Name(giftID string) string
	Entries() []models.GiftCatalogEntry
}

// Catalog keeps the first non-empty gift list fetched during a session.
type Catalog struct {
	client   upstream.ClientInterface
	logger   providers.Logger
	template string

	mu      sync.RWMutex
	entries map[string]models.GiftCatalogEntry
}

func NewCatalog(template string, client upstream.ClientInterface, logger providers.Logger) CatalogInterface {
	return &Catalog{client: client, logger: logger, template: template}
}

func (c *Catalog) Ensure(ctx context.Context, roomID string) bool {
	c.mu.RLock()
	loaded := len(c.entries) > 0
	c.mu.RUnlock()
	if loaded {
		return true
	}

	payload, err := c.client.GetJSON(ctx, upstream.Expand(c.template, upstream.Vars{RoomID: roomID}))
	if err != nil {
		c.logger.Warnf(providers.TypeEventLog, "gift catalog for room %s unavailable: %s", roomID, err)
		return false
	}
	entries := ParseCatalog(payload)
	if len(entries) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		c.entries = entries
		c.logger.Infof(providers.TypeEventLog, "gift catalog loaded from room %s: %d gifts", roomID, len(entries))
	}
	return true
}

// ParseCatalog reads the normal and special gift lists.
func ParseCatalog(payload any) map[string]models.GiftCatalogEntry {
	entries := make(map[string]models.GiftCatalogEntry)
	for _, obj := range fields.Objects(fields.ExtractAll(payload, catalogShapes)) {
		id, ok := fields.String(obj, []string{"gift_id"})
		if !ok {
			continue
		}
		name, ok := fields.String(obj, []string{"gift_name", "name"})
		if !ok {
			name = "N/A"
		}
		image, _ := fields.String(obj, []string{"image"})
		entries[id] = models.GiftCatalogEntry{
			GiftID:     id,
			Name:       name,
			PointValue: fields.Point(obj, []string{"point"}),
			ImageRef:   image,
		}
	}
	return entries
}

func (c *Catalog) Lookup(giftID string) (models.GiftCatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[giftID]
	return e, ok
}

func (c *Catalog) Name(giftID string) string {
	if e, ok := c.Lookup(giftID); ok {
		return e.Name
	}
	return PlaceholderName(giftID)
}

func PlaceholderName(giftID string) string {
	return "gift#" + giftID
}

// Enrich fills name and point from catalog, and the image when the payload
// carries none. Unknown ids get a placeholder name and keep their point.
func Enrich(p models.LogPayload, catalog CatalogInterface) models.LogPayload {
	if entry, ok := catalog.Lookup(p.GiftID); ok {
		p.GiftName = entry.Name
		p.Point = entry.PointValue
		if p.Image == "" {
			p.Image = entry.ImageRef
		}
		return p
	}
	p.GiftName = PlaceholderName(p.GiftID)
	return p
}

func (c *Catalog) Entries() []models.GiftCatalogEntry {
	c.mu.RLock()
	out := make([]models.GiftCatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].GiftID < out[j].GiftID })
	return out
}
