package models

type GiftCatalogEntry struct {
	GiftID     string `json:"gift_id"`
	Name       string `json:"name"`
	PointValue int    `json:"point"`
	ImageRef   string `json:"image"`
}
