package upstream

import (
	"net/url"
	"strconv"
	"strings"
)

// Vars are the placeholder values substituted into an endpoint template.
type Vars struct {
	EventID string
	URLKey  string
	RoomID  string
	Status  string
	Page    int
}

// Expand substitutes {event_id}, {event_url_key}, {room_id}, {status} and {page}.
// Values are escaped for the URL position they most commonly occupy.
func Expand(template string, v Vars) string {
	page := ""
	if v.Page > 0 {
		page = strconv.Itoa(v.Page)
	}
	r := strings.NewReplacer(
		"{event_id}", url.QueryEscape(v.EventID),
		"{event_url_key}", url.PathEscape(v.URLKey),
		"{room_id}", url.QueryEscape(v.RoomID),
		"{status}", url.QueryEscape(v.Status),
		"{page}", page,
	)
	return r.Replace(template)
}

// Paged reports whether template carries a {page} placeholder.
func Paged(template string) bool {
	return strings.Contains(template, "{page}")
}
