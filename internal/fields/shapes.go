package fields

// ShapeMatcher recognises one way an upstream endpoint wraps a list of records.
type ShapeMatcher interface {
	Match(payload any) ([]any, bool)
}

// KeyedList matches {"<key>": [...]}.
type KeyedList string

func (k KeyedList) Match(payload any) ([]any, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	list, ok := obj[string(k)].([]any)
	return list, ok
}

// BareList matches a top-level array.
type BareList struct{}

func (BareList) Match(payload any) ([]any, bool) {
	list, ok := payload.([]any)
	return list, ok
}

// NestedList matches lists of groups, e.g. {"onlives":[{"lives":[...]}, ...]},
// flattening every inner list into one.
type NestedList struct {
	Outer string
	Inner string
}

func (n NestedList) Match(payload any) ([]any, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	groups, ok := obj[n.Outer].([]any)
	if !ok {
		return nil, false
	}
	var out []any
	for _, g := range groups {
		gm, ok := g.(map[string]any)
		if !ok {
			continue
		}
		if inner, ok := gm[n.Inner].([]any); ok {
			out = append(out, inner...)
		}
	}
	return out, true
}

// RankingShapes are the list wrappers seen across ranking and roster endpoints.
var RankingShapes = []ShapeMatcher{
	KeyedList("list"),
	KeyedList("ranking"),
	KeyedList("event_list"),
	KeyedList("data"),
	BareList{},
}

// EventShapes are the list wrappers of the event search endpoint.
var EventShapes = []ShapeMatcher{
	KeyedList("events"),
	KeyedList("event_list"),
	BareList{},
}

// ExtractList returns the list of the first matcher that recognises payload.
func ExtractList(payload any, shapes []ShapeMatcher) []any {
	for _, shape := range shapes {
		if list, ok := shape.Match(payload); ok {
			return list
		}
	}
	return nil
}

// ExtractAll concatenates the lists of every matcher that recognises payload.
func ExtractAll(payload any, shapes []ShapeMatcher) []any {
	var out []any
	for _, shape := range shapes {
		if list, ok := shape.Match(payload); ok {
			out = append(out, list...)
		}
	}
	return out
}

// Objects keeps only the JSON objects of list.
func Objects(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
