package upstream

import (
	"context"
	"errors"
	"srtrack/internal/fields"
)

// Paginate walks template page by page starting at 1 until an empty page, a 404
// or maxPages. A template without {page} is fetched once. On any other error the
// items gathered so far are returned together with the error.
func Paginate(ctx context.Context, client ClientInterface, template string, vars Vars, maxPages int, shapes []fields.ShapeMatcher) ([]any, error) {
	if !Paged(template) {
		maxPages = 1
	}
	var acc []any
	for page := 1; page <= maxPages; page++ {
		vars.Page = page
		payload, err := client.GetJSON(ctx, Expand(template, vars))
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return acc, err
		}
		list := fields.ExtractList(payload, shapes)
		if len(list) == 0 {
			break
		}
		acc = append(acc, list...)
	}
	return acc, nil
}
