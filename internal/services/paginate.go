// Package services contains the typed resource services: each one
// translates a caller-supplied filter/pagination object into backend
// query parameters, issues the request through the api client, and
// normalizes whatever shape comes back into the uniform Page form.
// Services catch nothing silently: every failure is logged once with
// endpoint context and returned to the caller.
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// decodePage normalizes a list payload into a Page. Backends answer
// either a bare array or a {count, results} object; callers never see
// the difference, and total_pages is always recomputed here rather
// than trusted from the wire.
func decodePage[T any](raw json.RawMessage, page, limit int) (model.Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return model.NewPage[T](nil, 0, page, limit), nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return model.Page[T]{}, fmt.Errorf("decode list payload: %w", err)
		}
		// A bare array may be the entire unpaginated set; carve out the
		// requested window so the page never exceeds its limit.
		return model.NewPage(pageWindow(items, page, limit), len(items), page, limit), nil
	}

	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return model.Page[T]{}, fmt.Errorf("decode list payload: %w", err)
	}

	results, err := jmespath.Search("results", payload)
	if err != nil || results == nil {
		return model.Page[T]{}, fmt.Errorf("list payload has no results array")
	}
	rawResults, err := json.Marshal(results)
	if err != nil {
		return model.Page[T]{}, fmt.Errorf("reencode results: %w", err)
	}
	var items []T
	if err = json.Unmarshal(rawResults, &items); err != nil {
		return model.Page[T]{}, fmt.Errorf("decode results: %w", err)
	}

	total := len(items)
	if count, cerr := jmespath.Search("count", payload); cerr == nil {
		if f, ok := count.(float64); ok && f >= 0 {
			total = int(f)
		}
	}

	// The results of an object payload are already the page, but an
	// over-full answer is still clamped rather than passed through.
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return model.NewPage(items, total, page, limit), nil
}

// pageWindow slices one page out of a full result set.
func pageWindow[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = model.DefaultPageSize
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	return items[start:min(start+limit, len(items))]
}

// ListParams is the caller-facing filter/pagination surface shared by
// the catalog list endpoints. All fields are optional; Page defaults
// to 1 and Limit to the fixed page size.
type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Ordering string

	// University filters
	Type string

	// Program filters
	Level      string
	University int64
	Language   string
	Featured   *bool
}

func (p ListParams) withDefaults() ListParams {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = model.DefaultPageSize
	}
	return p
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Ordering != "" {
		v.Set("ordering", p.Ordering)
	}
	if p.Type != "" {
		v.Set("type", p.Type)
	}
	if p.Level != "" {
		v.Set("level", p.Level)
	}
	if p.University > 0 {
		v.Set("university", strconv.FormatInt(p.University, 10))
	}
	if p.Language != "" {
		v.Set("language", p.Language)
	}
	if p.Featured != nil {
		v.Set("featured", strconv.FormatBool(*p.Featured))
	}
	return v
}
