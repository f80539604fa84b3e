// Package paging resolves a requested page against the visible list.
package paging

import (
	"strconv"
	"strings"
)

const DefaultPerPage = 15

// Window is the slice of items shown on one page. Start and End index the visible list.
type Window struct {
	Page       int
	TotalPages int
	Start      int
	End        int
}

// TotalPages is ceil(total / perPage).
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Resolve parses rawPage (empty means page 1) and returns the window for it.
// ok is false when the caller should redirect to the first page: there is at
// least one page and rawPage is not an integer, below 1, or past the last page.
// With zero items every request resolves to an empty first page.
func Resolve(rawPage string, total, perPage int) (Window, bool) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	pages := TotalPages(total, perPage)
	page, err := parsePage(rawPage)
	if pages == 0 {
		return Window{Page: 1}, true
	}
	if err != nil || page < 1 || page > pages {
		return Window{Page: 1, TotalPages: pages, End: min(perPage, total)}, false
	}
	start := (page - 1) * perPage
	return Window{
		Page:       page,
		TotalPages: pages,
		Start:      start,
		End:        min(start+perPage, total),
	}, true
}

// Slice returns the items inside w.
func Slice[T any](items []T, w Window) []T {
	if w.Start >= len(items) || w.End <= w.Start {
		return nil
	}
	return items[w.Start:min(w.End, len(items))]
}

func parsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	return strconv.Atoi(raw)
}
