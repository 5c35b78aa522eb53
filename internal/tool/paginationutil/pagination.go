package paginationutil

import "fmt"

// Page describes how many items were dropped by Limit.
type Page struct {
	Total     int
	Truncated bool
}

// Limit keeps at most n items. n <= 0 keeps everything.
func Limit[T any](items []T, n int) ([]T, Page) {
	page := Page{Total: len(items)}
	if n <= 0 || len(items) <= n {
		return items, page
	}
	page.Truncated = true
	return items[:n], page
}

// Footer is the note appended to a truncated listing, or "".
func (p Page) Footer(shown int) string {
	if !p.Truncated {
		return ""
	}
	return fmt.Sprintf("\n[showing %d of %d results; narrow the search]", shown, p.Total)
}
