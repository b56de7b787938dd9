package application

import "strings"

// FilterBySubstring keeps the items where any of the fields returned by
// fields contains q, ignoring case. An empty q keeps everything.
func FilterBySubstring[T any](items []T, q string, fields func(T) []string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
