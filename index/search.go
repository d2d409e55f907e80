package index

import (
	"path/filepath"
	"strings"
)

// Search returns the entries of paths whose base name contains query as a
// case-insensitive substring. Order is preserved; an empty query matches everything.
func Search(query string, paths []string) []string {
	query = strings.ToLower(query)

	matches := make([]string, 0)
	for _, path := range paths {
		if strings.Contains(strings.ToLower(filepath.Base(path)), query) {
			matches = append(matches, path)
		}
	}
	return matches
}
