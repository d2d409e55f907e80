package index

import (
	"os"
	"path/filepath"
	"strings"
)

// findOnDisk maps a lowercased path to an existing path whose segments match
// it case-insensitively. Returns "" when any segment has no match.
func findOnDisk(entry string) string {
	if _, err := os.Lstat(entry); err == nil {
		return entry
	}

	volume := filepath.VolumeName(entry)
	rest := entry[len(volume):]
	current := ""
	if filepath.IsAbs(entry) {
		current = volume + string(filepath.Separator)
	}

	for _, segment := range strings.Split(rest, string(filepath.Separator)) {
		if segment == "" || segment == "." {
			continue
		}
		candidate := filepath.Join(current, segment)
		if _, err := os.Lstat(candidate); err == nil {
			current = candidate
			continue
		}

		dir := current
		if dir == "" {
			dir = "."
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return ""
		}
		match := ""
		for _, e := range entries {
			if strings.ToLower(e.Name()) == segment {
				match = e.Name()
				break
			}
		}
		if match == "" {
			return ""
		}
		current = filepath.Join(current, match)
	}
	return current
}
