// Package metadata reports stat information for a single regular file.
package metadata

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"
)

// ErrNotRegularFile is returned when the path is missing or is not a regular file.
var ErrNotRegularFile = errors.New("does not exist or is not a file")

// TimeLayout is ISO-8601 in local time without a zone offset.
const TimeLayout = "2006-01-02T15:04:05.000000"

// FileMetadata is a read-only projection of stat data for one regular file.
type FileMetadata struct {
	FullPath    string  `json:"full_path"`
	SizeKB      float64 `json:"size_kb"`
	Created     string  `json:"created"`
	Modified    string  `json:"modified"`
	Type        *string `json:"type"`
	Permissions string  `json:"permissions"`
}

// Read stats the file at path. The path is used as given; callers resolve it first.
func Read(path string) (*FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("'%s' %w", path, ErrNotRegularFile)
	}

	md := &FileMetadata{
		FullPath:    path,
		SizeKB:      sizeInKB(info.Size()),
		Created:     FormatTime(creationTime(path, info)),
		Modified:    FormatTime(info.ModTime()),
		Permissions: info.Mode().String(),
	}
	if mimeType := GuessType(path); mimeType != "" {
		md.Type = &mimeType
	}
	return md, nil
}

// sizeInKB converts bytes to KiB rounded to two decimals.
func sizeInKB(bytes int64) float64 {
	return math.Round(float64(bytes)/1024*100) / 100
}

// FormatTime renders a timestamp the way metadata reports it.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}
