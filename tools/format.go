package tools

import (
	"encoding/json"
	"fmt"
)

// FormatResult renders a tool result as text. Strings pass through unchanged;
// lists and objects are rendered as indented JSON. The second return value
// reports whether the result is an {"error": ...} object.
func FormatResult(result any) (string, bool) {
	switch r := result.(type) {
	case string:
		return r, false
	case map[string]string:
		data, _ := json.MarshalIndent(r, "", "  ")
		_, isError := r["error"]
		return string(data), isError
	case nil:
		return "null", false
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", result), false
	}
	return string(data), false
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
