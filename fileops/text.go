package fileops

import "unicode/utf8"

// IsTextContent reports whether data can be returned to the model as text.
// Null bytes in the first 512 bytes mark the content as binary, as does invalid UTF-8.
func IsTextContent(data []byte) bool {
	checkSize := 512
	if len(data) < checkSize {
		checkSize = len(data)
	}

	for i := 0; i < checkSize; i++ {
		if data[i] == 0 {
			return false
		}
	}
	return utf8.Valid(data)
}
