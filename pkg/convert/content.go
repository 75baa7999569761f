package convert

import (
	"strings"
	"unicode"
)

// textMimeTypes lists non-text/* media types whose bodies are still textual.
var textMimeTypes = []string{
	"application/json",
	"application/xml",
	"application/javascript",
	"application/x-www-form-urlencoded",
}

// isTextLike reports whether a body can be carried verbatim in the HAR
// content text field. The media type decides when it is recognizably
// textual; otherwise a printable-rune heuristic is applied. Replacement
// runes left behind by decoding count against the body, so compressed or
// binary payloads fall through to base64.
func isTextLike(data []byte, contentType string) bool {
	if len(data) == 0 {
		return true
	}

	contentType = strings.ToLower(contentType)
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	for _, t := range textMimeTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}

	printable, total := 0, 0
	for _, r := range string(data) {
		total++
		if r == '�' {
			continue
		}
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			printable++
		}
	}
	return float64(printable)/float64(total) > 0.8
}
