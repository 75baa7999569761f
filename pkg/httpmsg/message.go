// Package httpmsg parses raw HTTP message text captured by proxy tools into
// start-line fields, ordered headers and body. Captured data is frequently
// truncated or mangled, so every function here follows a strict
// never-fail contract: malformed input produces zero values or empty
// results, never an error.
package httpmsg

import (
	"strconv"
	"strings"
)

// Header is a single HTTP header occurrence. Order and duplicates are
// significant (e.g. repeated Set-Cookie), so headers are kept as a slice
// rather than a map.
type Header struct {
	Name  string
	Value string
}

// ParseRequestLine splits the first line of a raw request into method,
// target and protocol version. Lines with fewer than three tokens are not a
// request line; ok is false and all fields are empty.
func ParseRequestLine(raw string) (method, target, version string, ok bool) {
	parts := strings.Fields(firstLine(raw))
	if len(parts) < 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// ParseStatusLine splits the first line of a raw response into protocol
// version, numeric status code and status text. The status text may itself
// contain spaces ("Moved Permanently"), so only the first two tokens are
// split off. A short line or non-numeric code yields ok false.
func ParseStatusLine(raw string) (version string, status int, statusText string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(firstLine(raw)), " ", 3)
	if len(parts) < 3 {
		return "", 0, "", false
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, "", false
	}
	return parts[0], code, strings.TrimSpace(parts[2]), true
}

// ParseHeaders extracts the header block that follows the start line,
// preserving source order. Iteration stops at the first blank line; lines
// without a colon are ignored rather than treated as malformed, since
// capture exports routinely contain stray continuation fragments.
func ParseHeaders(raw string) []Header {
	headers := []Header{}
	if raw == "" {
		return headers
	}
	lines := splitLines(raw)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			break
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		headers = append(headers, Header{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return headers
}

// ExtractBody returns everything after the first blank-line separator,
// verbatim. A message without a separator has no body.
func ExtractBody(raw string) string {
	if _, body, found := strings.Cut(raw, "\r\n\r\n"); found {
		return body
	}
	if _, body, found := strings.Cut(raw, "\n\n"); found {
		return body
	}
	return ""
}

// ExtractHTTPVersion scans the start line for a known protocol marker.
// Unknown or missing markers default to HTTP/1.1, the overwhelmingly common
// case in proxy exports.
func ExtractHTTPVersion(raw string) string {
	first := firstLine(raw)
	switch {
	case strings.Contains(first, "HTTP/2"):
		return "HTTP/2"
	case strings.Contains(first, "HTTP/1.0"):
		return "HTTP/1.0"
	}
	return "HTTP/1.1"
}

// ExtractStatusText returns the reason phrase of a raw response status line,
// or "" when the line is too short to carry one.
func ExtractStatusText(raw string) string {
	parts := strings.SplitN(strings.TrimSpace(firstLine(raw)), " ", 3)
	if len(parts) < 3 {
		return ""
	}
	return strings.TrimSpace(parts[2])
}

// firstLine returns the start line of a raw message, tolerating sources that
// normalized CRLF down to bare LF.
func firstLine(raw string) string {
	if line, _, found := strings.Cut(raw, "\r\n"); found {
		return line
	}
	line, _, _ := strings.Cut(raw, "\n")
	return line
}

// splitLines splits on CRLF per the HTTP wire convention, falling back to
// bare LF when the source was normalized.
func splitLines(raw string) []string {
	if strings.Contains(raw, "\r\n") {
		return strings.Split(raw, "\r\n")
	}
	return strings.Split(raw, "\n")
}
