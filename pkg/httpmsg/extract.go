package httpmsg

import "strings"

// Cookie is a name/value pair extracted from Cookie or Set-Cookie headers.
// Attributes (Path, Expires, ...) are not represented; HAR viewers only need
// the pair itself for captured traffic.
type Cookie struct {
	Name  string
	Value string
}

// Param is one URL query parameter. Blank values are preserved, not dropped.
type Param struct {
	Name  string
	Value string
}

// RequestCookies collects cookies from every Cookie header, splitting the
// value on ';' and each piece on its first '='. Pieces without '=' carry no
// pair and are dropped.
func RequestCookies(headers []Header) []Cookie {
	cookies := []Cookie{}
	for _, h := range headers {
		if !strings.EqualFold(h.Name, "Cookie") {
			continue
		}
		for _, part := range strings.Split(h.Value, ";") {
			name, value, found := strings.Cut(part, "=")
			if !found {
				continue
			}
			cookies = append(cookies, Cookie{
				Name:  strings.TrimSpace(name),
				Value: strings.TrimSpace(value),
			})
		}
	}
	return cookies
}

// ResponseCookies collects one cookie per Set-Cookie header occurrence. Only
// the leading name=value segment is kept; attributes after the first ';' are
// discarded.
func ResponseCookies(headers []Header) []Cookie {
	cookies := []Cookie{}
	for _, h := range headers {
		if !strings.EqualFold(h.Name, "Set-Cookie") {
			continue
		}
		segment, _, _ := strings.Cut(h.Value, ";")
		name, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}
		cookies = append(cookies, Cookie{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return cookies
}

// QueryParams extracts the query component of a URL (between '?' and '#' or
// end of string) without requiring the URL to parse as a whole. Parameters
// lacking '=' are kept with an empty value.
func QueryParams(url string) []Param {
	params := []Param{}
	_, query, found := strings.Cut(url, "?")
	if !found {
		return params
	}
	query, _, _ = strings.Cut(query, "#")
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		params = append(params, Param{Name: name, Value: value})
	}
	return params
}

// MimeType returns the media type of the first Content-Type header,
// truncated before any parameters such as charset. Absent header yields "";
// callers substitute their own source-specific fallback.
func MimeType(headers []Header) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			mime, _, _ := strings.Cut(h.Value, ";")
			return strings.TrimSpace(mime)
		}
	}
	return ""
}

// HeadersSize estimates the wire size of a header block: name, value, the
// ": " separator and a CRLF terminator per header. An empty list returns -1,
// HAR's "not available" sentinel, never 0 (0 would claim a measured empty
// block).
func HeadersSize(headers []Header) int {
	if len(headers) == 0 {
		return -1
	}
	total := 0
	for _, h := range headers {
		total += len(h.Name) + len(h.Value) + 4
	}
	return total
}
