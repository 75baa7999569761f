package convert

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harconv/harconv/internal/config"
	"github.com/harconv/harconv/pkg/har"
	"github.com/harconv/harconv/pkg/logger"
)

func runXML(t *testing.T, cfg *config.Config, document string) (*Stats, *har.Document, error) {
	t.Helper()
	input := filepath.Join(t.TempDir(), "export.xml")
	if err := os.WriteFile(input, []byte(document), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	output := filepath.Join(t.TempDir(), "out.har")

	c := New(cfg, logger.New(false, true))
	stats, err := c.ConvertXML(input, output)
	if err != nil {
		return stats, nil, err
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	var doc har.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	return stats, &doc, nil
}

func burpDocument(items ...string) string {
	return `<?xml version="1.0"?><items>` + strings.Join(items, "") + `</items>`
}

func TestConvertXMLEndToEnd(t *testing.T) {
	rawRequest := "GET /x?q=1 HTTP/1.1\r\nHost: h\r\nCookie: sid=abc\r\n\r\n"
	rawResponse := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nSet-Cookie: tok=1; Path=/\r\n\r\nhello"
	item := fmt.Sprintf(`<item>
  <time>Sat Jan 17 17:08:18 GMT 2026</time>
  <url>http://h/x?q=1</url>
  <host ip="10.0.0.7">h</host>
  <port>80</port>
  <protocol>http</protocol>
  <method>GET</method>
  <request base64="true">%s</request>
  <status>200</status>
  <response base64="true">%s</response>
  <mimetype>text</mimetype>
</item>`,
		base64.StdEncoding.EncodeToString([]byte(rawRequest)),
		base64.StdEncoding.EncodeToString([]byte(rawResponse)))

	stats, doc, err := runXML(t, testConfig(), burpDocument(item))
	if err != nil {
		t.Fatalf("ConvertXML() failed: %v", err)
	}
	if stats.Processed != 1 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v, want 1 processed, 0 skipped", stats)
	}

	entry := doc.Log.Entries[0]
	if entry.StartedDateTime != "2026-01-17T17:08:18Z" {
		t.Errorf("startedDateTime = %q, want 2026-01-17T17:08:18Z", entry.StartedDateTime)
	}
	if entry.Request.Method != "GET" || entry.Request.HTTPVersion != "HTTP/1.1" {
		t.Errorf("request line = %q %q, want GET HTTP/1.1", entry.Request.Method, entry.Request.HTTPVersion)
	}
	if entry.Request.URL != "http://h/x?q=1" {
		t.Errorf("request.url = %q, want the url element value", entry.Request.URL)
	}
	wantHeaders := []har.NameValue{{Name: "Host", Value: "h"}, {Name: "Cookie", Value: "sid=abc"}}
	if len(entry.Request.Headers) != 2 || entry.Request.Headers[0] != wantHeaders[0] || entry.Request.Headers[1] != wantHeaders[1] {
		t.Errorf("request.headers = %v, want %v", entry.Request.Headers, wantHeaders)
	}
	if len(entry.Request.Cookies) != 1 || entry.Request.Cookies[0] != (har.Cookie{Name: "sid", Value: "abc"}) {
		t.Errorf("request.cookies = %v, want [{sid abc}]", entry.Request.Cookies)
	}
	if len(entry.Response.Cookies) != 1 || entry.Response.Cookies[0] != (har.Cookie{Name: "tok", Value: "1"}) {
		t.Errorf("response.cookies = %v, want [{tok 1}]", entry.Response.Cookies)
	}
	if entry.Response.Content.Text != "hello" || entry.Response.Content.MimeType != "text/plain" {
		t.Errorf("response.content = %+v, want hello/text-plain", entry.Response.Content)
	}
	if entry.ServerIPAddress != "10.0.0.7" {
		t.Errorf("serverIPAddress = %q, want the host ip attribute", entry.ServerIPAddress)
	}
	if entry.Time != 100 {
		t.Errorf("time = %v, want the synthetic 100ms total", entry.Time)
	}
	if entry.BurpSource["port"] != "80" || entry.BurpSource["protocol"] != "http" {
		t.Errorf("_burpOriginalData = %v, want port/protocol carried through", entry.BurpSource)
	}
	if doc.Log.Version != har.Version || doc.Log.Creator.Name == "" {
		t.Errorf("document metadata incomplete: %+v", doc.Log)
	}
}

func TestConvertXMLPlainTextRequest(t *testing.T) {
	// Character data in XML gets newline-normalized; the parser must cope
	// with bare-LF messages.
	item := `<item>
  <url>http://h/x</url>
  <method>GET</method>
  <request base64="false">GET /x HTTP/1.1
Host: h

</request>
  <status>204</status>
</item>`

	stats, doc, err := runXML(t, testConfig(), burpDocument(item))
	if err != nil {
		t.Fatalf("ConvertXML() failed: %v", err)
	}
	if stats.Processed != 1 {
		t.Fatalf("stats = %+v, want 1 processed", stats)
	}

	entry := doc.Log.Entries[0]
	if entry.Request.Method != "GET" {
		t.Errorf("request.method = %q, want GET", entry.Request.Method)
	}
	if len(entry.Request.Headers) != 1 || entry.Request.Headers[0] != (har.NameValue{Name: "Host", Value: "h"}) {
		t.Errorf("request.headers = %v, want [{Host h}]", entry.Request.Headers)
	}
	// No response element: status falls back to the status element.
	if entry.Response.Status != 204 {
		t.Errorf("response.status = %d, want 204 from the status element", entry.Response.Status)
	}
	if entry.Response.Content.MimeType != "text/html" {
		t.Errorf("response mime = %q, want text/html default", entry.Response.Content.MimeType)
	}
}

func TestConvertXMLSkipsEmptyURL(t *testing.T) {
	empty := `<item><url></url><method>GET</method><request base64="false">GET / HTTP/1.1</request></item>`
	valid := `<item><url>http://h/ok</url><method>GET</method><request base64="false">GET /ok HTTP/1.1</request></item>`

	stats, doc, err := runXML(t, testConfig(), burpDocument(empty, valid))
	if err != nil {
		t.Fatalf("ConvertXML() failed: %v", err)
	}
	if stats.Processed != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want 1 processed, 1 skipped", stats)
	}
	if len(doc.Log.Entries) != 1 || doc.Log.Entries[0].Request.URL != "http://h/ok" {
		t.Errorf("skipped item must not be emitted, got %d entries", len(doc.Log.Entries))
	}
}

func TestConvertXMLMissingRequestElement(t *testing.T) {
	noReq := `<item><url>http://h/x</url><method>GET</method></item>`
	valid := `<item><url>http://h/ok</url><method>GET</method><request base64="false">GET /ok HTTP/1.1</request></item>`

	stats, _, err := runXML(t, testConfig(), burpDocument(noReq, valid))
	if err != nil {
		t.Fatalf("ConvertXML() failed: %v", err)
	}
	if stats.Processed != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want 1 processed, 1 skipped", stats)
	}
}

func TestConvertXMLNoValidEntries(t *testing.T) {
	item := `<item><url></url></item>`
	if _, _, err := runXML(t, testConfig(), burpDocument(item)); err == nil {
		t.Fatal("expected error when no entries can be produced")
	}
}

func TestConvertXMLMalformedDocument(t *testing.T) {
	if _, _, err := runXML(t, testConfig(), "<items><item>"); err == nil {
		t.Fatal("expected error for malformed XML")
	}
}

func TestParseBurpTime(t *testing.T) {
	if got := parseBurpTime("Sat Jan 17 17:08:18 GMT 2026"); got != "2026-01-17T17:08:18Z" {
		t.Errorf("parseBurpTime() = %q, want 2026-01-17T17:08:18Z", got)
	}

	fixed := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	orig := nowFunc
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = orig }()

	for _, bad := range []string{"", "17/01/2026 17:08", "not a timestamp"} {
		if got := parseBurpTime(bad); got != "2026-08-27T10:00:00Z" {
			t.Errorf("parseBurpTime(%q) = %q, want current-time fallback", bad, got)
		}
	}
}

func TestIsTextLike(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
		want bool
	}{
		{"empty body", nil, "", true},
		{"text mime always text", []byte{0x1f, 0x8b, 0x00, 0x00}, "text/plain", true},
		{"json mime", []byte(`{"a":1}`), "application/json", true},
		{"plain ascii without mime", []byte("hello world"), "", true},
		{"binary without mime", []byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, "application/octet-stream", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTextLike(tt.data, tt.mime); got != tt.want {
				t.Errorf("isTextLike(%v, %q) = %v, want %v", tt.data, tt.mime, got, tt.want)
			}
		})
	}
}
