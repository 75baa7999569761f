package har

import (
	"bytes"
	"encoding/json"
	"testing"
)

func testEntry(url string) *Entry {
	return &Entry{
		StartedDateTime: "2026-01-17T17:08:18Z",
		Time:            5,
		Request: Request{
			Method:      "GET",
			URL:         url,
			HTTPVersion: "HTTP/1.1",
			Cookies:     []Cookie{},
			Headers:     []NameValue{{Name: "Host", Value: "h"}},
			QueryString: []NameValue{},
			HeadersSize: 9,
			BodySize:    0,
		},
		Response: Response{
			Status:      200,
			StatusText:  "OK",
			HTTPVersion: "HTTP/1.1",
			Cookies:     []Cookie{},
			Headers:     []NameValue{},
			Content:     Content{Size: 5, MimeType: "text/plain", Text: "hello"},
			HeadersSize: -1,
			BodySize:    5,
		},
		Timings: Timings{Blocked: -1, DNS: -1, Connect: -1, Send: 1, Wait: 3, Receive: 1, SSL: -1},
	}
}

func TestStreamWriterEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf, Creator{Name: "harconv", Version: "0.1.0"})

	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Fatalf("output is not valid JSON:\n%s", buf.String())
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if doc.Log.Version != Version {
		t.Errorf("log.version = %q, want %q", doc.Log.Version, Version)
	}
	if doc.Log.Creator.Name != "harconv" {
		t.Errorf("log.creator.name = %q, want %q", doc.Log.Creator.Name, "harconv")
	}
	if len(doc.Log.Entries) != 0 {
		t.Errorf("log.entries has %d entries, want 0", len(doc.Log.Entries))
	}
}

func TestStreamWriterEmitsSameLogKeysAsBatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf, Creator{Name: "harconv", Version: "0.1.0"})
	if err := w.WriteEntry(testEntry("http://x.test/a")); err != nil {
		t.Fatalf("WriteEntry() failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to unmarshal output: %v\n%s", err, buf.String())
	}
	log, ok := decoded["log"].(map[string]interface{})
	if !ok {
		t.Fatal("output missing log object")
	}
	for _, key := range []string{"version", "creator", "pages", "entries"} {
		if _, ok := log[key]; !ok {
			t.Errorf("log object missing %q key", key)
		}
	}
	pages, ok := log["pages"].([]interface{})
	if !ok {
		t.Fatalf("log.pages = %v, want an array", log["pages"])
	}
	if len(pages) != 0 {
		t.Errorf("log.pages has %d elements, want 0", len(pages))
	}
}

func TestStreamWriterMultipleEntries(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf, Creator{Name: "harconv", Version: "0.1.0"})

	urls := []string{"http://x.test/a", "http://x.test/b", "http://x.test/c"}
	for _, u := range urls {
		if err := w.WriteEntry(testEntry(u)); err != nil {
			t.Fatalf("WriteEntry(%s) failed: %v", u, err)
		}
	}
	if w.Count() != len(urls) {
		t.Errorf("Count() = %d, want %d", w.Count(), len(urls))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to unmarshal output: %v\n%s", err, buf.String())
	}
	if len(doc.Log.Entries) != len(urls) {
		t.Fatalf("log.entries has %d entries, want %d", len(doc.Log.Entries), len(urls))
	}
	for i, u := range urls {
		if doc.Log.Entries[i].Request.URL != u {
			t.Errorf("entry %d url = %q, want %q (order must be preserved)", i, doc.Log.Entries[i].Request.URL, u)
		}
	}
}

func TestWriteDocument(t *testing.T) {
	doc := NewDocument(Creator{Name: "harconv", Version: "0.1.0", Comment: "test"})
	doc.Log.Entries = append(doc.Log.Entries, *testEntry("http://x.test/a"))

	var buf bytes.Buffer
	if err := WriteDocument(&buf, doc); err != nil {
		t.Fatalf("WriteDocument() failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	log, ok := decoded["log"].(map[string]interface{})
	if !ok {
		t.Fatal("output missing log object")
	}
	for _, key := range []string{"version", "creator", "pages", "entries"} {
		if _, ok := log[key]; !ok {
			t.Errorf("log object missing mandatory %q key", key)
		}
	}
}

func TestTimingsTotalExcludesSentinels(t *testing.T) {
	tests := []struct {
		name    string
		timings Timings
		want    float64
	}{
		{"unmeasured phases excluded", Timings{Blocked: -1, DNS: -1, Connect: -1, Send: 2, Wait: 30, Receive: 8, SSL: -1}, 40},
		{"all measured", Timings{Blocked: 0, DNS: 0, Connect: 0, Send: 1, Wait: 50, Receive: 49, SSL: 0}, 100},
		{"all unmeasured", Timings{Blocked: -1, DNS: -1, Connect: -1, Send: -1, Wait: -1, Receive: -1, SSL: -1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.timings.Total(); got != tt.want {
				t.Errorf("Total() = %v, want %v", got, tt.want)
			}
		})
	}
}
