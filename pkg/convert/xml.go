package convert

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harconv/harconv/pkg/fields"
	"github.com/harconv/harconv/pkg/har"
	"github.com/harconv/harconv/pkg/httpmsg"
)

// burpTimeLayout is the legacy timestamp format Burp writes into <time>,
// e.g. "Sat Jan 17 17:08:18 EET 2026". English weekday/month abbreviations
// and a literal zone name are assumed; anything else falls back to the
// current time.
const burpTimeLayout = "Mon Jan 2 15:04:05 MST 2006"

// xmlProgressEvery controls how often item progress is reported.
const xmlProgressEvery = 10

// burpItems is the Burp Suite history export document. Only item children
// matter; the root element name is not constrained.
type burpItems struct {
	Items []burpItem `xml:"item"`
}

type burpItem struct {
	Time     string       `xml:"time"`
	URL      string       `xml:"url"`
	Host     burpHost     `xml:"host"`
	Port     string       `xml:"port"`
	Protocol string       `xml:"protocol"`
	Method   string       `xml:"method"`
	Request  *burpPayload `xml:"request"`
	Status   string       `xml:"status"`
	Response *burpPayload `xml:"response"`
	MimeType string       `xml:"mimetype"`
}

type burpHost struct {
	Name string `xml:",chardata"`
	IP   string `xml:"ip,attr"`
}

type burpPayload struct {
	Data   string `xml:",chardata"`
	Base64 bool   `xml:"base64,attr"`
}

// ConvertXML turns a Burp Suite XML export into a HAR document. Exports are
// assumed bounded, so the whole document is unmarshaled and all entries are
// collected before a single serialization pass.
func (c *Converter) ConvertXML(input, output string) (*Stats, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var export burpItems
	if err := xml.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse XML export: %w", err)
	}
	c.log.Info("found %d items in %s", len(export.Items), input)

	doc := har.NewDocument(har.Creator{
		Name:    "harconv",
		Version: Version,
		Comment: "Converted from Burp Suite XML export",
	})
	doc.Log.Browser = &har.Browser{Name: "Unknown", Version: "Unknown"}

	for i, item := range export.Items {
		entry, ok := c.xmlEntry(i+1, &item)
		if !ok {
			continue
		}
		doc.Log.Entries = append(doc.Log.Entries, *entry)
		c.stats.Processed++

		if (i+1)%xmlProgressEvery == 0 {
			c.log.Debug("processed %d/%d items", i+1, len(export.Items))
		}
	}

	if len(doc.Log.Entries) == 0 {
		return &c.stats, fmt.Errorf("no valid entries found in %s", input)
	}
	doc.Log.Comment = fmt.Sprintf("Converted %d HTTP transactions from Burp Suite XML", len(doc.Log.Entries))

	out, err := createOutput(output, c.cfg.GzipOutput)
	if err != nil {
		return nil, err
	}
	if err := har.WriteDocument(out.Writer(), doc); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize output file: %w", err)
	}
	return &c.stats, nil
}

// xmlEntry maps one history item onto a HAR entry. Items without a URL or a
// request payload cannot produce a meaningful entry and are skipped.
func (c *Converter) xmlEntry(idx int, item *burpItem) (*har.Entry, bool) {
	url := strings.TrimSpace(item.URL)
	if url == "" {
		c.recordSkip(fmt.Sprintf("item %d: missing URL", idx))
		return nil, false
	}
	if item.Request == nil {
		c.recordSkip(fmt.Sprintf("item %d: missing request element", idx))
		return nil, false
	}

	rawReq := item.Request.Data
	if item.Request.Base64 {
		rawReq = c.decodeBase64Strict(rawReq)
	}

	method, _, version, ok := httpmsg.ParseRequestLine(rawReq)
	if !ok {
		// Damaged request payloads still convert: Burp duplicates the
		// method in its own element.
		method = strings.TrimSpace(item.Method)
		if method == "" {
			method = "GET"
		}
		version = ""
	}
	if version == "" {
		version = "HTTP/1.1"
	}

	reqHeaders := httpmsg.ParseHeaders(rawReq)
	reqBody := httpmsg.ExtractBody(rawReq)

	request := har.Request{
		Method:      method,
		URL:         url,
		HTTPVersion: version,
		Cookies:     toCookies(httpmsg.RequestCookies(reqHeaders)),
		Headers:     toNameValues(reqHeaders),
		QueryString: toQueryString(httpmsg.QueryParams(url)),
		PostData:    postDataFor(method, reqBody, reqHeaders),
		HeadersSize: httpmsg.HeadersSize(reqHeaders),
		BodySize:    len(reqBody),
	}

	rawRes := ""
	if item.Response != nil {
		rawRes = item.Response.Data
		if item.Response.Base64 {
			rawRes = c.decodeBase64Strict(rawRes)
		}
	}

	respVersion, status, statusText, ok := httpmsg.ParseStatusLine(rawRes)
	if !ok {
		respVersion = "HTTP/1.1"
		status = fields.SafeInt(strings.TrimSpace(item.Status), 0)
		statusText = ""
	}

	resHeaders := httpmsg.ParseHeaders(rawRes)
	resBody := httpmsg.ExtractBody(rawRes)

	mime := httpmsg.MimeType(resHeaders)
	if mime == "" {
		mime = strings.TrimSpace(item.MimeType)
	}
	if mime == "" {
		mime = "text/html"
	}

	response := har.Response{
		Status:      status,
		StatusText:  statusText,
		HTTPVersion: respVersion,
		Cookies:     toCookies(httpmsg.ResponseCookies(resHeaders)),
		Headers:     toNameValues(resHeaders),
		Content:     contentFor(resBody, mime),
		RedirectURL: "",
		HeadersSize: httpmsg.HeadersSize(resHeaders),
		BodySize:    len(resBody),
	}

	// Burp exports carry no timing breakdown; a fixed synthetic block keeps
	// HAR viewers that require one working.
	timings := har.Timings{Blocked: 0, DNS: 0, Connect: 0, Send: 1, Wait: 50, Receive: 49, SSL: 0}

	entry := &har.Entry{
		StartedDateTime: parseBurpTime(item.Time),
		Time:            timings.Total(),
		Request:         request,
		Response:        response,
		Timings:         timings,
		ServerIPAddress: strings.TrimSpace(item.Host.IP),
	}
	if c.cfg.Passthrough {
		entry.BurpSource = map[string]string{
			"time":     item.Time,
			"url":      item.URL,
			"host":     item.Host.Name,
			"ip":       item.Host.IP,
			"port":     item.Port,
			"protocol": item.Protocol,
			"method":   item.Method,
			"status":   item.Status,
			"mimetype": item.MimeType,
		}
	}
	return entry, true
}

// parseBurpTime renders the item timestamp in ISO-8601. Unparseable or
// missing timestamps fall back to the current time rather than failing the
// record.
func parseBurpTime(value string) string {
	t, err := time.Parse(burpTimeLayout, strings.TrimSpace(value))
	if err != nil {
		return isoZ(nowFunc())
	}
	return isoZ(t)
}
