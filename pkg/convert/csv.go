package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/harconv/harconv/pkg/fields"
	"github.com/harconv/harconv/pkg/har"
	"github.com/harconv/harconv/pkg/httpmsg"
)

// csvProgressEvery controls how often row progress is reported.
const csvProgressEvery = 500

// ConvertCSV streams a proxy CSV export into a HAR document. Entries are
// written as rows are read, so input size is bounded only by disk; rows that
// cannot be minimally parsed are skipped and counted, never emitted as
// partial entries.
func (c *Converter) ConvertCSV(input, output string) (*Stats, error) {
	in, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	out, err := createOutput(output, c.cfg.GzipOutput)
	if err != nil {
		return nil, err
	}

	writer := har.NewStreamWriter(out.Writer(), har.Creator{
		Name:    "harconv",
		Version: Version,
		Comment: "Converted from proxy CSV export",
	})

	if err := c.streamCSV(in, writer); err != nil {
		out.Close()
		return nil, err
	}

	if err := writer.Close(); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize output file: %w", err)
	}
	return &c.stats, nil
}

// streamCSV reads rows from in and writes one HAR entry per convertible row.
// Malformed rows are skipped and counted; an underlying read failure aborts
// the conversion, since the reader would return it on every subsequent call.
func (c *Converter) streamCSV(in io.Reader, writer *har.StreamWriter) error {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	columns, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	c.log.Debug("available columns: %s", strings.Join(columns, ", "))

	for idx := 1; ; idx++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			c.recordSkip(fmt.Sprintf("row %d: %v", idx, err))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV row %d: %w", idx, err)
		}

		row := rowMap(columns, record)
		entry, ok := c.csvEntry(idx, row)
		if !ok {
			continue
		}
		if err := writer.WriteEntry(entry); err != nil {
			return err
		}
		c.stats.Processed++

		if idx%csvProgressEvery == 0 {
			c.log.Debug("processed %d rows", idx)
		}
	}
}

// rowMap pairs header names with row values. Short rows leave trailing
// columns blank; surplus values are dropped.
func rowMap(columns, record []string) map[string]string {
	row := make(map[string]string, len(columns))
	for i, name := range columns {
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row
}

// csvEntry maps one CSV row onto a HAR entry. The only hard requirement is
// a URL; every other field degrades to a default.
func (c *Converter) csvEntry(idx int, row map[string]string) (*har.Entry, bool) {
	url := strings.TrimSpace(row["URL"])
	if url == "" {
		c.recordSkip(fmt.Sprintf("row %d: missing URL", idx))
		return nil, false
	}

	rawReq := decodeBase64Lenient(row["Request"])
	rawRes := decodeBase64Lenient(row["Response"])

	reqHeaders := httpmsg.ParseHeaders(rawReq)
	resHeaders := httpmsg.ParseHeaders(rawRes)
	reqBody := httpmsg.ExtractBody(rawReq)
	resBody := httpmsg.ExtractBody(rawRes)

	method := strings.TrimSpace(row["Method"])
	if method == "" {
		method = "GET"
	}

	request := har.Request{
		Method:      method,
		URL:         url,
		HTTPVersion: httpmsg.ExtractHTTPVersion(rawReq),
		Cookies:     toCookies(httpmsg.RequestCookies(reqHeaders)),
		Headers:     toNameValues(reqHeaders),
		QueryString: toQueryString(httpmsg.QueryParams(url)),
		PostData:    postDataFor(method, reqBody, reqHeaders),
		HeadersSize: httpmsg.HeadersSize(reqHeaders),
		BodySize:    len(reqBody),
	}

	// A missing response blob still yields a version: the request's own
	// protocol is the best available guess.
	respVersion := httpmsg.ExtractHTTPVersion(rawRes)
	if rawRes == "" {
		respVersion = httpmsg.ExtractHTTPVersion(rawReq)
	}

	mime := httpmsg.MimeType(resHeaders)
	if mime == "" {
		mime = strings.TrimSpace(row["MIME type"])
	}

	response := har.Response{
		Status:      fields.SafeInt(row["Status code"], 0),
		StatusText:  httpmsg.ExtractStatusText(rawRes),
		HTTPVersion: respVersion,
		Cookies:     toCookies(httpmsg.ResponseCookies(resHeaders)),
		Headers:     toNameValues(resHeaders),
		Content:     contentFor(resBody, mime),
		RedirectURL: strings.TrimSpace(row["Redirect URL"]),
		HeadersSize: httpmsg.HeadersSize(resHeaders),
		BodySize:    len(resBody),
	}

	timings := csvTimings(row)

	started := strings.TrimSpace(row["Time"])
	if started == "" {
		started = isoZ(nowFunc())
	}

	entry := &har.Entry{
		StartedDateTime: started,
		Time:            timings.Total(),
		Request:         request,
		Response:        response,
		Timings:         timings,
		ServerIPAddress: strings.TrimSpace(row["IP"]),
		Connection:      strings.TrimSpace(row["Connection ID"]),
	}
	if c.cfg.Passthrough {
		entry.CSVSource = row
	}
	return entry, true
}

// csvTimings derives the timing breakdown from the proxy's timer columns.
// Phases the export does not measure stay at -1 so they are excluded from
// the entry total.
func csvTimings(row map[string]string) har.Timings {
	start := fields.SafeFloat(row["Start response timer"], 0)
	end := fields.SafeFloat(row["End response timer"], 0)

	wait := 0.0
	if start != 0 && end != 0 {
		wait = math.Max(0, end-start)
	}

	return har.Timings{
		Blocked: -1,
		DNS:     -1,
		Connect: -1,
		Send:    fields.SafeFloat(row["Send time"], 0),
		Wait:    wait,
		Receive: fields.SafeFloat(row["Receive time"], 0),
		SSL:     -1,
	}
}
