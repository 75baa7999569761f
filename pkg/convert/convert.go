// Package convert turns captured HTTP transaction records into HAR 1.2
// entries. Two source adapters share one parsing core: the CSV adapter
// streams entries to the output as rows are read, the Burp XML adapter
// collects all entries and serializes the document in one pass.
package convert

import (
	"bufio"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harconv/harconv/internal/config"
	"github.com/harconv/harconv/pkg/har"
	"github.com/harconv/harconv/pkg/httpmsg"
	"github.com/harconv/harconv/pkg/logger"
)

// Version is stamped into the creator block of every document produced.
const Version = "0.1.0"

// nowFunc supplies fallback timestamps; swapped out in tests.
var nowFunc = time.Now

// bodyMethods are the methods whose extracted body becomes postData. Bodies
// on other methods (GET, HEAD) are dropped per HAR convention even when the
// capture carries one.
var bodyMethods = map[string]bool{
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// Stats are the per-run counters reported to the operator. Field and record
// level failures never abort a run; they end up here.
type Stats struct {
	Processed    int      // entries written
	Skipped      int      // records dropped as unparseable
	ErrorSamples []string // first MaxErrorDetail skip/decode reasons
}

// Converter drives one conversion run. It owns the counters and is not safe
// for concurrent use; create one per invocation.
type Converter struct {
	cfg   *config.Config
	log   logger.Logger
	stats Stats
}

// New creates a converter for the given configuration.
func New(cfg *config.Config, log logger.Logger) *Converter {
	return &Converter{cfg: cfg, log: log}
}

// Convert runs the pipeline selected by the configured format, detecting it
// from the input file when set to auto.
func (c *Converter) Convert(input, output string) (*Stats, error) {
	format := c.cfg.Format
	if format == config.FormatAuto {
		detected, err := DetectFormat(input)
		if err != nil {
			return nil, err
		}
		format = detected
		c.log.Debug("detected input format: %s", format)
	}

	switch format {
	case config.FormatCSV:
		return c.ConvertCSV(input, output)
	case config.FormatXML:
		return c.ConvertXML(input, output)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// DetectFormat guesses the input format from the file extension, falling
// back to the first non-blank byte of the content (Burp exports always open
// with an XML declaration or element).
func DetectFormat(path string) (config.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return config.FormatCSV, nil
	case ".xml":
		return config.FormatXML, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	head := strings.TrimLeft(string(buf[:n]), " \t\r\n")
	if strings.HasPrefix(head, "<") {
		return config.FormatXML, nil
	}
	return config.FormatCSV, nil
}

// recordSkip counts a dropped record and surfaces the first few reasons to
// the operator.
func (c *Converter) recordSkip(reason string) {
	c.stats.Skipped++
	if len(c.stats.ErrorSamples) < c.cfg.MaxErrorDetail {
		c.stats.ErrorSamples = append(c.stats.ErrorSamples, reason)
		c.log.Warn("%s", reason)
	}
}

// outputFile wraps the destination file with buffering and optional gzip
// compression. Close flushes in reverse order of wrapping.
type outputFile struct {
	file *os.File
	buf  *bufio.Writer
	gzip io.WriteCloser
	w    io.Writer
}

func createOutput(path string, compress bool) (*outputFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	out := &outputFile{file: f, buf: bufio.NewWriter(f)}
	out.w = out.buf
	if compress {
		out.gzip = gzip.NewWriter(out.buf)
		out.w = out.gzip
	}
	return out, nil
}

func (o *outputFile) Writer() io.Writer { return o.w }

func (o *outputFile) Close() error {
	if o.gzip != nil {
		if err := o.gzip.Close(); err != nil {
			o.file.Close()
			return err
		}
	}
	if err := o.buf.Flush(); err != nil {
		o.file.Close()
		return err
	}
	return o.file.Close()
}

// decodeBase64Lenient decodes optionally-encoded CSV cells. Cells holding
// plain text fail to decode and are returned as-is; decoded bytes that are
// not valid UTF-8 get replacement runes, matching how the capture tool
// exports them.
func decodeBase64Lenient(value string) string {
	if value == "" {
		return ""
	}
	compact := stripSpace(value)
	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return value
	}
	return strings.ToValidUTF8(string(data), "�")
}

// decodeBase64Strict decodes Burp payloads marked base64="true". Burp never
// writes plain text under that attribute, so a decode failure means a
// damaged export: the payload is discarded and the failure surfaced.
func (c *Converter) decodeBase64Strict(value string) string {
	data, err := base64.StdEncoding.DecodeString(stripSpace(value))
	if err != nil {
		if len(c.stats.ErrorSamples) < c.cfg.MaxErrorDetail {
			c.stats.ErrorSamples = append(c.stats.ErrorSamples, fmt.Sprintf("base64 decode error: %v", err))
			c.log.Warn("base64 decode error: %v", err)
		}
		return ""
	}
	return strings.ToValidUTF8(string(data), "�")
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

// postDataFor builds the postData block for a request, or nil when the
// method does not carry an entity or the body is empty.
func postDataFor(method, body string, headers []httpmsg.Header) *har.PostData {
	if body == "" || !bodyMethods[strings.ToUpper(method)] {
		return nil
	}
	mime := httpmsg.MimeType(headers)
	if mime == "" {
		mime = "application/octet-stream"
	}
	return &har.PostData{
		MimeType: mime,
		Params:   []har.NameValue{},
		Text:     body,
	}
}

// contentFor builds the response content block. Size always reflects the
// extracted body, never source length metadata. Bodies that do not look like
// text are carried base64-encoded so the JSON stays lossless.
func contentFor(body, mime string) har.Content {
	content := har.Content{
		Size:     len(body),
		MimeType: mime,
		Text:     body,
	}
	if body != "" && !isTextLike([]byte(body), mime) {
		content.Text = base64.StdEncoding.EncodeToString([]byte(body))
		content.Encoding = "base64"
	}
	return content
}

func toNameValues(headers []httpmsg.Header) []har.NameValue {
	out := make([]har.NameValue, 0, len(headers))
	for _, h := range headers {
		out = append(out, har.NameValue{Name: h.Name, Value: h.Value})
	}
	return out
}

func toCookies(cookies []httpmsg.Cookie) []har.Cookie {
	out := make([]har.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, har.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func toQueryString(params []httpmsg.Param) []har.NameValue {
	out := make([]har.NameValue, 0, len(params))
	for _, p := range params {
		out = append(out, har.NameValue{Name: p.Name, Value: p.Value})
	}
	return out
}

// isoZ renders a timestamp in the ISO-8601-with-Z form both pipelines emit.
// The wall-clock time is kept as given; no zone conversion is attempted
// (Burp exports carry locale zone names that cannot be resolved reliably).
func isoZ(t time.Time) string {
	return t.Format("2006-01-02T15:04:05") + "Z"
}
