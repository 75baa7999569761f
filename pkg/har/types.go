// Package har defines the HTTP Archive 1.2 data model and the two document
// emitters used by the converters: a streaming entry writer for unbounded
// inputs and a batch writer for in-memory documents.
package har

// Document is the root HAR object.
type Document struct {
	Log Log `json:"log"`
}

// Log holds the document metadata and all converted entries.
type Log struct {
	Version string   `json:"version"`
	Creator Creator  `json:"creator"`
	Browser *Browser `json:"browser,omitempty"`
	Pages   []Page   `json:"pages"`
	Entries []Entry  `json:"entries"`
	Comment string   `json:"comment,omitempty"`
}

// Creator identifies the converter that produced the document.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Comment string `json:"comment,omitempty"`
}

// Browser identifies the originating browser when known.
type Browser struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Comment string `json:"comment,omitempty"`
}

// Page represents a page grouping (optional in HAR).
type Page struct {
	StartedDateTime string  `json:"startedDateTime"`
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	PageTimings     Timings `json:"pageTimings"`
	Comment         string  `json:"comment,omitempty"`
}

// Entry is a single HTTP transaction. StartedDateTime is kept as a string so
// source-provided timestamps pass through verbatim instead of being
// reinterpreted. The passthrough maps carry every original source field when
// lossless conversion is enabled.
type Entry struct {
	StartedDateTime string            `json:"startedDateTime"`
	Time            float64           `json:"time"`
	Request         Request           `json:"request"`
	Response        Response          `json:"response"`
	Cache           Cache             `json:"cache"`
	Timings         Timings           `json:"timings"`
	ServerIPAddress string            `json:"serverIPAddress,omitempty"`
	Connection      string            `json:"connection,omitempty"`
	Comment         string            `json:"comment,omitempty"`
	CSVSource       map[string]string `json:"_csvOriginalData,omitempty"`
	BurpSource      map[string]string `json:"_burpOriginalData,omitempty"`
}

// Request mirrors the HAR request object.
type Request struct {
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	HTTPVersion string      `json:"httpVersion"`
	Cookies     []Cookie    `json:"cookies"`
	Headers     []NameValue `json:"headers"`
	QueryString []NameValue `json:"queryString"`
	PostData    *PostData   `json:"postData,omitempty"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// Response mirrors the HAR response object.
type Response struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Cookies     []Cookie    `json:"cookies"`
	Headers     []NameValue `json:"headers"`
	Content     Content     `json:"content"`
	RedirectURL string      `json:"redirectURL"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// Cookie is a cookie sent or set during the transaction.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NameValue is the generic pair used for headers and query parameters.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PostData holds the request body of entity-bearing methods.
type PostData struct {
	MimeType string      `json:"mimeType"`
	Params   []NameValue `json:"params"`
	Text     string      `json:"text"`
}

// Content holds the response body. Size always reflects the byte length of
// the body actually extracted, independent of source length metadata.
// Encoding is "base64" when Text could not be carried as text.
type Content struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
	Encoding string `json:"encoding,omitempty"`
}

// Cache is emitted as an empty object; capture exports carry no cache state.
type Cache struct{}

// Timings is the per-phase breakdown. -1 marks phases the source did not
// measure; those are excluded from the entry total.
type Timings struct {
	Blocked float64 `json:"blocked"`
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
	SSL     float64 `json:"ssl"`
}

// Total sums the measured (non-negative) phases.
func (t Timings) Total() float64 {
	total := 0.0
	for _, v := range []float64{t.Blocked, t.DNS, t.Connect, t.Send, t.Wait, t.Receive, t.SSL} {
		if v >= 0 {
			total += v
		}
	}
	return total
}

// Version is the HAR schema version both emitters produce.
const Version = "1.2"
