package har

import (
	"encoding/json"
	"fmt"
	"io"
)

// StreamWriter emits a HAR document one entry at a time so arbitrarily large
// inputs never require the full entry list in memory. The document skeleton
// is written by hand around individually-marshaled entries; the result is a
// regular indented JSON document.
//
// The caller owns the underlying writer and must call Close to terminate the
// entries array. A run aborted before Close leaves the file truncated, which
// is the documented crash behavior.
type StreamWriter struct {
	out     io.Writer
	creator Creator
	started bool
	count   int
}

// NewStreamWriter returns a writer that will emit a HAR 1.2 document with
// the given creator block to out.
func NewStreamWriter(out io.Writer, creator Creator) *StreamWriter {
	return &StreamWriter{out: out, creator: creator}
}

// WriteEntry serializes one entry into the document's entries array, opening
// the document on first use.
func (w *StreamWriter) WriteEntry(entry *Entry) error {
	if !w.started {
		if err := w.writePreamble(); err != nil {
			return err
		}
		w.started = true
	}
	data, err := json.MarshalIndent(entry, "      ", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if w.count > 0 {
		if _, err := io.WriteString(w.out, ",\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w.out, "      "); err != nil {
		return err
	}
	if _, err := w.out.Write(data); err != nil {
		return err
	}
	w.count++
	return nil
}

// Close terminates the entries array and the enclosing log object. A writer
// that never received an entry still produces a valid, empty document.
func (w *StreamWriter) Close() error {
	if !w.started {
		if err := w.writePreamble(); err != nil {
			return err
		}
		w.started = true
	}
	_, err := io.WriteString(w.out, "\n    ]\n  }\n}\n")
	return err
}

// Count reports how many entries have been written so far.
func (w *StreamWriter) Count() int {
	return w.count
}

func (w *StreamWriter) writePreamble() error {
	creator, err := json.MarshalIndent(w.creator, "    ", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal creator: %w", err)
	}
	_, err = fmt.Fprintf(w.out, "{\n  \"log\": {\n    \"version\": %q,\n    \"creator\": %s,\n    \"pages\": [],\n    \"entries\": [\n", Version, creator)
	return err
}

// WriteDocument serializes a complete in-memory document in one pass. Used
// by the XML pipeline, where exports are assumed bounded.
func WriteDocument(out io.Writer, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal HAR document: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}

// NewDocument creates a document shell with the mandatory log fields
// initialized for the given creator.
func NewDocument(creator Creator) *Document {
	return &Document{
		Log: Log{
			Version: Version,
			Creator: creator,
			Pages:   []Page{},
			Entries: []Entry{},
		},
	}
}
