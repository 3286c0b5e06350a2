// Package feed adapts the raw inventory feed: CSV tables in, CSV tables out,
// and the HTTP retrieval of the upstream file. The column set of the feed is
// not fixed; the reader preserves whatever header it finds.
package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/BabakRosewater/inventory-history/internal/core/record"
	perr "github.com/BabakRosewater/inventory-history/internal/platform/errors"
)

// Table is one parsed tabular file: the trimmed header row in original order
// plus one Record per data row
type Table struct {
	Headers []string
	Rows    []record.Record
}

// bomReader decodes r as UTF-8, honoring and stripping a leading BOM
// (UTF-8 or UTF-16 variants) when present
func bomReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadTable reads a CSV file into a Table. A missing file is a NotFound
// coded error so callers can abort before touching any outputs
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("input not found: %s", path)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeTable(f)
}

// DecodeTable parses CSV from r. Short rows are padded and long rows
// truncated to the header width; rows that fail to parse are skipped
func DecodeTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(bomReader(r))
	// Real-world feeds have ragged rows and sloppy quoting
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, perr.Parsef("input CSV has no header row")
		}
		return nil, perr.Wrap(err, perr.ErrorCodeParse, "reading CSV header")
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	t := &Table{Headers: headers}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		// Malformed rows are skipped; the reader has already advanced past
		// them. Anything else (an underlying I/O failure) repeats forever,
		// so it must abort the decode
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "reading CSV rows")
		}
		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			row = padded
		} else if len(row) > len(headers) {
			row = row[:len(headers)]
		}
		rec := make(record.Record, len(headers))
		for i, h := range headers {
			rec[h] = row[i]
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Encode renders rows as CSV bytes with the given column order.
// Missing values render as empty strings; output is deterministic for
// identical input
func Encode(fields []string, rows []record.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	line := make([]string, len(fields))
	for _, rec := range rows {
		for i, f := range fields {
			line[i] = rec[f]
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CountRows counts CSV rows in data, header included, tolerating a BOM.
// Unparsable rows are skipped, matching the reader above
func CountRows(data []byte) (int, error) {
	cr := csv.NewReader(bomReader(bytes.NewReader(data)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	n := 0
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			return n, perr.Wrap(err, perr.ErrorCodeUnknown, "counting CSV rows")
		}
		n++
	}
}
