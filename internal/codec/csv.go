package codec

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/folio-labs/bulk-operations/internal/entity"
)

// CSVWriter writes entity rows with a single header row. Field
// conversion failures never fail the row outright: the failing column
// is blanked and the write retried, each failure reported to the
// caller. The retry depth is bounded by the column count.
type CSVWriter struct {
	w    *csv.Writer
	kind entity.Kind
}

func NewCSVWriter(w io.Writer, kind entity.Kind) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w), kind: kind}
	if err := cw.w.Write(kind.CSVHeader); err != nil {
		return nil, err
	}
	return cw, nil
}

func (c *CSVWriter) Write(rec entity.Record) ([]entity.ConverterError, error) {
	blanked := make(map[string]bool)
	var converted []entity.ConverterError
	for attempt := 0; attempt <= len(c.kind.CSVHeader); attempt++ {
		cells, convErr := c.kind.CSVRow(rec, blanked)
		if convErr == nil {
			return converted, c.w.Write(cells)
		}
		converted = append(converted, *convErr)
		blanked[convErr.Field] = true
	}
	return converted, fmt.Errorf("row exceeded converter retry budget of %d", len(c.kind.CSVHeader))
}

func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// RowError is one captured per-row decode failure, addressed by its
// physical line number in the file (header is line 1).
type RowError struct {
	Line int
	Err  error
}

// CSVDecoder streams a preview CSV back into entity rows, skipping the
// header and capturing malformed rows instead of failing the stream.
type CSVDecoder struct {
	r        *csv.Reader
	kind     entity.Kind
	line     int
	next     entity.Record
	hasNext  bool
	captured []RowError
}

func NewCSVDecoder(r io.Reader, kind entity.Kind) *CSVDecoder {
	cr := csv.NewReader(r)
	// Column count is validated per entity kind so short rows are
	// captured, not fatal.
	cr.FieldsPerRecord = -1
	d := &CSVDecoder{r: cr, kind: kind, line: 1}
	if _, err := cr.Read(); err != nil {
		// Missing or broken header means an empty sequence.
		return d
	}
	d.advance()
	return d
}

func (d *CSVDecoder) advance() {
	d.hasNext = false
	for {
		cells, err := d.r.Read()
		d.line++
		if err == io.EOF {
			return
		}
		if err != nil {
			d.captured = append(d.captured, RowError{Line: d.line, Err: err})
			continue
		}
		rec, err := d.kind.FromCSVRow(cells)
		if err != nil {
			d.captured = append(d.captured, RowError{Line: d.line, Err: err})
			continue
		}
		d.next = rec
		d.hasNext = true
		return
	}
}

func (d *CSVDecoder) More() bool {
	return d.hasNext
}

func (d *CSVDecoder) Next() (entity.Record, bool) {
	if !d.hasNext {
		return nil, false
	}
	rec := d.next
	d.advance()
	return rec, true
}

// Captured returns the per-row errors collected so far.
func (d *CSVDecoder) Captured() []RowError {
	return d.captured
}

func (d *CSVDecoder) ClearCaptured() {
	d.captured = nil
}
