package codec

import (
	"encoding/json"
	"io"

	"github.com/folio-labs/bulk-operations/internal/entity"
)

// JSONLDecoder streams a line-delimited JSON file (one value per
// record, whitespace between values ignored) as a forward-only sequence
// of entity rows.
type JSONLDecoder struct {
	dec  *json.Decoder
	kind entity.Kind
}

func NewJSONLDecoder(r io.Reader, kind entity.Kind) *JSONLDecoder {
	return &JSONLDecoder{dec: json.NewDecoder(r), kind: kind}
}

// More reports whether another record follows without consuming it.
func (d *JSONLDecoder) More() bool {
	return d.dec.More()
}

func (d *JSONLDecoder) Next() (entity.Record, error) {
	rec := d.kind.NewRecord()
	if err := d.dec.Decode(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// WriteRecord serializes rec to w, appending a newline when requested.
// Committed files omit the newline after the last record; preview files
// carry it unconditionally.
func WriteRecord(w io.Writer, rec entity.Record, newline bool) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if newline {
		b = append(b, '\n')
	}
	_, err = w.Write(b)
	return err
}
