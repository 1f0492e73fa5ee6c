package entity

import (
	"fmt"
)

var itemStatuses = map[string]bool{
	"Available":         true,
	"Checked out":       true,
	"In transit":        true,
	"Awaiting pickup":   true,
	"Missing":           true,
	"Withdrawn":         true,
	"Declared lost":     true,
	"Paged":             true,
	"In process":        true,
	"Intellectual item": true,
}

type Item struct {
	ID                string `json:"id"`
	HRID              string `json:"hrid,omitempty"`
	Barcode           string `json:"barcode,omitempty"`
	Title             string `json:"title,omitempty"`
	Status            string `json:"status,omitempty"`
	PermanentLocation string `json:"permanentLocation,omitempty"`
	CallNumber        string `json:"callNumber,omitempty"`
	CopyNumber        string `json:"copyNumber,omitempty"`
}

func (i *Item) Identifier(t IdentifierType) string {
	switch t {
	case IdentifierTypeBarcode:
		return i.Barcode
	case IdentifierTypeHRID:
		return i.HRID
	default:
		return i.ID
	}
}

var itemCSVHeader = []string{
	"Item id", "HRID", "Barcode", "Title", "Status",
	"Permanent location", "Call number", "Copy number",
}

var itemKind = Kind{
	Type:       EntityTypeItem,
	NewRecord:  func() Record { return &Item{} },
	CSVHeader:  itemCSVHeader,
	CSVRow:     itemCSVRow,
	FromCSVRow: itemFromCSVRow,
}

func itemCSVRow(rec Record, blanked map[string]bool) ([]string, *ConverterError) {
	i := rec.(*Item)
	cells := make([]string, 0, len(itemCSVHeader))
	for _, col := range itemCSVHeader {
		if blanked[col] {
			cells = append(cells, "")
			continue
		}
		switch col {
		case "Item id":
			cells = append(cells, i.ID)
		case "HRID":
			cells = append(cells, i.HRID)
		case "Barcode":
			cells = append(cells, i.Barcode)
		case "Title":
			cells = append(cells, i.Title)
		case "Status":
			if i.Status != "" && !itemStatuses[i.Status] {
				return nil, &ConverterError{Field: col, Message: fmt.Sprintf("unknown item status %q", i.Status)}
			}
			cells = append(cells, i.Status)
		case "Permanent location":
			cells = append(cells, i.PermanentLocation)
		case "Call number":
			cells = append(cells, i.CallNumber)
		case "Copy number":
			cells = append(cells, i.CopyNumber)
		}
	}
	return cells, nil
}

func itemFromCSVRow(cells []string) (Record, error) {
	if len(cells) != len(itemCSVHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(itemCSVHeader), len(cells))
	}
	if cells[4] != "" && !itemStatuses[cells[4]] {
		return nil, fmt.Errorf("column Status: unknown item status %q", cells[4])
	}
	return &Item{
		ID:                cells[0],
		HRID:              cells[1],
		Barcode:           cells[2],
		Title:             cells[3],
		Status:            cells[4],
		PermanentLocation: cells[5],
		CallNumber:        cells[6],
		CopyNumber:        cells[7],
	}, nil
}
