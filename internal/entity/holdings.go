package entity

import (
	"fmt"
	"strconv"
)

type HoldingsRecord struct {
	ID                string `json:"id"`
	HRID              string `json:"hrid,omitempty"`
	InstanceID        string `json:"instanceId,omitempty"`
	PermanentLocation string `json:"permanentLocation,omitempty"`
	TemporaryLocation string `json:"temporaryLocation,omitempty"`
	CallNumber        string `json:"callNumber,omitempty"`
	ReceiptStatus     string `json:"receiptStatus,omitempty"`
	DiscoverySuppress bool   `json:"discoverySuppress"`
}

func (h *HoldingsRecord) Identifier(t IdentifierType) string {
	if t == IdentifierTypeHRID {
		return h.HRID
	}
	return h.ID
}

var holdingsCSVHeader = []string{
	"Holdings id", "HRID", "Instance id", "Permanent location",
	"Temporary location", "Call number", "Receipt status", "Discovery suppress",
}

var holdingsKind = Kind{
	Type:       EntityTypeHoldingsRecord,
	NewRecord:  func() Record { return &HoldingsRecord{} },
	CSVHeader:  holdingsCSVHeader,
	CSVRow:     holdingsCSVRow,
	FromCSVRow: holdingsFromCSVRow,
}

func holdingsCSVRow(rec Record, blanked map[string]bool) ([]string, *ConverterError) {
	h := rec.(*HoldingsRecord)
	cells := make([]string, 0, len(holdingsCSVHeader))
	for _, col := range holdingsCSVHeader {
		if blanked[col] {
			cells = append(cells, "")
			continue
		}
		switch col {
		case "Holdings id":
			cells = append(cells, h.ID)
		case "HRID":
			cells = append(cells, h.HRID)
		case "Instance id":
			cells = append(cells, h.InstanceID)
		case "Permanent location":
			cells = append(cells, h.PermanentLocation)
		case "Temporary location":
			cells = append(cells, h.TemporaryLocation)
		case "Call number":
			cells = append(cells, h.CallNumber)
		case "Receipt status":
			cells = append(cells, h.ReceiptStatus)
		case "Discovery suppress":
			cells = append(cells, strconv.FormatBool(h.DiscoverySuppress))
		}
	}
	return cells, nil
}

func holdingsFromCSVRow(cells []string) (Record, error) {
	if len(cells) != len(holdingsCSVHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(holdingsCSVHeader), len(cells))
	}
	suppress, err := parseBoolCell(cells[7], "Discovery suppress")
	if err != nil {
		return nil, err
	}
	return &HoldingsRecord{
		ID:                cells[0],
		HRID:              cells[1],
		InstanceID:        cells[2],
		PermanentLocation: cells[3],
		TemporaryLocation: cells[4],
		CallNumber:        cells[5],
		ReceiptStatus:     cells[6],
		DiscoverySuppress: suppress,
	}, nil
}
