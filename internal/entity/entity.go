package entity

import (
	"fmt"
)

type EntityType string

const (
	EntityTypeUser           EntityType = "USER"
	EntityTypeItem           EntityType = "ITEM"
	EntityTypeHoldingsRecord EntityType = "HOLDINGS_RECORD"
	EntityTypeInstance       EntityType = "INSTANCE"
)

type IdentifierType string

const (
	IdentifierTypeID               IdentifierType = "ID"
	IdentifierTypeBarcode          IdentifierType = "BARCODE"
	IdentifierTypeHRID             IdentifierType = "HRID"
	IdentifierTypeUsername         IdentifierType = "USER_NAME"
	IdentifierTypeExternalSystemID IdentifierType = "EXTERNAL_SYSTEM_ID"
)

// Record is one entity row flowing through a stage. Rows are
// JSON-serializable and CSV-convertible through their Kind.
type Record interface {
	Identifier(t IdentifierType) string
}

// ConverterError reports a single CSV field conversion failure. The
// stage records it against the row and retries the write with the
// offending column blanked.
type ConverterError struct {
	Field   string
	Message string
}

func (e *ConverterError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}

// Kind is the dispatch entry for one entity type: the row variant
// constructor plus its CSV codec. Keeping the set closed avoids any
// runtime reflection over row types.
type Kind struct {
	Type      EntityType
	NewRecord func() Record
	CSVHeader []string

	// CSVRow converts rec into one CSV row. Columns listed in blanked
	// are emitted empty without conversion. The first failing field is
	// returned; the caller blanks it and retries.
	CSVRow func(rec Record, blanked map[string]bool) ([]string, *ConverterError)

	// FromCSVRow decodes one data row produced by CSVRow.
	FromCSVRow func(cells []string) (Record, error)
}

var kinds = map[EntityType]Kind{
	EntityTypeUser:           userKind,
	EntityTypeItem:           itemKind,
	EntityTypeHoldingsRecord: holdingsKind,
	EntityTypeInstance:       instanceKind,
}

func KindOf(t EntityType) (Kind, error) {
	kind, ok := kinds[t]
	if !ok {
		return Kind{}, fmt.Errorf("unsupported entity type: %s", t)
	}
	return kind, nil
}

// IdentifierForManualApproach builds a synthetic identifier for rows of
// a user-edited CSV that failed to decode; the row identity is only
// known by its line number.
func IdentifierForManualApproach(line int, t IdentifierType) string {
	return fmt.Sprintf("%s in line %d", t, line)
}
