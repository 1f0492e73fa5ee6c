package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-labs/bulk-operations/internal/entity"
)

func TestKindOf(t *testing.T) {
	for _, et := range []entity.EntityType{
		entity.EntityTypeUser,
		entity.EntityTypeItem,
		entity.EntityTypeHoldingsRecord,
		entity.EntityTypeInstance,
	} {
		kind, err := entity.KindOf(et)
		require.NoError(t, err)
		assert.Equal(t, et, kind.Type)
		assert.NotNil(t, kind.NewRecord())
		assert.NotEmpty(t, kind.CSVHeader)
	}

	_, err := entity.KindOf("LOAN")
	assert.Error(t, err)
}

func TestUserIdentifier(t *testing.T) {
	u := &entity.User{ID: "id-1", Username: "reader", Barcode: "b-1", ExternalSystemID: "ext-1"}

	assert.Equal(t, "id-1", u.Identifier(entity.IdentifierTypeID))
	assert.Equal(t, "reader", u.Identifier(entity.IdentifierTypeUsername))
	assert.Equal(t, "b-1", u.Identifier(entity.IdentifierTypeBarcode))
	assert.Equal(t, "ext-1", u.Identifier(entity.IdentifierTypeExternalSystemID))
	// Unknown identifier types fall back to the record id.
	assert.Equal(t, "id-1", u.Identifier(entity.IdentifierTypeHRID))
}

func TestUserCSVRoundTrip(t *testing.T) {
	kind, err := entity.KindOf(entity.EntityTypeUser)
	require.NoError(t, err)

	u := &entity.User{
		ID:             "id-1",
		Username:       "reader",
		Active:         true,
		PatronGroup:    "staff",
		Name:           "Reader, Avid",
		ExpirationDate: "2026-12-31",
		Tags:           []string{"a", "b"},
	}

	cells, convErr := kind.CSVRow(u, nil)
	require.Nil(t, convErr)
	require.Len(t, cells, len(kind.CSVHeader))

	rec, err := kind.FromCSVRow(cells)
	require.NoError(t, err)
	assert.Equal(t, u, rec)
}

func TestUserCSVRowInvalidDate(t *testing.T) {
	kind, err := entity.KindOf(entity.EntityTypeUser)
	require.NoError(t, err)

	u := &entity.User{ID: "id-1", ExpirationDate: "31/12/2026"}

	_, convErr := kind.CSVRow(u, nil)
	require.NotNil(t, convErr)
	assert.Equal(t, "Expiration date", convErr.Field)

	cells, convErr := kind.CSVRow(u, map[string]bool{"Expiration date": true})
	require.Nil(t, convErr)
	assert.Equal(t, "", cells[8])
}

func TestItemCSVRowUnknownStatus(t *testing.T) {
	kind, err := entity.KindOf(entity.EntityTypeItem)
	require.NoError(t, err)

	_, convErr := kind.CSVRow(&entity.Item{ID: "i1", Status: "Lost forever"}, nil)
	require.NotNil(t, convErr)
	assert.Equal(t, "Status", convErr.Field)

	cells, convErr := kind.CSVRow(&entity.Item{ID: "i1", Status: "Available"}, nil)
	require.Nil(t, convErr)
	assert.Equal(t, "Available", cells[4])
}

func TestIdentifierForManualApproach(t *testing.T) {
	assert.Equal(t, "BARCODE in line 42", entity.IdentifierForManualApproach(42, entity.IdentifierTypeBarcode))
}
