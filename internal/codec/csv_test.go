package codec_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-labs/bulk-operations/internal/codec"
	"github.com/folio-labs/bulk-operations/internal/entity"
)

func itemKind(t *testing.T) entity.Kind {
	t.Helper()
	kind, err := entity.KindOf(entity.EntityTypeItem)
	require.NoError(t, err)
	return kind
}

func TestCSVWriterHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	kind := userKind(t)
	w, err := codec.NewCSVWriter(&buf, kind)
	require.NoError(t, err)

	convErrs, err := w.Write(&entity.User{ID: "u1", Username: "reader1", Active: true})
	require.NoError(t, err)
	assert.Empty(t, convErrs)
	require.NoError(t, w.Flush())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, kind.CSVHeader, rows[0])
	assert.Equal(t, "u1", rows[1][0])
	assert.Equal(t, "reader1", rows[1][1])
	assert.Equal(t, "true", rows[1][4])
}

func TestCSVWriterBlanksFailingColumn(t *testing.T) {
	var buf bytes.Buffer
	w, err := codec.NewCSVWriter(&buf, itemKind(t))
	require.NoError(t, err)

	convErrs, err := w.Write(&entity.Item{ID: "i1", Title: "A title", Status: "Broken"})
	require.NoError(t, err)
	require.Len(t, convErrs, 1)
	assert.Equal(t, "Status", convErrs[0].Field)
	require.NoError(t, w.Flush())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// The row survives with the offending column blanked.
	assert.Equal(t, "i1", rows[1][0])
	assert.Equal(t, "A title", rows[1][3])
	assert.Equal(t, "", rows[1][4])
}

func TestCSVDecoderSkipsHeader(t *testing.T) {
	input := strings.Join([]string{
		"Item id,HRID,Barcode,Title,Status,Permanent location,Call number,Copy number",
		"i1,hrid1,b1,Some title,Available,Main,QA76,1",
		"i2,hrid2,b2,Other title,Missing,Annex,QA77,2",
	}, "\n")

	dec := codec.NewCSVDecoder(strings.NewReader(input), itemKind(t))

	var ids []string
	for dec.More() {
		rec, ok := dec.Next()
		require.True(t, ok)
		ids = append(ids, rec.(*entity.Item).ID)
	}
	assert.Equal(t, []string{"i1", "i2"}, ids)
	assert.Empty(t, dec.Captured())
}

func TestCSVDecoderCapturesBadRows(t *testing.T) {
	input := strings.Join([]string{
		"Item id,HRID,Barcode,Title,Status,Permanent location,Call number,Copy number",
		"i1,hrid1,b1,Some title,Available,Main,QA76,1",
		"i2,hrid2,b2,Other title,No such status,Annex,QA77,2",
		"too,short",
		"i3,hrid3,b3,Third title,Checked out,Main,QA78,3",
	}, "\n")

	dec := codec.NewCSVDecoder(strings.NewReader(input), itemKind(t))

	var ids []string
	for dec.More() {
		rec, ok := dec.Next()
		require.True(t, ok)
		ids = append(ids, rec.(*entity.Item).ID)
	}
	assert.Equal(t, []string{"i1", "i3"}, ids)

	captured := dec.Captured()
	require.Len(t, captured, 2)
	// Header is line 1, so the first bad data row is line 3.
	assert.Equal(t, 3, captured[0].Line)
	assert.Contains(t, captured[0].Err.Error(), "No such status")
	assert.Equal(t, 4, captured[1].Line)

	dec.ClearCaptured()
	assert.Empty(t, dec.Captured())
}

func TestCSVDecoderEmptyFile(t *testing.T) {
	dec := codec.NewCSVDecoder(strings.NewReader(""), itemKind(t))
	assert.False(t, dec.More())
	assert.Empty(t, dec.Captured())
}
