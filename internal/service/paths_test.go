package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestArtifactPaths(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	date := time.Date(2025, time.March, 7, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, fmt.Sprintf("%s/records.csv", id), triggeringCSVPath(id, "records.csv"))
	assert.Equal(t, fmt.Sprintf("%s/%s-Updates-Preview-2025-03-07.csv", id, id), previewCSVPath(id, date))
	assert.Equal(t, fmt.Sprintf("%s/json/%s-Updates-Preview-2025-03-07.json", id, id), previewJSONPath(id, date))
	assert.Equal(t, fmt.Sprintf("%s/%s-Changed-Records-2025-03-07.csv", id, id), changedCSVPath(id, date))
	assert.Equal(t, fmt.Sprintf("%s/json/%s-Changed-Records-2025-03-07.json", id, id), changedJSONPath(id, date))
	assert.Equal(t, fmt.Sprintf("%s/%s-Committing-changes-Errors-2025-03-07.csv", id, id), committingErrorsCSVPath(id, date))
}

func TestArtifactPathsSameDayDeterministic(t *testing.T) {
	id := uuid.New()
	morning := time.Date(2025, time.March, 7, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.March, 7, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, previewCSVPath(id, morning), previewCSVPath(id, evening))
	assert.Equal(t, changedJSONPath(id, morning), changedJSONPath(id, evening))
}

func TestProgressDebounce(t *testing.T) {
	var p progress

	assert.False(t, p.due(operationUpdateStep))
	assert.False(t, p.due(operationUpdateStep-1))
	assert.True(t, p.due(operationUpdateStep+1))

	p.mark(150)
	assert.False(t, p.due(250))
	assert.True(t, p.due(251))
}
