package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Artifact paths are pure functions of the operation id and the local
// date at stage start: re-running a stage on the same day overwrites
// its artifacts deterministically, a rerun on a later day produces new
// ones.

const artifactDateLayout = "2006-01-02"

func triggeringCSVPath(id uuid.UUID, originalFilename string) string {
	return fmt.Sprintf("%s/%s", id, originalFilename)
}

func previewCSVPath(id uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s/%s-Updates-Preview-%s.csv", id, id, date.Format(artifactDateLayout))
}

func previewJSONPath(id uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s/json/%s-Updates-Preview-%s.json", id, id, date.Format(artifactDateLayout))
}

func changedCSVPath(id uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s/%s-Changed-Records-%s.csv", id, id, date.Format(artifactDateLayout))
}

func changedJSONPath(id uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s/json/%s-Changed-Records-%s.json", id, id, date.Format(artifactDateLayout))
}

func committingErrorsCSVPath(id uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s/%s-Committing-changes-Errors-%s.csv", id, id, date.Format(artifactDateLayout))
}
