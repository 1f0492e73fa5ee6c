package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/folio-labs/bulk-operations/internal/entity"
)

type JobStatus string

const (
	JobStatusScheduled  JobStatus = "SCHEDULED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusSuccessful JobStatus = "SUCCESSFUL"
	JobStatusFailed     JobStatus = "FAILED"
)

type ExportType string

const ExportTypeBulkEditIdentifiers ExportType = "BULK_EDIT_IDENTIFIERS"

type Job struct {
	ID             uuid.UUID             `json:"id"`
	Type           ExportType            `json:"type"`
	EntityType     entity.EntityType     `json:"entityType"`
	IdentifierType entity.IdentifierType `json:"identifierType"`
	Status         JobStatus             `json:"status"`
}

// ErrJobNotFound marks the retry-eligible not-found answer from the
// identifier upload endpoint.
var ErrJobNotFound = errors.New("data export job not found")

type DataExportClient interface {
	UpsertJob(ctx context.Context, job Job) (Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (Job, error)
}

// DataExportHTTPClient is an HTTP client for the data export scheduler.
type DataExportHTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ DataExportClient = (*DataExportHTTPClient)(nil)

func NewDataExportHTTPClient(baseURL string, timeout time.Duration) *DataExportHTTPClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &DataExportHTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *DataExportHTTPClient) UpsertJob(ctx context.Context, job Job) (Job, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return Job{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/data-export-spring/jobs", bytes.NewReader(body))
	if err != nil {
		return Job{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Job{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Job{}, fmt.Errorf("upsert job returned status %d", resp.StatusCode)
	}

	var created Job
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return Job{}, err
	}
	return created, nil
}

func (c *DataExportHTTPClient) GetJob(ctx context.Context, id uuid.UUID) (Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/data-export-spring/jobs/%s", c.baseURL, id), nil)
	if err != nil {
		return Job{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Job{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Job{}, ErrJobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Job{}, fmt.Errorf("get job returned status %d: %s", resp.StatusCode, string(body))
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return Job{}, err
	}
	return job, nil
}
