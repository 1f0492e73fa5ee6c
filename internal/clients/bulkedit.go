package clients

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BulkEditClient interface {
	// UploadFile streams the identifiers file into the export job and
	// returns the stored link. Returns ErrJobNotFound when the
	// scheduler does not know the job yet; that answer is retried by
	// the caller.
	UploadFile(ctx context.Context, jobID uuid.UUID, filename string, r io.Reader) (string, error)
}

type BulkEditHTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ BulkEditClient = (*BulkEditHTTPClient)(nil)

func NewBulkEditHTTPClient(baseURL string, timeout time.Duration) *BulkEditHTTPClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &BulkEditHTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *BulkEditHTTPClient) UploadFile(ctx context.Context, jobID uuid.UUID, filename string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/bulk-edit/%s/upload", c.baseURL, jobID), pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrJobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload file returned status %d: %s", resp.StatusCode, string(body))
	}

	link, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(link)), nil
}
