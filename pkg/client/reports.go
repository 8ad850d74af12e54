package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// ReportsClient provides access to report generation and download.
type ReportsClient struct {
	client *Client
}

// GenerateReportInput selects the report format and an optional portfolio
// filter. An empty Format defaults to JSON on the server.
type GenerateReportInput struct {
	Format   string          `json:"format,omitempty"`
	Criteria *FilterCriteria `json:"criteria,omitempty"`
}

// Report is the metadata of a stored report, including a presigned
// download URL valid for a limited time.
type Report struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Format         string    `json:"format"`
	ObjectKey      string    `json:"object_key"`
	SizeBytes      int64     `json:"size_bytes"`
	DownloadURL    string    `json:"download_url"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Generate builds a portfolio report and returns its metadata.
func (r *ReportsClient) Generate(ctx context.Context, input GenerateReportInput) (*Report, error) {
	var report Report
	if err := r.client.post(ctx, "/api/v1/reports", input, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DownloadLocation returns a fresh presigned URL for a previously
// generated report. The URL points at object storage, not the API.
func (r *ReportsClient) DownloadLocation(ctx context.Context, reportID, format string) (string, error) {
	if reportID == "" {
		return "", fmt.Errorf("client: reportID is required")
	}

	path := "/api/v1/reports/" + url.PathEscape(reportID) + "/download"
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.client.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.New().String()
	r.client.setCommonHeaders(req, requestID)

	// The server answers with a redirect to the presigned URL; capture
	// the Location header instead of following it.
	httpClient := *r.client.httpClient
	httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", parseAPIError(resp.StatusCode, requestID, respBody)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("client: server did not return a download location")
	}
	return location, nil
}
