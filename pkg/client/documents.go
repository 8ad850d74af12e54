package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// DocumentsClient provides access to the document submission lifecycle.
type DocumentsClient struct {
	client *Client
}

// SubmitDocumentInput describes one financial document upload.
type SubmitDocumentInput struct {
	CompanyName string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Submission acknowledges an accepted document.
type Submission struct {
	CompanyID   string    `json:"company_id"`
	RequestID   string    `json:"request_id"`
	Status      string    `json:"status"`
	ObjectKey   string    `json:"object_key"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// DocumentStatus is the current processing state of a submission.
type DocumentStatus struct {
	CompanyID           string     `json:"company_id"`
	RequestID           string     `json:"request_id"`
	CompanyName         string     `json:"company_name"`
	Status              string     `json:"status"`
	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	ErrorMessage        *string    `json:"error_message,omitempty"`
	RetryCount          int        `json:"retry_count"`
}

// Submit uploads a financial document for processing. The server responds
// before extraction starts; poll Status for progress.
func (d *DocumentsClient) Submit(ctx context.Context, input SubmitDocumentInput) (*Submission, error) {
	if input.CompanyName == "" {
		return nil, fmt.Errorf("client: company name is required")
	}
	if input.Content == nil {
		return nil, fmt.Errorf("client: document content is required")
	}
	if input.Filename == "" {
		input.Filename = "document"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("company_name", input.CompanyName); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="document"; filename=%q`, input.Filename))
	if input.ContentType != "" {
		header.Set("Content-Type", input.ContentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, input.Content); err != nil {
		return nil, fmt.Errorf("failed to copy document content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.client.baseURL+"/api/v1/documents", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.New().String()
	d.client.setCommonHeaders(req, requestID)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// Uploads are not retried; the body reader is consumed on the first
	// attempt.
	resp, err := d.client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, requestID, respBody)
	}

	var sub Submission
	if err := unmarshalBody(respBody, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Status returns the processing state of a submission.
func (d *DocumentsClient) Status(ctx context.Context, companyID string) (*DocumentStatus, error) {
	if companyID == "" {
		return nil, fmt.Errorf("client: companyID is required")
	}
	var status DocumentStatus
	if err := d.client.get(ctx, "/api/v1/documents/"+url.PathEscape(companyID)+"/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Retry re-enqueues a failed submission. The server rejects retries for
// submissions that are not in the failed state or that have exhausted
// their retry budget; both surface as an APIError with IsConflict true.
func (d *DocumentsClient) Retry(ctx context.Context, companyID string) (*DocumentStatus, error) {
	if companyID == "" {
		return nil, fmt.Errorf("client: companyID is required")
	}
	var status DocumentStatus
	if err := d.client.post(ctx, "/api/v1/documents/"+url.PathEscape(companyID)+"/retry", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
