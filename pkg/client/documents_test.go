package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDocumentMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/documents", r.URL.Path)
		assert.Equal(t, "org-1", r.Header.Get("X-Organization-ID"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Acme Textiles", r.FormValue("company_name"))

		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "acme.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7 fake", string(content))

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(Submission{
			CompanyID:   "c-1",
			RequestID:   "req-1",
			Status:      "submitted",
			ObjectKey:   "org-1/c-1/source",
			SubmittedAt: time.Now().UTC(),
		})
	})

	sub, err := c.Documents().Submit(context.Background(), SubmitDocumentInput{
		CompanyName: "Acme Textiles",
		Filename:    "acme.pdf",
		ContentType: "application/pdf",
		Content:     strings.NewReader("%PDF-1.7 fake"),
	})
	require.NoError(t, err)
	assert.Equal(t, "c-1", sub.CompanyID)
	assert.Equal(t, "submitted", sub.Status)
}

func TestSubmitDocumentValidation(t *testing.T) {
	c, err := NewClient("http://localhost:8080", "org-1")
	require.NoError(t, err)

	_, err = c.Documents().Submit(context.Background(), SubmitDocumentInput{
		Filename: "acme.pdf",
		Content:  strings.NewReader("x"),
	})
	assert.Error(t, err)

	_, err = c.Documents().Submit(context.Background(), SubmitDocumentInput{
		CompanyName: "Acme Textiles",
	})
	assert.Error(t, err)
}

func TestDocumentStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/c-1/status", r.URL.Path)
		msg := "extraction timed out"
		json.NewEncoder(w).Encode(DocumentStatus{
			CompanyID:    "c-1",
			CompanyName:  "Acme Textiles",
			Status:       "failed",
			ErrorMessage: &msg,
			RetryCount:   1,
		})
	})

	status, err := c.Documents().Status(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", status.Status)
	require.NotNil(t, status.ErrorMessage)
	assert.Equal(t, "extraction timed out", *status.ErrorMessage)
}

func TestRetryConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/documents/c-1/retry", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "PORT_008",
			"message": "submission is not in a retryable state",
		})
	})

	_, err := c.Documents().Retry(context.Background(), "c-1")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsConflict())
}
