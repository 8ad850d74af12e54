package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

var (
	ErrIndexCreationFailed = errors.New(errors.ErrCodeInternal, "index creation failed")
	ErrDocumentIndexFailed = errors.New(errors.ErrCodeInternal, "document index failed")
)

// CompanyDocument is the shape of one company in the search index.
type CompanyDocument struct {
	ID              string     `json:"id"`
	OrganizationID  string     `json:"organization_id"`
	CompanyName     string     `json:"company_name"`
	PAN             string     `json:"pan,omitempty"`
	CIN             string     `json:"cin,omitempty"`
	Industry        string     `json:"industry,omitempty"`
	RegisteredState string     `json:"registered_state,omitempty"`
	RiskGrade       string     `json:"risk_grade,omitempty"`
	RiskScore       *float64   `json:"risk_score,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// DocumentFromCompany projects a company record onto its search document.
func DocumentFromCompany(c *company.Company) CompanyDocument {
	return CompanyDocument{
		ID:              string(c.ID),
		OrganizationID:  string(c.OrganizationID),
		CompanyName:     c.CompanyName,
		PAN:             c.PAN(),
		CIN:             c.CIN(),
		Industry:        c.Industry,
		RegisteredState: c.RegisteredState(),
		RiskGrade:       string(c.RiskGrade),
		RiskScore:       c.RiskScore,
		CompletedAt:     c.CompletedAt,
	}
}

func companyIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":               map[string]interface{}{"type": "keyword"},
				"organization_id":  map[string]interface{}{"type": "keyword"},
				"company_name":     map[string]interface{}{"type": "text"},
				"pan":              map[string]interface{}{"type": "keyword"},
				"cin":              map[string]interface{}{"type": "keyword"},
				"industry":         map[string]interface{}{"type": "keyword"},
				"registered_state": map[string]interface{}{"type": "keyword"},
				"risk_grade":       map[string]interface{}{"type": "keyword"},
				"risk_score":       map[string]interface{}{"type": "float"},
				"completed_at":     map[string]interface{}{"type": "date"},
			},
		},
	}
}

// Indexer writes company documents into the search index.
type Indexer struct {
	client *Client
	logger logging.Logger
}

// NewIndexer builds an Indexer over an established client.
func NewIndexer(client *Client, logger logging.Logger) *Indexer {
	return &Indexer{client: client, logger: logger}
}

// EnsureIndex creates the company index if it does not exist yet.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	index := i.client.CompanyIndex()

	existsReq := opensearchapi.IndicesExistsRequest{Index: []string{index}}
	resp, err := existsReq.Do(ctx, i.client.API())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "checking index existence")
	}
	resp.Body.Close()
	if resp.StatusCode == 200 {
		return nil
	}

	body, err := json.Marshal(companyIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding index mapping")
	}

	createReq := opensearchapi.IndicesCreateRequest{
		Index: index,
		Body:  bytes.NewReader(body),
	}
	resp, err = createReq.Do(ctx, i.client.API())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "creating index")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return ErrIndexCreationFailed
	}

	i.logger.Info("company index created", logging.String("index", index))
	return nil
}

// IndexCompany writes or replaces one company document.
func (i *Indexer) IndexCompany(ctx context.Context, c *company.Company) error {
	doc := DocumentFromCompany(c)
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding company document")
	}

	req := opensearchapi.IndexRequest{
		Index:      i.client.CompanyIndex(),
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, i.client.API())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "indexing company")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return ErrDocumentIndexFailed
	}
	return nil
}

// DeleteCompany removes a company document. Deleting an unknown document is
// not an error.
func (i *Indexer) DeleteCompany(ctx context.Context, companyID string) error {
	req := opensearchapi.DeleteRequest{
		Index:      i.client.CompanyIndex(),
		DocumentID: companyID,
	}
	resp, err := req.Do(ctx, i.client.API())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "deleting company document")
	}
	defer resp.Body.Close()
	if resp.StatusCode == 404 {
		return nil
	}
	if resp.IsError() {
		return errors.New(errors.ErrCodeInternal, "delete document failed")
	}
	return nil
}
