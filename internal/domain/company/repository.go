package company

import (
	"context"

	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// ListQuery carries pagination and sorting for repository list operations.
// Filtering beyond organization scope happens in memory in the application
// layer; the repository only narrows by organization and status.
type ListQuery struct {
	OrganizationID common.OrgID
	Statuses       []ProcessingStatus
	Pagination     common.Pagination
	Sort           *common.SortField
}

// ListResult is a page of companies plus the total matching count.
type ListResult struct {
	Companies  []*Company `json:"companies"`
	TotalCount int64      `json:"total_count"`
}

// Repository is the persistence contract for company records. Implementations
// must call Normalize on every record they return.
type Repository interface {
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id common.ID) (*Company, error)
	GetByRequestID(ctx context.Context, requestID common.ID) (*Company, error)
	// List returns one page of records for the organization, newest first
	// unless a sort is supplied.
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	// ListAll returns every record for the organization, for in-memory
	// filtering and aggregation. Portfolios are low-thousands of records.
	ListAll(ctx context.Context, orgID common.OrgID) ([]*Company, error)
	Delete(ctx context.Context, id common.ID) error
}
