package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// MemoryCompanyRepo is an in-memory company.Repository for tests. It applies
// the same org scoping and not-found semantics as the postgres repository.
type MemoryCompanyRepo struct {
	mu        sync.Mutex
	companies map[common.ID]*company.Company

	// FailWith, when set, is returned by every call.
	FailWith error
}

var _ company.Repository = (*MemoryCompanyRepo)(nil)

// NewMemoryCompanyRepo creates an empty repository.
func NewMemoryCompanyRepo() *MemoryCompanyRepo {
	return &MemoryCompanyRepo{companies: make(map[common.ID]*company.Company)}
}

// Seed inserts records without the error hooks, for test fixtures.
func (r *MemoryCompanyRepo) Seed(companies ...*company.Company) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range companies {
		r.companies[c.ID] = c
	}
}

func (r *MemoryCompanyRepo) Create(_ context.Context, c *company.Company) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.companies[c.ID]; exists {
		return errors.New(errors.ErrCodeConflict, "company already exists")
	}
	r.companies[c.ID] = c
	return nil
}

func (r *MemoryCompanyRepo) Update(_ context.Context, c *company.Company) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.companies[c.ID]; !exists {
		return errors.New(errors.ErrCodeCompanyNotFound, "company not found")
	}
	r.companies[c.ID] = c
	return nil
}

func (r *MemoryCompanyRepo) GetByID(_ context.Context, id common.ID) (*company.Company, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeCompanyNotFound, "company not found")
	}
	return c, nil
}

func (r *MemoryCompanyRepo) GetByRequestID(_ context.Context, requestID common.ID) (*company.Company, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.RequestID == requestID {
			return c, nil
		}
	}
	return nil, errors.New(errors.ErrCodeCompanyNotFound, "company not found")
}

func (r *MemoryCompanyRepo) List(ctx context.Context, q company.ListQuery) (*company.ListResult, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	all, err := r.ListAll(ctx, q.OrganizationID)
	if err != nil {
		return nil, err
	}

	var filtered []*company.Company
	for _, c := range all {
		if len(q.Statuses) == 0 {
			filtered = append(filtered, c)
			continue
		}
		for _, st := range q.Statuses {
			if c.Status == st {
				filtered = append(filtered, c)
				break
			}
		}
	}

	total := int64(len(filtered))
	p := q.Pagination
	p.Normalize()
	start := p.Offset()
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + p.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return &company.ListResult{Companies: filtered[start:end], TotalCount: total}, nil
}

func (r *MemoryCompanyRepo) ListAll(_ context.Context, orgID common.OrgID) ([]*company.Company, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*company.Company
	for _, c := range r.companies {
		if c.OrganizationID == orgID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryCompanyRepo) Delete(_ context.Context, id common.ID) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.companies[id]; !exists {
		return errors.New(errors.ErrCodeCompanyNotFound, "company not found")
	}
	delete(r.companies, id)
	return nil
}
