package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

const companyColumns = `
	id, request_id, user_id, organization_id,
	company_name, industry, risk_grade, risk_score, recommended_limit, currency,
	status, submitted_at, processing_started_at, completed_at, error_message, retry_count,
	extracted_data, risk_analysis, created_at, updated_at`

// sortColumns whitelists the sortable fields; anything else falls back to
// created_at so user input never reaches the ORDER BY clause directly.
var sortColumns = map[string]string{
	"company_name":      "company_name",
	"risk_score":        "risk_score",
	"risk_grade":        "risk_grade",
	"recommended_limit": "recommended_limit",
	"status":            "status",
	"completed_at":      "completed_at",
	"created_at":        "created_at",
}

// CompanyRepository is the PostgreSQL implementation of company.Repository.
// Nested extracted data and risk analysis live in JSONB columns; filtering
// over them happens in memory in the application layer.
type CompanyRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCompanyRepository constructs a ready-to-use CompanyRepository.
func NewCompanyRepository(pool *pgxpool.Pool, logger logging.Logger) *CompanyRepository {
	return &CompanyRepository{pool: pool, logger: logger}
}

var _ company.Repository = (*CompanyRepository)(nil)

func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	extracted, analysis, err := marshalJSONColumns(c)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err = r.pool.Exec(ctx, `
		INSERT INTO companies (`+companyColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		c.ID, c.RequestID, c.UserID, c.OrganizationID,
		c.CompanyName, c.Industry, nullableGrade(c.RiskGrade), c.RiskScore, c.RecommendedLimit, c.Currency,
		c.Status, c.SubmittedAt, c.ProcessingStartedAt, c.CompletedAt, c.ErrorMessage, c.RetryCount,
		extracted, analysis, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("company insert failed", logging.Err(err), logging.String("company_id", c.ID.String()))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert company")
	}
	return nil
}

func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	extracted, analysis, err := marshalJSONColumns(c)
	if err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(ctx, `
		UPDATE companies SET
			company_name = $2, industry = $3, risk_grade = $4, risk_score = $5,
			recommended_limit = $6, currency = $7, status = $8,
			submitted_at = $9, processing_started_at = $10, completed_at = $11,
			error_message = $12, retry_count = $13,
			extracted_data = $14, risk_analysis = $15, updated_at = $16
		WHERE id = $1`,
		c.ID,
		c.CompanyName, c.Industry, nullableGrade(c.RiskGrade), c.RiskScore,
		c.RecommendedLimit, c.Currency, c.Status,
		c.SubmittedAt, c.ProcessingStartedAt, c.CompletedAt,
		c.ErrorMessage, c.RetryCount,
		extracted, analysis, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("company update failed", logging.Err(err), logging.String("company_id", c.ID.String()))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update company")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeCompanyNotFound, "company not found")
	}
	return nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id common.ID) (*company.Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	return r.scanCompany(row)
}

func (r *CompanyRepository) GetByRequestID(ctx context.Context, requestID common.ID) (*company.Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE request_id = $1`, requestID)
	return r.scanCompany(row)
}

func (r *CompanyRepository) List(ctx context.Context, q company.ListQuery) (*company.ListResult, error) {
	where, args := listPredicate(q.OrganizationID, q.Statuses)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies `+where, args...).Scan(&total); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count companies")
	}

	q.Pagination.Normalize()
	args = append(args, q.Pagination.PageSize, q.Pagination.Offset())
	query := fmt.Sprintf(`SELECT %s FROM companies %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		companyColumns, where, orderClause(q.Sort), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list companies")
	}
	defer rows.Close()

	companies, err := r.collectCompanies(rows)
	if err != nil {
		return nil, err
	}
	return &company.ListResult{Companies: companies, TotalCount: total}, nil
}

func (r *CompanyRepository) ListAll(ctx context.Context, orgID common.OrgID) ([]*company.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load portfolio")
	}
	defer rows.Close()
	return r.collectCompanies(rows)
}

func (r *CompanyRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete company")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeCompanyNotFound, "company not found")
	}
	return nil
}

func listPredicate(orgID common.OrgID, statuses []company.ProcessingStatus) (string, []interface{}) {
	clauses := []string{"organization_id = $1"}
	args := []interface{}{orgID}
	if len(statuses) > 0 {
		ph := make([]string, len(statuses))
		for i, s := range statuses {
			args = append(args, s)
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, "status IN ("+strings.Join(ph, ",")+")")
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func orderClause(sort *common.SortField) string {
	col := "created_at"
	dir := "DESC"
	if sort != nil {
		if mapped, ok := sortColumns[sort.Field]; ok {
			col = mapped
		}
		if sort.Order == common.SortAsc {
			dir = "ASC"
		}
	}
	return col + " " + dir + " NULLS LAST"
}

func nullableGrade(g company.RiskGrade) *string {
	if !g.IsGraded() {
		return nil
	}
	s := string(g)
	return &s
}

func marshalJSONColumns(c *company.Company) ([]byte, []byte, error) {
	var extracted, analysis []byte
	var err error
	if c.ExtractedData != nil {
		if extracted, err = json.Marshal(c.ExtractedData); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshalling extracted data")
		}
	}
	if c.RiskAnalysis != nil {
		if analysis, err = json.Marshal(c.RiskAnalysis); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshalling risk analysis")
		}
	}
	return extracted, analysis, nil
}

func (r *CompanyRepository) collectCompanies(rows pgx.Rows) ([]*company.Company, error) {
	var out []*company.Company
	for rows.Next() {
		c, err := r.scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "reading company rows")
	}
	return out, nil
}

func (r *CompanyRepository) scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		c         company.Company
		grade     *string
		extracted []byte
		analysis  []byte
	)
	err := row.Scan(
		&c.ID, &c.RequestID, &c.UserID, &c.OrganizationID,
		&c.CompanyName, &c.Industry, &grade, &c.RiskScore, &c.RecommendedLimit, &c.Currency,
		&c.Status, &c.SubmittedAt, &c.ProcessingStartedAt, &c.CompletedAt, &c.ErrorMessage, &c.RetryCount,
		&extracted, &analysis, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodeCompanyNotFound, "company not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan company")
	}

	if grade != nil {
		c.RiskGrade = company.RiskGrade(*grade)
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &c.ExtractedData); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshalling extracted data")
		}
	}
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &c.RiskAnalysis); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshalling risk analysis")
		}
	}

	c.Normalize()
	return &c, nil
}
