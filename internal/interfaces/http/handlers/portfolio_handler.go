package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/internal/application/portfolio"
	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/http/middleware"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// PortfolioHandler serves the company list, filter and analytics endpoints.
type PortfolioHandler struct {
	svc portfolio.Service
}

func NewPortfolioHandler(svc portfolio.Service) *PortfolioHandler {
	return &PortfolioHandler{svc: svc}
}

// List handles GET /companies. Supports page, page_size, status (comma
// separated), sort and order query parameters.
func (h *PortfolioHandler) List(c *gin.Context) {
	input := &portfolio.ListInput{
		OrganizationID: middleware.OrgIDFrom(c),
		Pagination:     parsePagination(c),
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := company.ProcessingStatus(strings.TrimSpace(s))
			switch status {
			case company.StatusUploadPending, company.StatusSubmitted,
				company.StatusProcessing, company.StatusCompleted, company.StatusFailed:
				input.Statuses = append(input.Statuses, status)
			default:
				respondError(c, errors.New(errors.ErrCodeValidation, "unknown status: "+string(status)))
				return
			}
		}
	}
	if field := c.Query("sort"); field != "" {
		order := common.SortOrder(c.DefaultQuery("order", string(common.SortAsc)))
		if order != common.SortAsc && order != common.SortDesc {
			respondError(c, errors.New(errors.ErrCodeValidation, "order must be asc or desc"))
			return
		}
		input.Sort = &common.SortField{Field: field, Order: order}
	}

	page, err := h.svc.ListCompanies(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /companies/:companyID.
func (h *PortfolioHandler) Get(c *gin.Context) {
	id := common.ID(c.Param("companyID"))
	record, err := h.svc.GetCompany(c.Request.Context(), middleware.OrgIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Filter handles POST /portfolio/filter with a FilterCriteria body and
// returns the matching companies.
func (h *PortfolioHandler) Filter(c *gin.Context) {
	var criteria company.FilterCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid filter body"))
		return
	}

	companies, err := h.svc.FilterCompanies(c.Request.Context(), middleware.OrgIDFrom(c), criteria)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"companies":   companies,
		"total_count": len(companies),
	})
}

// Options handles GET /portfolio/options and returns the distinct filter
// values present in the organization's portfolio.
func (h *PortfolioHandler) Options(c *gin.Context) {
	opts, err := h.svc.Options(c.Request.Context(), middleware.OrgIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// Dashboard handles POST /portfolio/dashboard. The body carries optional
// filter criteria; an empty body analyzes the full portfolio.
func (h *PortfolioHandler) Dashboard(c *gin.Context) {
	var criteria company.FilterCriteria
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&criteria); err != nil {
			respondError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid filter body"))
			return
		}
	}

	dash, err := h.svc.Dashboard(c.Request.Context(), &portfolio.DashboardInput{
		OrganizationID: middleware.OrgIDFrom(c),
		Criteria:       criteria,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
