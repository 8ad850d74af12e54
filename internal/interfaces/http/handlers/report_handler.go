package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/internal/application/reporting"
	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/http/middleware"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

// ReportHandler serves report generation and download endpoints.
type ReportHandler struct {
	svc reporting.Service
}

func NewReportHandler(svc reporting.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type generateReportRequest struct {
	Format   string                 `json:"format"`
	Criteria company.FilterCriteria `json:"criteria"`
}

// Generate handles POST /reports. The body selects the format and an
// optional filter; the response carries the stored report's metadata and a
// presigned download URL.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req generateReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.Wrap(err, errors.ErrCodeValidation, "invalid report request"))
			return
		}
	}
	format, err := reporting.ParseFormat(req.Format)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.svc.Generate(c.Request.Context(), reporting.GenerateInput{
		OrganizationID: middleware.OrgIDFrom(c),
		Criteria:       req.Criteria,
		Format:         format,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// Download handles GET /reports/:reportID/download?format=json|csv and
// redirects to a fresh presigned URL for the stored object.
func (h *ReportHandler) Download(c *gin.Context) {
	format, err := reporting.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.svc.DownloadURL(c.Request.Context(), middleware.OrgIDFrom(c), c.Param("reportID"), format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
