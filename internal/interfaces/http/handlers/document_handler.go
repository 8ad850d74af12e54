package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/internal/application/ingestion"
	"github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/http/middleware"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// DocumentHandler serves the document submission lifecycle endpoints.
type DocumentHandler struct {
	svc ingestion.Service
}

func NewDocumentHandler(svc ingestion.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Submit handles POST /documents. Expects a multipart form with a
// company_name field and a file part named document.
func (h *DocumentHandler) Submit(c *gin.Context) {
	companyName := c.PostForm("company_name")
	fileHeader, err := c.FormFile("document")
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeValidation, "missing document file"))
		return
	}
	if fileHeader.Size > ingestion.MaxUploadSize {
		respondError(c, errors.New(errors.ErrCodeDocumentTooLarge, "document exceeds the upload size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeInternal, "opening uploaded file"))
		return
	}
	defer file.Close()

	submission, err := h.svc.Submit(c.Request.Context(), ingestion.SubmitInput{
		OrganizationID: middleware.OrgIDFrom(c),
		UserID:         middleware.UserIDFrom(c),
		CompanyName:    companyName,
		Filename:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		Size:           fileHeader.Size,
		Content:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, submission)
}

// Status handles GET /documents/:companyID/status.
func (h *DocumentHandler) Status(c *gin.Context) {
	info, err := h.svc.Status(c.Request.Context(), middleware.OrgIDFrom(c), common.ID(c.Param("companyID")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Retry handles POST /documents/:companyID/retry and re-enqueues a failed
// submission.
func (h *DocumentHandler) Retry(c *gin.Context) {
	info, err := h.svc.Retry(c.Request.Context(), middleware.OrgIDFrom(c), common.ID(c.Param("companyID")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, info)
}
