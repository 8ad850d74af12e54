package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/search/opensearch"
	"github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/http/middleware"
)

// CompanySearcher is the slice of the search backend the handler needs.
type CompanySearcher interface {
	Search(ctx context.Context, in opensearch.SearchInput) (*opensearch.SearchResult, error)
}

// SearchHandler serves full-text company search.
type SearchHandler struct {
	searcher CompanySearcher
}

func NewSearchHandler(searcher CompanySearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Search handles GET /search?q=...&from=...&size=... scoped to the caller's
// organization.
func (h *SearchHandler) Search(c *gin.Context) {
	result, err := h.searcher.Search(c.Request.Context(), opensearch.SearchInput{
		OrganizationID: string(middleware.OrgIDFrom(c)),
		Query:          c.Query("q"),
		From:           queryInt(c, "from", 0),
		Size:           queryInt(c, "size", 0),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
