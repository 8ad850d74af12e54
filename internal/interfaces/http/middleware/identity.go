// Package middleware holds the gin middleware chain for the API server:
// caller identity extraction, request logging, CORS and panic recovery.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

const (
	// HeaderOrganizationID carries the caller's organization scope. Every
	// /api/v1 request must present it; the gateway in front of this
	// service resolves it from the access token.
	HeaderOrganizationID = "X-Organization-ID"
	// HeaderUserID carries the acting user, when known.
	HeaderUserID = "X-User-ID"

	ctxKeyOrgID  = "org_id"
	ctxKeyUserID = "user_id"
)

// Identity extracts the organization and user identifiers from request
// headers and stores them on the gin context. Requests without an
// organization header are rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetHeader(HeaderOrganizationID)
		if orgID == "" {
			err := errors.New(errors.ErrCodeOrganizationRequired, "missing "+HeaderOrganizationID+" header")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    string(errors.GetCode(err)),
				"message": err.Error(),
			})
			return
		}
		c.Set(ctxKeyOrgID, orgID)
		if userID := c.GetHeader(HeaderUserID); userID != "" {
			c.Set(ctxKeyUserID, userID)
		}
		c.Next()
	}
}

// OrgIDFrom returns the organization scope set by Identity. Empty when the
// middleware did not run.
func OrgIDFrom(c *gin.Context) common.OrgID {
	return common.OrgID(c.GetString(ctxKeyOrgID))
}

// UserIDFrom returns the acting user, or empty when the caller is anonymous.
func UserIDFrom(c *gin.Context) common.UserID {
	return common.UserID(c.GetString(ctxKeyUserID))
}
