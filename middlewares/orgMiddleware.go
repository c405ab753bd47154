package middlewares

import (
	"net/http"

	"github.com/gallagherpc/deals_backend/utils"
	"github.com/gin-gonic/gin"
)

// OrganizationMiddleware scopes every request to the caller's organization.
// Routes under /api require the header; everything is soft-multi-tenant
// below this point, the models filter by organization id from context.
func OrganizationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationId := c.Request.Header.Get("X-Organization-Id")
		if organizationId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "organization id is required"})
			c.Abort()
			return
		}

		ctx := utils.SetOrganizationIdInContext(c.Request.Context(), organizationId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
