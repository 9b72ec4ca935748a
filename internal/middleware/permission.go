package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerdesk/internal/models"
	"ledgerdesk/internal/services"
)

func actionForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodGet:
		return "view"
	case http.MethodPatch, http.MethodPut:
		return "edit"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

// RequireManager restricts a route to manager-role callers. Grant-map
// rewrites, audit-scope changes and user invites must not be reachable
// by the roles they constrain.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, ok := c.Get("role")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if roleValue.(models.Role) != models.RoleManager {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission returns a Gin middleware that checks whether the
// authenticated user's role may perform the request's action on the
// given module. Managers always pass. Audit-role requests also get the
// company's audit scope attached to the context so handlers can narrow
// their queries.
func RequirePermission(permissionService services.PermissionServicer, module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, ok := c.Get("role")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		role := roleValue.(models.Role)

		companyValue, ok := c.Get("companyID")
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "No company selected"})
			c.Abort()
			return
		}
		companyID := companyValue.(uint)

		action := actionForMethod(c.Request.Method)
		if action == "" {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
			c.Abort()
			return
		}

		allowed, err := permissionService.Allowed(companyID, role, module, action)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		if role == models.RoleAudit {
			scope, err := permissionService.GetAuditScope(companyID)
			if err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
			if scope != nil {
				c.Set("auditScope", scope)
			}
		}

		c.Next()
	}
}
