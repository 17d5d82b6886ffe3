package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"coachdesk/internal/models"
	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthMiddleware requires a valid token in the Authorization header.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return authenticate(authService, false)
}

// QueryTokenAuthMiddleware also accepts the token as ?token=, for links that
// are opened directly by the browser.
func QueryTokenAuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return authenticate(authService, true)
}

func authenticate(authService *services.AuthService, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			abortWithMessage(c, http.StatusUnauthorized, "Token is missing!")
			return
		}

		identity, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				slog.Error("failed to authenticate", "path", c.Request.URL.Path, "error", err)
			}
			abortWithMessage(c, http.StatusUnauthorized, "Invalid token!")
			return
		}

		c.Set(identityKey, identity)
		c.Set("user_role", identity.Role)

		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>". A bare token is
// accepted as well.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	switch {
	case len(parts) == 2 && strings.EqualFold(parts[0], "Bearer"):
		return parts[1]
	case len(parts) == 1 && !strings.EqualFold(parts[0], "Bearer"):
		return parts[0]
	}
	return ""
}

// AdminOnlyMiddleware rejects students.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, ok := currentRole(c); !ok || role != models.RoleAdmin {
			abortWithMessage(c, http.StatusForbidden, "Not authorized!")
			return
		}
		c.Next()
	}
}

// StudentOnlyMiddleware rejects admins.
func StudentOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, ok := currentRole(c); !ok || role != models.RoleStudent {
			abortWithMessage(c, http.StatusForbidden, "Not accessible by admin!")
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware sets headers that apply to every response.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer-when-downgrade")
		c.Next()
	}
}

func currentRole(c *gin.Context) (models.Role, bool) {
	v, exists := c.Get("user_role")
	if !exists {
		return "", false
	}
	role, ok := v.(models.Role)
	return role, ok
}

// currentIdentity returns the identity stored by the auth middleware.
func currentIdentity(c *gin.Context) *services.Identity {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, _ := v.(*services.Identity)
	return identity
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
