// Package auth resolves the caller's identity and makes the owning
// user's DB id available to handlers. The API never performs
// authentication itself beyond verifying an externally issued token;
// every authorization decision is an ownership check on that id.
package auth

import (
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/users"
)

const (
	CtxExternalUID = "external_uid"
	CtxUserDBID    = "user_db_id"
)

// WithUser resolves the caller to a users row and stores its DB id in
// the context. Resolution order:
//   - a Bearer token verified against Firebase, when configured
//   - the X-User-Id header
//   - "demo-user" outside production
//
// The resolved user is upserted so first requests self-provision.
func WithUser(userRepo *users.Repo, fb *fbauth.Client, environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, email, name := resolveIdentity(c, fb)

		if uid == "" && environment != "production" {
			uid = "demo-user"
		}
		if uid == "" {
			e := apperr.Unauthorized("missing user identity")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": e.Code, "message": e.Message},
			})
			return
		}

		dbID, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			ExternalUID: uid,
			Email:       email,
			DisplayName: name,
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": apperr.CodeInternal, "message": "ensure user failed"},
			})
			return
		}

		c.Set(CtxExternalUID, uid)
		c.Set(CtxUserDBID, dbID)
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, fb *fbauth.Client) (uid, email, name string) {
	if fb != nil {
		if token := bearerToken(c); token != "" {
			decoded, err := fb.VerifyIDToken(c.Request.Context(), token)
			if err == nil {
				uid = decoded.UID
				if v, ok := decoded.Claims["email"].(string); ok {
					email = v
				}
				if v, ok := decoded.Claims["name"].(string); ok {
					name = v
				}
				return uid, email, name
			}
		}
	}

	uid = strings.TrimSpace(c.GetHeader("X-User-Id"))
	email = c.GetHeader("X-User-Email")
	name = c.GetHeader("X-User-Name")
	return uid, email, name
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// UserDBID returns the resolved user's DB id, set by WithUser.
func UserDBID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}
