package middleware

import (
	"strings"

	"account-admin-svc/src/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Context keys set by the auth middleware.
const (
	SubjectKey = "subject_email"
	RoleKey    = "subject_role"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// TokenVerifier validates bearer tokens and returns the subject email.
type TokenVerifier interface {
	VerifyUser(token string) (string, error)
	VerifyAdmin(token string) (string, error)
}

// AuthMiddleware checks bearer tokens. It only establishes identity; handlers
// re-resolve the subject against the store on every request.
type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireUser accepts only tokens signed with the user secret.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return m.require(RoleUser, m.verifier.VerifyUser)
}

// RequireAdmin accepts only tokens signed with the admin secret that carry the admin flag.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.require(RoleAdmin, m.verifier.VerifyAdmin)
}

func (m *AuthMiddleware) require(role string, verify func(string) (string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthenticated(c)
			c.Abort()
			return
		}

		subject, err := verify(token)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"role": role,
				"path": c.FullPath(),
			}).Warn("Bearer token rejected")
			response.Unauthenticated(c)
			c.Abort()
			return
		}

		c.Set(SubjectKey, subject)
		c.Set(RoleKey, role)

		logrus.WithFields(logrus.Fields{
			"subject": subject,
			"role":    role,
		}).Debug("Request authenticated")

		c.Next()
	}
}

// Subject returns the authenticated email stored by the middleware.
func Subject(c *gin.Context) string {
	return c.GetString(SubjectKey)
}

// extractToken extracts the token from an "Authorization: Bearer <token>" header.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		logrus.Debug("Authorization header missing")
		return ""
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		logrus.Debug("Invalid authorization header format")
		return ""
	}

	return strings.TrimSpace(token)
}
