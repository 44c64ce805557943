package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	csrfTokenKey    = "csrf_token"
	csrfFormField   = "csrf_token"
	csrfHeaderField = "X-CSRF-Token"
)

// CSRFMiddleware provides CSRF protection for state-changing operations.
// The session token is echoed back on every response in the X-CSRF-Token
// header so API clients can read it from any GET and submit it on mutations.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		// Generate token if not exists
		token, _ := session.Get(csrfTokenKey).(string)
		if token == "" {
			token = generateCSRFToken()
			session.Set(csrfTokenKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "failed to save CSRF token",
				})
				return
			}
		}

		// Expose the token to the client, including on rejections so a
		// client that lost it can recover.
		c.Header(csrfHeaderField, token)

		// Validate token for state-changing methods
		if c.Request.Method == http.MethodPost ||
			c.Request.Method == http.MethodPut ||
			c.Request.Method == http.MethodDelete ||
			c.Request.Method == http.MethodPatch {
			submittedToken := c.PostForm(csrfFormField)
			if submittedToken == "" {
				submittedToken = c.GetHeader(csrfHeaderField)
			}

			if submittedToken == "" || submittedToken != token {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "CSRF token validation failed",
				})
				return
			}
		}

		c.Next()
	}
}

// generateCSRFToken generates a random CSRF token
func generateCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// This should never happen in practice, but if it does,
		// panic is acceptable as CSRF protection would be broken
		panic("failed to generate CSRF token: " + err.Error())
	}
	return base64.StdEncoding.EncodeToString(b)
}
