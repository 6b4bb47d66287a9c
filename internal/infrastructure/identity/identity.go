package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrUnauthenticated covers missing, malformed, expired and forged credentials alike.
var ErrUnauthenticated = errors.New("identity: authentication failed")

// Role is the account role; it selects which profile kind the account owns.
type Role string

const (
	RoleStartup   Role = "startup"
	RoleIncubator Role = "incubator"
)

// Identity is what the gate yields for a verified credential.
type Identity struct {
	AccountID string
	Role      Role
	ProfileID string
}

// Verifier validates a bearer credential. Token issuance lives outside this service.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

const contextKey = "identity"

// CredentialFromRequest reads "Authorization: Bearer <t>", then "x-auth-token", then the
// "token" query parameter (browsers cannot set headers on websocket upgrades).
func CredentialFromRequest(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if h := strings.TrimSpace(r.Header.Get("x-auth-token")); h != "" {
		return h
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// RequireAuth rejects the request with 401 unless the credential verifies.
func RequireAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := v.Verify(c.Request.Context(), CredentialFromRequest(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Set(contextKey, id)
		c.Next()
	}
}

// FromContext returns the identity stored by RequireAuth.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
