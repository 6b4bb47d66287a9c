package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token body issued by the auth service.
type Claims struct {
	Role      Role   `json:"role"`
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret string, issuer string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("identity: JWT_SECRET is not set")
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}, nil
}

var _ Verifier = (*JWTVerifier)(nil)

func (v *JWTVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrUnauthenticated
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(credential, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if claims.Subject == "" || claims.ProfileID == "" {
		return Identity{}, fmt.Errorf("%w: token has no profile", ErrUnauthenticated)
	}
	if claims.Role != RoleStartup && claims.Role != RoleIncubator {
		return Identity{}, fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, claims.Role)
	}

	return Identity{AccountID: claims.Subject, Role: claims.Role, ProfileID: claims.ProfileID}, nil
}
