// Package token issues the HS256 access tokens verified by httpkit.AuthRequired.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// Subject is the identity encoded into an access token.
type Subject struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Issuer signs access tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer for tokens valid for ttl.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token and its expiry.
func (i *Issuer) Issue(sub Subject) (string, time.Time, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)
	claims := jwt.MapClaims{
		"sub":   sub.UserID.String(),
		"email": sub.Email,
		"role":  sub.Role,
		"roles": []string{sub.Role},
		"type":  accessTokenType,
		"exp":   expiresAt.Unix(),
		"iat":   issuedAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
