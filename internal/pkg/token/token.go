package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Token type discriminator embedded in every token. An access token is never
// accepted where a refresh token is required and vice versa.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrExpired   = errors.New("token expired")
	ErrInvalid   = errors.New("invalid token")
	ErrWrongType = errors.New("wrong token type")
)

// Claims is the signed claim set carried by access and refresh tokens.
// Subject holds the username, ID holds the refresh jti (empty for access).
type Claims struct {
	UserID    int64    `json:"uid"`
	Roles     []string `json:"roles,omitempty"`
	TenantID  *int64   `json:"tenant,omitempty"`
	TokenType string   `json:"typ"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies token strings with an injected HS256 secret.
// It knows nothing about revocation; that is the ledger's job.
type Codec struct {
	secret []byte
	issuer string
}

func NewCodec(secret, issuer string) *Codec {
	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Encode produces a signed token embedding the subject identity, role
// snapshot, tenant and type. jti is only set for refresh tokens.
func (c *Codec) Encode(userID int64, username string, roles []string, tenantID *int64, tokenType string, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Roles:     roles,
		TenantID:  tenantID,
		TokenType: tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			Issuer:    c.issuer,
			ID:        jti,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode verifies signature and expiry, then returns the claims. Expiry is
// reported as ErrExpired; every other failure collapses to ErrInvalid so the
// caller cannot accidentally leak the distinction.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	t, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !t.Valid {
		return nil, ErrInvalid
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalid
	}
	return claims, nil
}

// DecodeWithType decodes and additionally enforces the type claim.
func (c *Codec) DecodeWithType(tokenStr, wantType string) (*Claims, error) {
	claims, err := c.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongType
	}
	return claims, nil
}
