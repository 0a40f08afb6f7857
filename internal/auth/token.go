package auth // package auth implements credential hashing, token issuing and access decisions

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/iliyamo/property-auth/internal/model"
)

// ErrInvalidToken is returned by Verify for every failure mode: malformed,
// tampered, wrongly signed or expired.  Collapsing the causes into one error
// keeps the response shape identical regardless of why a token was rejected,
// so callers cannot be used as a signature-vs-expiry oracle.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a verified access token.
type Claims struct {
	UserID     uint64
	Role       model.Role
	LandlordID *uint64
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Principal projects the claims into the identity used for authorization.
func (c Claims) Principal() model.Principal {
	return model.Principal{UserID: c.UserID, Role: c.Role, LandlordID: c.LandlordID}
}

// Blacklist is the revocation store the token service writes to on logout
// and consults on every authenticated request.
type Blacklist interface {
	// Add records token as revoked until exp (the token's own expiry).
	Add(ctx context.Context, token string, userID uint64, exp time.Time) error
	// Contains reports whether token has an unexpired revocation entry.
	Contains(ctx context.Context, token string) (bool, error)
}

// TokenService issues and verifies HS256 access tokens and handles explicit
// pre-expiry revocation.  The signing secret and token lifetime come from
// startup configuration and never change while the process runs.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	blacklist Blacklist
}

func NewTokenService(secret string, ttlSeconds int, bl Blacklist) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		ttl:       time.Duration(ttlSeconds) * time.Second,
		blacklist: bl,
	}
}

// Issue builds and signs an access token for a user.  The payload carries
// the user id (sub), role, optional landlord linkage, issued-at and expiry;
// expiry is always issued-at plus the configured lifetime.
func (s *TokenService) Issue(userID uint64, role model.Role, landlordID *uint64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	if landlordID != nil {
		claims["landlord_id"] = *landlordID
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature integrity and expiry and decodes the payload.
// Every failure returns ErrInvalidToken.
func (s *TokenService) Verify(token string) (Claims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC; otherwise a
		// crafted token could select a weaker verification path.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, ok := mc["sub"].(float64) // JSON numbers decode as float64
	if !ok || sub <= 0 {
		return Claims{}, ErrInvalidToken
	}
	role, ok := model.ParseRole(asString(mc["role"]))
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	iat, ok := mc["iat"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	exp, ok := mc["exp"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	c := Claims{
		UserID:    uint64(sub),
		Role:      role,
		IssuedAt:  time.Unix(int64(iat), 0).UTC(),
		ExpiresAt: time.Unix(int64(exp), 0).UTC(),
	}
	if lid, ok := mc["landlord_id"].(float64); ok && lid > 0 {
		v := uint64(lid)
		c.LandlordID = &v
	}
	return c, nil
}

// Revoke marks a token as no longer honorable by recording a blacklist entry
// that expires exactly when the token itself would have.  An invalid or
// already-expired token is a no-op: there is nothing left to revoke.  A
// failed blacklist write is logged and swallowed; the token then simply
// lives until its natural expiry.
func (s *TokenService) Revoke(ctx context.Context, token string, userID uint64) {
	claims, err := s.Verify(token)
	if err != nil {
		return
	}
	if err := s.blacklist.Add(ctx, token, userID, claims.ExpiresAt); err != nil {
		log.Printf("token revoke: blacklist write failed for user %d: %v", userID, err)
	}
}

// IsRevoked reports whether the token has an active revocation entry.
func (s *TokenService) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.blacklist.Contains(ctx, token)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
